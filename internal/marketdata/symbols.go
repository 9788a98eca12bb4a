package marketdata

import (
	"strings"

	"github.com/pkg/errors"
)

var cryptoTickers = []string{"BTC", "ETH", "SOL", "XRP", "ADA", "DOGE", "LTC", "BNB", "DOT"}

// Instrument is a classified symbol key. For crypto Base is the coin and
// Quote the market; for FX they are the two currency legs.
type Instrument struct {
	Key    string
	Crypto bool
	Base   string
	Quote  string
}

// Classify maps a symbol key to an instrument. Any key containing a known
// crypto ticker is crypto; otherwise it must be a six-letter FX pair.
func Classify(key string) (Instrument, error) {
	k := strings.ToUpper(strings.TrimSpace(key))

	for _, t := range cryptoTickers {
		if strings.Contains(k, t) {
			market := strings.Replace(k, t, "", 1)
			if market == "" {
				market = "USD"
			}
			return Instrument{Key: k, Crypto: true, Base: t, Quote: market}, nil
		}
	}

	if len(k) != 6 || strings.IndexFunc(k, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
		return Instrument{}, errors.Wrapf(ErrUnavailable, "unsupported symbol %q", key)
	}
	return Instrument{Key: k, Base: k[:3], Quote: k[3:]}, nil
}
