package marketdata

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"chart-advisor/internal/api"
	"chart-advisor/internal/logger"
	"chart-advisor/internal/types"
)

var timestampLayouts = []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}

// AlphaVantage fetches intraday series from an Alpha Vantage compatible API.
type AlphaVantage struct {
	p      Params
	client *api.Client
	retry  *api.RetryConfig
}

var _ Provider = (*AlphaVantage)(nil)

func NewAlphaVantage(p Params) *AlphaVantage {
	if p.Interval == "" {
		p.Interval = "5min"
	}
	if p.OutputSize == "" {
		p.OutputSize = "compact"
	}
	if p.Timeout <= 0 {
		p.Timeout = 10 * time.Second
	}
	return &AlphaVantage{
		p: p,
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(p.BaseURL, "/")),
			api.WithTimeout(p.Timeout),
			api.WithLogging(true),
		),
		retry: &api.RetryConfig{
			MaxAttempts: p.Retries + 1,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     4 * time.Second,
		},
	}
}

func (a *AlphaVantage) Fetch(ctx context.Context, symbol string) (types.MarketSummary, error) {
	inst, err := Classify(symbol)
	if err != nil {
		return types.MarketSummary{}, err
	}
	if a.p.APIKey == "" {
		return types.MarketSummary{}, errors.Wrap(ErrUnavailable, "market data API key not configured")
	}

	req := api.NewRequest(http.MethodGet, "/query").WithContext(ctx)
	for k, v := range a.query(inst) {
		req.WithQuery(k, v)
	}

	resp, err := a.client.DoWithRetry(req, a.retry)
	if err != nil {
		return types.MarketSummary{}, errors.Wrapf(ErrUnavailable, "%s: %v", inst.Key, err)
	}

	bars, err := parseSeries(resp.Body)
	if err != nil {
		logger.Warn(ctx, "Unusable market data response", "symbol", inst.Key, "error", err)
		return types.MarketSummary{}, errors.Wrapf(ErrUnavailable, "%s: %v", inst.Key, err)
	}

	return Summarize(inst.Key, bars)
}

func (a *AlphaVantage) query(inst Instrument) map[string]string {
	q := map[string]string{
		"interval":   a.p.Interval,
		"outputsize": a.p.OutputSize,
		"apikey":     a.p.APIKey,
	}
	if inst.Crypto {
		q["function"] = "CRYPTO_INTRADAY"
		q["symbol"] = inst.Base
		q["market"] = inst.Quote
	} else {
		q["function"] = "FX_INTRADAY"
		q["from_symbol"] = inst.Base
		q["to_symbol"] = inst.Quote
	}
	return q
}

// parseSeries extracts bars from the object under the first key containing
// "Time Series".
func parseSeries(body []byte) ([]Bar, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}

	var raw json.RawMessage
	for k, v := range top {
		if strings.Contains(k, "Time Series") {
			raw = v
			break
		}
	}
	if raw == nil {
		for _, k := range []string{"Error Message", "Note", "Information"} {
			if msg, ok := top[k]; ok {
				return nil, errors.Errorf("no time series: %s", strings.Trim(string(msg), `"`))
			}
		}
		return nil, errors.New("no time series in response")
	}

	var series map[string]map[string]string
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, errors.Wrap(err, "decode time series")
	}
	if len(series) == 0 {
		return nil, errors.New("empty time series")
	}

	bars := make([]Bar, 0, len(series))
	for ts, fields := range series {
		t, err := parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		b := Bar{Time: t}
		for key, dst := range map[string]*float64{
			"1. open": &b.Open, "2. high": &b.High, "3. low": &b.Low, "4. close": &b.Close,
		} {
			v, err := strconv.ParseFloat(fields[key], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "bar %s field %q", ts, key)
			}
			*dst = v
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("bad timestamp %q", s)
}
