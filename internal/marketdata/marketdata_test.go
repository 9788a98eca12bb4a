package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart-advisor/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		key    string
		crypto bool
		base   string
		quote  string
		ok     bool
	}{
		{"BTCUSD", true, "BTC", "USD", true},
		{"ethusd", true, "ETH", "USD", true},
		{"SOL", true, "SOL", "USD", true},
		{"DOGEEUR", true, "DOGE", "EUR", true},
		{"EURUSD", false, "EUR", "USD", true},
		{" usdjpy ", false, "USD", "JPY", true},
		{"EURUSDX", false, "", "", false},
		{"EUR/US", false, "", "", false},
		{"", false, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			inst, err := Classify(tt.key)
			if !tt.ok {
				assert.True(t, errors.Is(err, ErrUnavailable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.crypto, inst.Crypto)
			assert.Equal(t, tt.base, inst.Base)
			assert.Equal(t, tt.quote, inst.Quote)
		})
	}
}

func TestSummarize(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]Bar, 0, 60)
	// reversed input order must not matter
	for i := 59; i >= 0; i-- {
		bars = append(bars, Bar{Time: start.Add(time.Duration(i) * time.Minute), Close: 100 + float64(i)*0.5})
	}

	s, err := Summarize("EURUSD", bars)
	require.NoError(t, err)

	assert.Equal(t, "EURUSD", s.Symbol)
	assert.Equal(t, 129.5, s.Price)
	assert.Equal(t, types.TrendBullish, s.Trend)
	assert.Greater(t, s.EMA20, s.EMA50)
	assert.Equal(t, 29.5, s.PercentChange)
}

func TestSummarizeShortSeries(t *testing.T) {
	s, err := Summarize("BTCUSD", []Bar{{Close: 1.234567891}})
	require.NoError(t, err)

	assert.Equal(t, 1.23457, s.Price)
	assert.Zero(t, s.EMA20)
	assert.Zero(t, s.EMA50)
	assert.Zero(t, s.RSI)
	assert.Zero(t, s.PercentChange)
	assert.Equal(t, types.TrendBearish, s.Trend)

	_, err = Summarize("BTCUSD", nil)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0.13, round(0.125, 2))
	assert.Equal(t, -0.13, round(-0.125, 2))
}

func seriesJSON(key string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"Meta Data":{"1. Information":"Intraday"},"%s":{`, key)
	start := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		c := 1.1 + float64(i)*0.001
		fmt.Fprintf(&b, `"%s":{"1. open":"%.5f","2. high":"%.5f","3. low":"%.5f","4. close":"%.5f"}`,
			start.Add(time.Duration(i)*5*time.Minute).Format("2006-01-02 15:04:05"), c, c+0.001, c-0.001, c)
	}
	b.WriteString("}}")
	return b.String()
}

func TestAlphaVantageFetch(t *testing.T) {
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.URL.Query())
		assert.Equal(t, "/query", r.URL.Path)
		if r.URL.Query().Get("function") == "CRYPTO_INTRADAY" {
			_, _ = w.Write([]byte(seriesJSON("Time Series Crypto (5min)", 60)))
			return
		}
		_, _ = w.Write([]byte(seriesJSON("Time Series FX (5min)", 60)))
	}))
	defer srv.Close()

	p := NewAlphaVantage(Params{BaseURL: srv.URL, APIKey: "demo", Timeout: time.Second})

	s, err := p.Fetch(context.Background(), "EURUSD")
	require.NoError(t, err)
	q := seen.Load().(url.Values)
	assert.Equal(t, []string{"FX_INTRADAY"}, q["function"])
	assert.Equal(t, []string{"EUR"}, q["from_symbol"])
	assert.Equal(t, []string{"USD"}, q["to_symbol"])
	assert.Equal(t, []string{"5min"}, q["interval"])
	assert.Equal(t, []string{"demo"}, q["apikey"])
	assert.Equal(t, 1.159, s.Price)
	assert.Equal(t, types.TrendBullish, s.Trend)

	_, err = p.Fetch(context.Background(), "BTCUSD")
	require.NoError(t, err)
	q = seen.Load().(url.Values)
	assert.Equal(t, []string{"CRYPTO_INTRADAY"}, q["function"])
	assert.Equal(t, []string{"BTC"}, q["symbol"])
	assert.Equal(t, []string{"USD"}, q["market"])
}

func TestAlphaVantageUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limit note", http.StatusOK, `{"Note":"Thank you for using Alpha Vantage"}`},
		{"empty series", http.StatusOK, `{"Time Series FX (5min)":{}}`},
		{"bad number", http.StatusOK, `{"Time Series FX (5min)":{"2024-01-02 10:00:00":{"1. open":"x","2. high":"1","3. low":"1","4. close":"1"}}}`},
		{"not json", http.StatusOK, `<html>`},
		{"server error", http.StatusInternalServerError, `oops`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewAlphaVantage(Params{BaseURL: srv.URL, APIKey: "demo", Timeout: time.Second})
			_, err := p.Fetch(context.Background(), "EURUSD")
			assert.True(t, errors.Is(err, ErrUnavailable), "got %v", err)
		})
	}
}

func TestAlphaVantageMissingKeyDoesNotCallOut(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	_, err := NewAlphaVantage(Params{BaseURL: srv.URL}).Fetch(context.Background(), "EURUSD")
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestAlphaVantageRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(seriesJSON("Time Series FX (5min)", 30)))
	}))
	defer srv.Close()

	p := NewAlphaVantage(Params{BaseURL: srv.URL, APIKey: "demo", Retries: 1, Timeout: time.Second})
	p.retry.InitialWait = time.Millisecond

	_, err := p.Fetch(context.Background(), "GBPUSD")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestStaticDeterministic(t *testing.T) {
	p := New(Params{Source: "STATIC"})

	a, err := p.Fetch(context.Background(), "EURUSD")
	require.NoError(t, err)
	b, err := p.Fetch(context.Background(), "eurusd")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotZero(t, a.EMA50)

	btc, err := p.Fetch(context.Background(), "BTCUSD")
	require.NoError(t, err)
	assert.Greater(t, btc.Price, 1000.0)

	jpy, err := p.Fetch(context.Background(), "USDJPY")
	require.NoError(t, err)
	assert.Greater(t, jpy.Price, 100.0)

	_, err = p.Fetch(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, ErrUnavailable))
}
