package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RateFetcher looks up a live FX rate: how many units of `to` one unit of `from` buys.
type RateFetcher interface {
	FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error)
	Name() string
}

// Options configures a live fetcher.
type Options struct {
	BaseURL string
	APIKey  string
	Proxy   string
	Timeout time.Duration
}

// Names of the built-in live sources.
const (
	NameExchangeRateHost = "exchangeratehost"
	NameFrankfurter      = "frankfurter"
	NameYahoo            = "yahoo"
)

// New builds a named live fetcher.
func New(name string, opts Options) (RateFetcher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameExchangeRateHost, "exchangerate.host":
		return NewExchangeRateHostFetcher(opts), nil
	case NameFrankfurter, "ecb":
		return NewFrankfurterFetcher(opts), nil
	case NameYahoo:
		return NewYahooFetcher(opts), nil
	}
	return nil, fmt.Errorf("unknown fx source %q", name)
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func positive(name, from, to string, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s: non-positive rate %s for %s/%s", name, rate, from, to)
	}
	return rate, nil
}
