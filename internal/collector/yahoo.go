package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// YahooFetcher implements RateFetcher using the Yahoo Finance chart API for FX pairs.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(opts Options) *YahooFetcher {
	base := opts.BaseURL
	if base == "" {
		base = "https://query1.finance.yahoo.com"
	}
	return &YahooFetcher{
		BaseURL: strings.TrimRight(base, "/"),
		Client:  newHTTPClient(opts.Proxy, opts.Timeout),
	}
}

func (f *YahooFetcher) Name() string { return NameYahoo }

// yahooSymbol maps a currency pair to a Yahoo ticker, e.g. AED/USD -> AEDUSD=X.
func yahooSymbol(from, to string) string { return from + to + "=X" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string   `json:"currency"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d",
		f.BaseURL, url.PathEscape(yahooSymbol(from, to)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return decimal.Zero, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return decimal.Zero, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return decimal.Zero, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	if result.Meta.Currency != "" && !strings.EqualFold(result.Meta.Currency, to) {
		return decimal.Zero, fmt.Errorf("yahoo: %s quoted in %s, want %s", yahooSymbol(from, to), result.Meta.Currency, to)
	}
	if result.Meta.RegularMarketPrice != nil {
		return positive(f.Name(), from, to, decimal.NewFromFloat(*result.Meta.RegularMarketPrice))
	}
	// Fall back to the latest non-null close (holidays leave gaps).
	if len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil {
				return positive(f.Name(), from, to, decimal.NewFromFloat(*closes[i]))
			}
		}
	}
	return decimal.Zero, fmt.Errorf("yahoo: no price data for %s", yahooSymbol(from, to))
}
