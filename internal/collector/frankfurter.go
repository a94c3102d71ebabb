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

// FrankfurterFetcher implements RateFetcher using ECB reference rates served by frankfurter.app.
type FrankfurterFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewFrankfurterFetcher creates a fetcher with optional proxy support.
func NewFrankfurterFetcher(opts Options) *FrankfurterFetcher {
	base := opts.BaseURL
	if base == "" {
		base = "https://api.frankfurter.app"
	}
	return &FrankfurterFetcher{
		BaseURL: strings.TrimRight(base, "/"),
		Client:  newHTTPClient(opts.Proxy, opts.Timeout),
	}
}

func (f *FrankfurterFetcher) Name() string { return NameFrankfurter }

type frankfurterLatest struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

func (f *FrankfurterFetcher) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	endpoint := f.BaseURL + "/latest?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("frankfurter fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("frankfurter: status %d, body: %s", resp.StatusCode, string(body))
	}

	var latest frankfurterLatest
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		return decimal.Zero, fmt.Errorf("frankfurter decode: %w", err)
	}
	if latest.Base != "" && !strings.EqualFold(latest.Base, from) {
		return decimal.Zero, fmt.Errorf("frankfurter: asked for base %s, got %s", from, latest.Base)
	}
	rate, ok := latest.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("frankfurter: no %s rate for %s", to, from)
	}
	return positive(f.Name(), from, to, rate)
}
