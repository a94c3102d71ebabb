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

// ExchangeRateHostFetcher implements RateFetcher using the exchangerate.host convert endpoint.
type ExchangeRateHostFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewExchangeRateHostFetcher creates a fetcher with optional proxy support.
func NewExchangeRateHostFetcher(opts Options) *ExchangeRateHostFetcher {
	base := opts.BaseURL
	if base == "" {
		base = "https://api.exchangerate.host"
	}
	return &ExchangeRateHostFetcher{
		BaseURL: strings.TrimRight(base, "/"),
		APIKey:  opts.APIKey,
		Client:  newHTTPClient(opts.Proxy, opts.Timeout),
	}
}

func (f *ExchangeRateHostFetcher) Name() string { return NameExchangeRateHost }

// erhConvert is the expected JSON shape of /convert.
type erhConvert struct {
	Success bool             `json:"success"`
	Result  *decimal.Decimal `json:"result"`
	Error   *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

func (f *ExchangeRateHostFetcher) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	q.Set("amount", "1")
	if f.APIKey != "" {
		q.Set("access_key", f.APIKey)
	}
	endpoint := f.BaseURL + "/convert?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exchangerate.host fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("exchangerate.host: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result erhConvert
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, fmt.Errorf("exchangerate.host decode: %w", err)
	}
	if result.Error != nil {
		return decimal.Zero, fmt.Errorf("exchangerate.host api error %d: %s", result.Error.Code, result.Error.Info)
	}
	if !result.Success || result.Result == nil {
		return decimal.Zero, fmt.Errorf("exchangerate.host: no result for %s/%s", from, to)
	}
	return positive(f.Name(), from, to, *result.Result)
}
