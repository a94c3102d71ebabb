package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIURL is the Telegram Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// Bot API responses larger than this are truncated before decoding.
const maxResponseBytes = 1 << 20

// Notifier delivers a formatted message somewhere.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIURL   string
	Client   *http.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIURL:   DefaultAPIURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// APIError is a Bot API call that did not come back ok.
type APIError struct {
	Method      string
	Status      int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: status %d: %s", e.Method, e.Status, e.Description)
}

// Temporary reports whether repeating the call may succeed: rate limits and server errors.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// envelope wraps every Bot API response.
type envelope struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type sendMessageParams struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func (t *TelegramNotifier) endpoint(method string) string {
	base := t.APIURL
	if base == "" {
		base = DefaultAPIURL
	}
	return fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(base, "/"), t.BotToken, method)
}

// call posts params as JSON to a Bot API method and decodes the result field into out.
// A nil out discards the result.
func (t *TelegramNotifier) call(ctx context.Context, client *http.Client, method string, params, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("telegram %s: encode params: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("telegram %s: read response: %w", method, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode != http.StatusOK || decodeErr != nil || !env.OK {
		desc := env.Description
		if desc == "" {
			desc = strings.TrimSpace(string(raw))
		}
		return &APIError{Method: method, Status: resp.StatusCode, Description: desc}
	}
	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("telegram %s: decode result: %w", method, err)
	}
	return nil
}

// Send delivers one HTML message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	return t.call(ctx, t.Client, "sendMessage", sendMessageParams{ChatID: t.ChatID, Text: text, ParseMode: "HTML"}, nil)
}

// SendWithRetry retries Send with exponential backoff. Errors the API marks as
// permanent, such as an unknown chat, are returned at once.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = t.Send(ctx, text); err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return err
		}
		if attempt == maxRetries {
			break
		}
		wait := time.Second << attempt
		log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", attempt+1, maxRetries+1, err, wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", maxRetries+1, err)
}

// NoopNotifier drops every message. Used when Telegram is not configured.
type NoopNotifier struct{}

func (NoopNotifier) SendWithRetry(_ context.Context, _ string, _ int) error { return nil }
