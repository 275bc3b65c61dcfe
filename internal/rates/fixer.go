package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"finboard/internal/core"
)

// DefaultFixerURL is the latest-rates endpoint of fixer.io.
const DefaultFixerURL = "https://data.fixer.io/api/latest"

// ErrSourceFailure is wrapped by every error a remote source returns for a
// response it could reach but not use.
var ErrSourceFailure = errors.New("rate source failure")

// FixerSource reads rates from a fixer.io compatible endpoint. The free tier
// quotes everything against EUR.
type FixerSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewFixerSource creates a source for baseURL. An empty baseURL uses
// DefaultFixerURL and a nil client gets a 10 second timeout.
func NewFixerSource(baseURL, apiKey string, client *http.Client) *FixerSource {
	if baseURL == "" {
		baseURL = DefaultFixerURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FixerSource{baseURL: baseURL, apiKey: apiKey, client: client}
}

func (f *FixerSource) requestURL(symbols []core.CurrencyCode) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse rates url: %w", err)
	}
	codes := make([]string, len(symbols))
	for i, s := range symbols {
		codes[i] = s.String()
	}
	q := u.Query()
	q.Set("access_key", f.apiKey)
	q.Set("symbols", strings.Join(codes, ","))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Latest performs one GET request. Non-2xx statuses, success=false payloads
// and payloads without a rates object are errors.
func (f *FixerSource) Latest(ctx context.Context, symbols []core.CurrencyCode) (Quote, error) {
	addr, err := f.requestURL(symbols)
	if err != nil {
		return Quote{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("build rates request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Quote{}, fmt.Errorf("%w: http status %s", ErrSourceFailure, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, fmt.Errorf("read rates response: %w", err)
	}
	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return Quote{}, fmt.Errorf("%w: decode payload: %v", ErrSourceFailure, err)
	}
	return parseFixerPayload(jobj)
}

func parseFixerPayload(jobj any) (Quote, error) {
	if success, _ := jsonpath.Get("$.success", jobj); success != true {
		info, _ := jsonpath.Get("$.error.info", jobj)
		if s, isString := info.(string); isString && s != "" {
			return Quote{}, fmt.Errorf("%w: %s", ErrSourceFailure, s)
		}
		return Quote{}, fmt.Errorf("%w: unsuccessful response", ErrSourceFailure)
	}

	jrates, err := jsonpath.Get("$.rates", jobj)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: missing rates: %v", ErrSourceFailure, err)
	}
	raw, ok := jrates.(map[string]any)
	if !ok {
		return Quote{}, fmt.Errorf("%w: rates is not an object", ErrSourceFailure)
	}

	q := Quote{Base: "EUR", Rates: make(map[core.CurrencyCode]float64, len(raw))}
	if jbase, err := jsonpath.Get("$.base", jobj); err == nil {
		if s, isString := jbase.(string); isString && s != "" {
			q.Base = core.CurrencyCode(strings.ToUpper(s))
		}
	}
	for code, v := range raw {
		rate, isNumber := v.(float64)
		if !isNumber {
			continue
		}
		q.Rates[core.CurrencyCode(strings.ToUpper(code))] = rate
	}
	return q, nil
}
