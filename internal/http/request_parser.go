package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finboard/internal/core"
)

// maxBodyBytes caps request bodies; every record fits in far less.
const maxBodyBytes = 64 << 10

var (
	errBodyTooLarge = errors.New("request body too large")
	errMissingField = errors.New("missing field")
)

// RequestBodyParser reads a JSON object or a form-encoded body once and
// exposes its fields as strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body of r, up to maxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errBodyTooLarge
	}
	return p
}

// Parse decodes the body as JSON when it looks like a JSON object, as a
// form otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("decode json body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = fmt.Errorf("decode form body: %w", p.err)
	}
	return p.err
}

// Get returns the trimmed, sanitized value of key, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func (p *RequestBodyParser) require(key string) (string, error) {
	v := p.Get(key)
	if v == "" {
		return "", fmt.Errorf("%w: %s", errMissingField, key)
	}
	return v, nil
}

func (p *RequestBodyParser) amount(key string) (float64, error) {
	raw, err := p.require(key)
	if err != nil {
		return 0, err
	}
	v, err := core.ParseAmount(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// optionalDate returns def when key is absent.
func (p *RequestBodyParser) optionalDate(key string, def core.Date) (core.Date, error) {
	raw := p.Get(key)
	if raw == "" {
		return def, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// ParseTransactionInput reads description, amount, category and date. The
// date defaults to today.
func ParseTransactionInput(p *RequestBodyParser, today core.Date) (core.TransactionInput, error) {
	var in core.TransactionInput
	var err error
	in.Description = p.Get("description")
	if in.Amount, err = p.amount("amount"); err != nil {
		return in, err
	}
	if in.Category, err = core.ParseCategory(p.Get("category")); err != nil {
		return in, err
	}
	if in.Date, err = p.optionalDate("date", today); err != nil {
		return in, err
	}
	return in, nil
}

// ParseBudgetInput reads category and limit.
func ParseBudgetInput(p *RequestBodyParser) (core.BudgetInput, error) {
	var in core.BudgetInput
	var err error
	if in.Category, err = core.ParseCategory(p.Get("category")); err != nil {
		return in, err
	}
	if in.Limit, err = p.amount("limit"); err != nil {
		return in, err
	}
	return in, nil
}

// ParseGoalInput reads name, target, current (default 0) and an optional
// target date.
func ParseGoalInput(p *RequestBodyParser) (core.GoalInput, error) {
	var in core.GoalInput
	var err error
	in.Name = p.Get("name")
	if in.Target, err = p.amount("target"); err != nil {
		return in, err
	}
	if p.Get("current") != "" {
		if in.Current, err = p.amount("current"); err != nil {
			return in, err
		}
	}
	if in.TargetDate, err = p.optionalDate("targetDate", core.Date{}); err != nil {
		return in, err
	}
	return in, nil
}
