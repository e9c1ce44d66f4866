// Package client talks to the remote exam REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cbt_cms/internal/config"
	"cbt_cms/pkg/logger"
	"cbt_cms/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// APIError is a non-2xx answer of the exam API.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exam api: status %d", e.Status)
	}
	return fmt.Sprintf("exam api: status %d: %s", e.Status, e.Message)
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type tokenKey struct{}

// WithToken attaches the upstream bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(cfg config.UpstreamConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewWithHTTPClient(cfg.BaseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// call sends a JSON request and returns the decoded envelope.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	raw, err := c.send(ctx, method, path, query, reader, "application/json")
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(raw)
}

// send performs the request and returns the raw body of a 2xx answer.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (raw []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartClientSpan(ctx, method+" "+path, req.Header)
	span.SetAttributes(attribute.String("http.method", method), attribute.String("http.path", path))
	defer func() { tracing.EndSpan(span, err) }()
	req = req.WithContext(ctx)

	req.Header.Set("Accept", "application/json")
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	logger.Log.Debug("exam api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var env envelope
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Code = env.Code
			apiErr.Message = env.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}
	return raw, nil
}

func decodeEnvelope(raw []byte) (*envelope, error) {
	var env envelope
	if len(bytes.TrimSpace(raw)) == 0 {
		return &env, nil
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

// into decodes the envelope data into out.
func (e *envelope) into(out any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return errors.New("exam api: empty data")
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// listQuery builds the shared page/paginate/search query string. Empty search
// values are not sent.
func listQuery(page, paginate int, search string) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(page, 1)))
	q.Set("paginate", strconv.Itoa(max(paginate, 1)))
	if s := strings.TrimSpace(search); s != "" {
		q.Set("search", s)
	}
	return q
}

func setIfNotEmpty(q url.Values, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		q.Set(key, v)
	}
}

func idPath(format string, ids ...uint) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}
