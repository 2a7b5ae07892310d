package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

// HTTPTransport is the host's generic HTTP executor. It makes exactly one
// request per call and never retries.
type HTTPTransport struct {
	client *http.Client
	log    hclog.Logger
}

func NewHTTPTransport(cfg TransportConfig, log hclog.Logger) *HTTPTransport {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &HTTPTransport{
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

func (t *HTTPTransport) Do(ctx context.Context, opts plugin.RequestOptions) (any, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL: %w", err)
	}
	if len(opts.Query) > 0 {
		q := u.Query()
		for k, v := range opts.Query {
			addQuery(q, k, v)
		}
		u.RawQuery = q.Encode()
	}

	body, err := encodeBody(opts)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, opts.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Debug("request failed", "method", opts.Method, "url", u.Redacted(), "error", err)
		return nil, &plugin.TransportError{Method: opts.Method, URL: u.Redacted(), Message: err.Error(), Cause: err}
	}
	defer resp.Body.Close()
	t.log.Debug("request completed", "method", opts.Method, "url", u.Redacted(), "status", resp.StatusCode, "duration", time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &plugin.TransportError{Method: opts.Method, URL: u.Redacted(), StatusCode: resp.StatusCode, Message: err.Error(), Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload := errorPayload(raw)
		return nil, &plugin.TransportError{
			Method:     opts.Method,
			URL:        u.Redacted(),
			StatusCode: resp.StatusCode,
			Message:    statusMessage(resp.StatusCode, payload),
			Payload:    payload,
		}
	}

	if !opts.JSON {
		return string(raw), nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

func encodeBody(opts plugin.RequestOptions) (io.Reader, error) {
	if opts.Body == nil {
		return nil, nil
	}
	switch b := opts.Body.(type) {
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		if !opts.JSON {
			return bytes.NewReader([]byte(b)), nil
		}
	}
	p, err := json.Marshal(opts.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return bytes.NewReader(p), nil
}

// addQuery sets k from v; slices become repeated keys, which is how
// Nautobot accepts multi-value filters.
func addQuery(q url.Values, k string, v any) {
	switch vv := v.(type) {
	case nil:
	case []string:
		for _, s := range vv {
			q.Add(k, s)
		}
	case []any:
		for _, s := range vv {
			q.Add(k, fmt.Sprint(s))
		}
	default:
		q.Add(k, fmt.Sprint(vv))
	}
}

// errorPayload keeps the response body of a failed request, decoded when it
// is JSON.
func errorPayload(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var v any
	if json.Unmarshal(raw, &v) == nil {
		return v
	}
	return string(raw)
}

func statusMessage(code int, payload any) string {
	if m, ok := payload.(map[string]any); ok {
		if d, ok := m["detail"].(string); ok && d != "" {
			return d
		}
	}
	return fmt.Sprintf("Request failed with status code %d", code)
}

var _ plugin.HTTPRequester = (*HTTPTransport)(nil)
