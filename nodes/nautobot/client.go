package nautobot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

// Requester is the slice of the host the client needs: one raw HTTP call.
type Requester interface {
	HTTPRequest(ctx context.Context, opts plugin.RequestOptions) (any, error)
}

type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultTransportError
	ResultOtherError
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultTransportError:
		return "transport_error"
	default:
		return "other_error"
	}
}

// Result is the outcome of one client call. Value is set for ResultOK; Err
// holds the failure exactly as the transport returned it otherwise.
type Result struct {
	Kind  ResultKind
	Value any
	Err   error
}

// Message is the failure message, or "" for a successful result.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Payload is the response payload the transport captured, if any.
func (r Result) Payload() any {
	var te *plugin.TransportError
	if errors.As(r.Err, &te) {
		return te.Payload
	}
	return nil
}

func resultOf(v any, err error) Result {
	if err == nil {
		return Result{Kind: ResultOK, Value: v}
	}
	var te *plugin.TransportError
	if errors.As(err, &te) {
		return Result{Kind: ResultTransportError, Err: err}
	}
	return Result{Kind: ResultOtherError, Err: err}
}

// Client talks to the Nautobot REST API. It is built per node execution and
// never mutated afterwards.
type Client struct {
	baseURL string
	token   string
	host    Requester
}

func NewClient(baseURL, token string, host Requester) *Client {
	return &Client{
		baseURL: normalizeBaseURL(baseURL),
		token:   token,
		host:    host,
	}
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// normalizeBaseURL strips every trailing slash.
func normalizeBaseURL(u string) string {
	return strings.TrimRight(u, "/")
}

// Request issues one call to {baseURL}/api{endpoint}. endpoint must start
// with "/". A nil body or query is left out of the request.
func (c *Client) Request(ctx context.Context, method, endpoint string, body, query map[string]any) Result {
	opts := plugin.RequestOptions{
		Method: method,
		URL:    fmt.Sprintf("%s/api%s", c.baseURL, endpoint),
		Headers: map[string]string{
			"Authorization": "Token " + c.token,
			"Content-Type":  "application/json",
			"Accept":        "application/json",
		},
		JSON: true,
	}
	if body != nil {
		opts.Body = body
	}
	if query != nil {
		opts.Query = query
	}
	return resultOf(c.host.HTTPRequest(ctx, opts))
}

// GetDevice fetches one device. id is used verbatim.
func (c *Client) GetDevice(ctx context.Context, id string) Result {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/dcim/devices/%s/", id), nil, nil)
}

// ListDevices lists devices, optionally narrowed by Nautobot filter params.
func (c *Client) ListDevices(ctx context.Context, filters map[string]any) Result {
	return c.Request(ctx, http.MethodGet, "/dcim/devices/", nil, filters)
}
