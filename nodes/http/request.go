package httpnode

import (
	"context"
	"net/http"
	"strings"

	"github.com/Tsinling0525/rivulet-nautobot/model"
	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

// Request is a generic JSON HTTP node sharing the host transport.
// Config:
// - method: string (default: GET)
// - url: string (template on the current item)
// - headers: map[string]string
// - query: map[string]any
// - json_body: map[string]any
type Request struct{ deps plugin.Deps }

func (n *Request) Init(ctx context.Context, deps plugin.Deps) error { n.deps = deps; return nil }

func (n *Request) Process(ctx context.Context, wf model.Workflow, node model.Node, in model.Items) (model.Items, error) {
	fns := plugin.NewExecuteFunctions(n.deps, wf, node, in)
	if len(in) == 0 {
		in = model.Items{{}}
	}

	out := make(model.Items, 0, len(in))
	for i := range in {
		item, err := n.one(ctx, fns, node, i)
		if err != nil {
			if fns.ContinueOnFail() {
				out = append(out, model.Item{"error": err.Error()})
				continue
			}
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (n *Request) one(ctx context.Context, fns *plugin.ExecuteFunctions, node model.Node, i int) (model.Item, error) {
	method, err := stringParam(fns, "method", i, http.MethodGet)
	if err != nil {
		return nil, err
	}
	url, err := stringParam(fns, "url", i, "")
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, plugin.NewNodeOperationError(fns.NodeName(), i, "URL is required.")
	}

	opts := plugin.RequestOptions{Method: strings.ToUpper(method), URL: url, JSON: true, Headers: map[string]string{"Accept": "application/json"}}
	if h, ok := node.Config["headers"].(map[string]any); ok {
		for k, v := range h {
			if s, ok := v.(string); ok {
				opts.Headers[k] = s
			}
		}
	}
	if q, ok := node.Config["query"].(map[string]any); ok {
		opts.Query = q
	}
	if b, ok := node.Config["json_body"].(map[string]any); ok {
		opts.Body = b
		opts.Headers["Content-Type"] = "application/json"
	}

	body, err := fns.HTTPRequest(ctx, opts)
	if err != nil {
		return nil, plugin.NewNodeAPIError(fns.NodeName(), err, "HTTP request failed: "+err.Error())
	}
	return model.Item{"body": body, "url": url, "node_id": node.ID}, nil
}

func stringParam(fns *plugin.ExecuteFunctions, name string, i int, fallback string) (string, error) {
	v, err := fns.GetNodeParameter(name, i, fallback)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

func init() {
	plugin.Register("http:request", func() plugin.NodeHandler { return &Request{} }, plugin.NodeDescription{
		DisplayName: "HTTP Request",
		Version:     1,
		Description: "Make a JSON HTTP request for each input item",
		Inputs:      []string{"main"},
		Outputs:     []string{"main"},
		Properties: []plugin.Property{
			{DisplayName: "Method", Name: "method", Type: "string", Default: http.MethodGet},
			{DisplayName: "URL", Name: "url", Type: "string", Default: "", Required: true},
			{DisplayName: "Headers", Name: "headers", Type: "json", Default: map[string]any{}},
			{DisplayName: "Query", Name: "query", Type: "json", Default: map[string]any{}},
			{DisplayName: "JSON Body", Name: "json_body", Type: "json", Default: nil},
		},
	})
}
