package plugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/hashicorp/go-hclog"

	"github.com/Tsinling0525/rivulet-nautobot/model"
)

// DefaultCredentialName is used when a node does not name the credential it
// wants for a type.
const DefaultCredentialName = "default"

var (
	ErrNoCredentialStore = errors.New("no credential store configured")
	ErrNoTransport       = errors.New("no HTTP transport configured")
)

// ExecuteFunctions is the per-invocation view of the host a node gets:
// parameters, credentials, HTTP and output helpers scoped to one node run.
type ExecuteFunctions struct {
	deps  Deps
	wf    model.Workflow
	node  model.Node
	items model.Items
	log   hclog.Logger
}

func NewExecuteFunctions(deps Deps, wf model.Workflow, node model.Node, in model.Items) *ExecuteFunctions {
	return &ExecuteFunctions{
		deps:  deps,
		wf:    wf,
		node:  node,
		items: in,
		log:   deps.logger().With("workflow", wf.ID, "node", node.ID),
	}
}

func (f *ExecuteFunctions) Node() model.Node { return f.node }

// NodeName is the node's display name, falling back to its ID.
func (f *ExecuteFunctions) NodeName() string {
	if f.node.Name != "" {
		return f.node.Name
	}
	return string(f.node.ID)
}

func (f *ExecuteFunctions) Logger() hclog.Logger { return f.log }

func (f *ExecuteFunctions) ContinueOnFail() bool { return f.node.ContinueOnFail }

// Item returns input item i, or an empty item when there is none.
func (f *ExecuteFunctions) Item(i int) model.Item {
	if i < 0 || i >= len(f.items) || f.items[i] == nil {
		return model.Item{}
	}
	return f.items[i]
}

// GetNodeParameter resolves a parameter from the node config. String values
// containing "{{" are rendered as Go templates against input item itemIndex;
// a field the item does not have renders as "". Missing or nil parameters
// resolve to fallback.
func (f *ExecuteFunctions) GetNodeParameter(name string, itemIndex int, fallback any) (any, error) {
	v, ok := f.node.Config[name]
	if !ok || v == nil {
		return fallback, nil
	}
	s, isString := v.(string)
	if !isString || !strings.Contains(s, "{{") {
		return v, nil
	}
	out, err := renderTemplate(name, s, f.Item(itemIndex))
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", name, err)
	}
	return out, nil
}

// GetCredentials loads the credential of credType referenced by the node.
func (f *ExecuteFunctions) GetCredentials(ctx context.Context, credType string) (map[string]any, error) {
	if f.deps.Credentials == nil {
		return nil, ErrNoCredentialStore
	}
	name := f.node.Credentials[credType]
	if name == "" {
		name = DefaultCredentialName
	}
	return f.deps.Credentials.Get(ctx, credType, name)
}

// HTTPRequest hands the request to the host transport unchanged and returns
// its result unchanged.
func (f *ExecuteFunctions) HTTPRequest(ctx context.Context, opts RequestOptions) (any, error) {
	if f.deps.HTTP == nil {
		return nil, ErrNoTransport
	}
	return f.deps.HTTP.Do(ctx, opts)
}

// ReturnJSONArray converts JSON values into output items. Objects become
// items as-is; any other value is carried under the "data" key.
func (f *ExecuteFunctions) ReturnJSONArray(data []any) model.Items {
	return ReturnJSONArray(data)
}

func ReturnJSONArray(data []any) model.Items {
	out := make(model.Items, 0, len(data))
	for _, v := range data {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
			continue
		}
		out = append(out, model.Item{"data": v})
	}
	return out
}

const noValue = "<no value>"

func renderTemplate(name, tpl string, data any) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	// missing map keys are nil interfaces, which print as noValue
	return strings.ReplaceAll(buf.String(), noValue, ""), nil
}
