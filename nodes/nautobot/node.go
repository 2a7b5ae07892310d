package nautobot

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/Tsinling0525/rivulet-nautobot/model"
	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

// Host is everything the node needs from the workflow engine for one run.
type Host interface {
	Requester
	GetNodeParameter(name string, itemIndex int, fallback any) (any, error)
	GetCredentials(ctx context.Context, credType string) (map[string]any, error)
	ReturnJSONArray(data []any) model.Items
	ContinueOnFail() bool
	NodeName() string
	Logger() hclog.Logger
}

var _ Host = (*plugin.ExecuteFunctions)(nil)

// Node fetches inventory data from Nautobot.
type Node struct{ deps plugin.Deps }

func (n *Node) Init(ctx context.Context, deps plugin.Deps) error { n.deps = deps; return nil }

// Process runs one operation for the node, using the first input item for
// parameter expressions. Looping over items is left to the workflow.
func (n *Node) Process(ctx context.Context, wf model.Workflow, node model.Node, in model.Items) (model.Items, error) {
	return Execute(ctx, plugin.NewExecuteFunctions(n.deps, wf, node, in))
}

// Execute resolves credentials and the operation, makes at most one API call
// and turns its outcome into output items or a classified error. Failures
// reading the operation or the credentials are returned even when the node
// continues on fail.
func Execute(ctx context.Context, host Host) (model.Items, error) {
	rawOp, err := host.GetNodeParameter(paramOperation, 0, string(OperationGetDevice))
	if err != nil {
		return nil, &plugin.NodeOperationError{Node: host.NodeName(), Message: err.Error(), Cause: err}
	}
	op := Operation(paramString(rawOp))

	data, err := host.GetCredentials(ctx, CredentialType)
	if err != nil {
		return nil, &plugin.NodeOperationError{Node: host.NodeName(), Message: "Failed to load credentials: " + err.Error(), Cause: err}
	}
	creds, err := DecodeCredentials(data)
	if err != nil {
		return nil, &plugin.NodeOperationError{Node: host.NodeName(), Message: err.Error(), Cause: err}
	}

	client := NewClient(creds.APIURL, creds.Token, host)
	return dispatch(ctx, host, client, op)
}

func dispatch(ctx context.Context, host Host, client *Client, op Operation) (model.Items, error) {
	node := host.NodeName()
	log := host.Logger().With("operation", op)

	run, ok := operations[op]
	if !ok {
		e := plugin.NewNodeOperationError(node, 0, "Unsupported operation: %s", op)
		return fail(host, e.Message, e)
	}

	res, err := run(ctx, host, client)
	if err != nil {
		e := plugin.NewNodeOperationError(node, 0, "%s", err.Error())
		e.Cause = err
		return fail(host, e.Message, e)
	}

	switch res.Kind {
	case ResultOK:
		log.Debug("operation succeeded")
		if res.Value == nil {
			return host.ReturnJSONArray([]any{}), nil
		}
		return host.ReturnJSONArray([]any{res.Value}), nil
	case ResultTransportError:
		log.Debug("nautobot request failed", "error", res.Err)
		e := plugin.NewNodeAPIError(node, res.Err, "Nautobot API request failed: "+res.Message())
		return fail(host, res.Message(), e)
	default:
		e := plugin.NewNodeOperationError(node, 0, "Error executing %s node: %s", displayName, res.Message())
		e.Cause = res.Err
		return fail(host, res.Message(), e)
	}
}

// fail returns err, or an {"error": message} item when the node is set to
// continue on failure.
func fail(host Host, message string, err error) (model.Items, error) {
	if host.ContinueOnFail() {
		host.Logger().Warn("continuing after failure", "error", err)
		return host.ReturnJSONArray([]any{map[string]any{"error": message}}), nil
	}
	return nil, err
}

func init() {
	plugin.Register(NodeType, func() plugin.NodeHandler { return &Node{} }, description)
	plugin.RegisterCredential(credentialDefinition)
}
