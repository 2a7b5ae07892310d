package plugin

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/Tsinling0525/rivulet-nautobot/model"
)

type Deps struct {
	State       StateStore
	Bus         EventBus
	Credentials CredentialStore
	HTTP        HTTPRequester
	Logger      hclog.Logger
}

type NodeHandler interface {
	Init(ctx context.Context, deps Deps) error
	Process(ctx context.Context, wf model.Workflow, node model.Node, in model.Items) (model.Items, error)
}

type StateStore interface {
	SaveNodeState(ctx context.Context, execID string, nodeID model.ID, state map[string]any) error
	LoadNodeState(ctx context.Context, execID string, nodeID model.ID) (map[string]any, error)
}

type EventBus interface {
	Emit(ctx context.Context, event string, fields map[string]any) error
}

// CredentialStore resolves stored credential data by type and name.
type CredentialStore interface {
	Get(ctx context.Context, credType, name string) (map[string]any, error)
}

// HTTPRequester executes a single HTTP request. Failures of the exchange
// itself (network errors, non-2xx responses) are returned as *TransportError;
// any other error means the request could not be issued or decoded.
type HTTPRequester interface {
	Do(ctx context.Context, opts RequestOptions) (any, error)
}

// logger returns deps.Logger or a null logger so handlers never nil-check.
func (d Deps) logger() hclog.Logger {
	if d.Logger == nil {
		return hclog.NewNullLogger()
	}
	return d.Logger
}
