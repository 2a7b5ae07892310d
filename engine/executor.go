package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/Tsinling0525/rivulet-nautobot/model"
	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

type Engine struct {
	Deps plugin.Deps
	log  hclog.Logger
}

func New(deps plugin.Deps) *Engine {
	log := deps.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Engine{Deps: deps, log: log.Named("engine")}
}

// Run executes wf once, node by node in topological order. Each node receives
// its entry in inputs followed by the outputs of its predecessors. The first
// node error stops the run and is returned wrapped.
func (e *Engine) Run(ctx context.Context, execID string, wf model.Workflow, inputs map[model.ID]model.Items) (map[model.ID]model.Items, error) {
	order, outs, err := topo(wf)
	if err != nil {
		return nil, err
	}
	pending := make(map[model.ID]model.Items, len(inputs))
	for id, items := range inputs {
		pending[id] = append(model.Items{}, items...)
	}
	results := map[model.ID]model.Items{}
	log := e.log.With("exec", execID, "workflow", wf.ID)

	for _, nodeID := range order {
		node, _ := wf.Node(nodeID)
		in := pending[nodeID]
		if in == nil {
			in = model.Items{}
		}

		e.emit(ctx, "node_started", map[string]any{"exec": execID, "node": node.ID, "type": node.Type})
		start := time.Now()
		out, err := e.runNode(ctx, wf, node, in)
		if err != nil {
			log.Error("node failed", "node", node.ID, "type", node.Type, "error", err)
			e.emit(ctx, "node_failed", map[string]any{"exec": execID, "node": node.ID, "type": node.Type, "error": err.Error()})
			e.save(ctx, execID, node.ID, map[string]any{"status": "failed", "error": err.Error()})
			return results, fmt.Errorf("node %s (%s): %w", node.Name, node.ID, err)
		}
		log.Debug("node completed", "node", node.ID, "items", len(out), "duration", time.Since(start))
		e.emit(ctx, "node_completed", map[string]any{"exec": execID, "node": node.ID, "type": node.Type, "count": len(out)})
		e.save(ctx, execID, node.ID, map[string]any{"status": "completed", "count": len(out)})

		results[node.ID] = out
		// fan-out to successors as naive concat
		for _, succ := range outs[node.ID] {
			pending[succ] = append(pending[succ], out...)
		}
	}

	e.emit(ctx, "execution_completed", map[string]any{"exec": execID, "at": time.Now().UTC()})
	return results, nil
}

func (e *Engine) runNode(ctx context.Context, wf model.Workflow, node model.Node, in model.Items) (model.Items, error) {
	handler, ok := plugin.New(node.Type)
	if !ok {
		return nil, fmt.Errorf("unknown node type: %s", node.Type)
	}
	if err := handler.Init(ctx, e.Deps); err != nil {
		return nil, err
	}
	if node.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, node.Timeout)
		defer cancel()
	}
	return handler.Process(ctx, wf, node, in)
}

func (e *Engine) emit(ctx context.Context, event string, fields map[string]any) {
	if e.Deps.Bus == nil {
		return
	}
	if err := e.Deps.Bus.Emit(ctx, event, fields); err != nil {
		e.log.Warn("event bus error", "event", event, "error", err)
	}
}

func (e *Engine) save(ctx context.Context, execID string, nodeID model.ID, state map[string]any) {
	if e.Deps.State == nil {
		return
	}
	if err := e.Deps.State.SaveNodeState(ctx, execID, nodeID, state); err != nil {
		e.log.Warn("state store error", "node", nodeID, "error", err)
	}
}
