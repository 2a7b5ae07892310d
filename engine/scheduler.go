package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Tsinling0525/rivulet-nautobot/model"
)

var ErrCycle = errors.New("workflow contains a cycle")

// Build adjacency + in-degree for topological scheduling. Nodes that become
// ready at the same time run in declaration order.
func topo(wf model.Workflow) (order []model.ID, out map[model.ID][]model.ID, err error) {
	indeg := map[model.ID]int{}     // Track incoming edges per node
	pos := map[model.ID]int{}       // Declaration order
	out = map[model.ID][]model.ID{} // Track outgoing edges per node
	for i, n := range wf.Nodes {
		indeg[n.ID] = 0
		pos[n.ID] = i
	}
	for _, e := range wf.Edges {
		if _, ok := indeg[e.FromNode]; !ok {
			return nil, nil, fmt.Errorf("edge from unknown node %q", e.FromNode)
		}
		if _, ok := indeg[e.ToNode]; !ok {
			return nil, nil, fmt.Errorf("edge to unknown node %q", e.ToNode)
		}
		out[e.FromNode] = append(out[e.FromNode], e.ToNode)
		indeg[e.ToNode]++
	}
	// Kahn
	q := []model.ID{}
	for _, n := range wf.Nodes {
		if indeg[n.ID] == 0 {
			q = append(q, n.ID)
		}
	}
	for len(q) > 0 {
		v := q[0]
		q = q[1:]
		order = append(order, v)
		for _, u := range out[v] {
			indeg[u]--
			if indeg[u] == 0 {
				q = append(q, u)
				sort.SliceStable(q, func(i, j int) bool { return pos[q[i]] < pos[q[j]] })
			}
		}
	}
	if len(order) != len(wf.Nodes) {
		return nil, nil, ErrCycle
	}
	return order, out, nil
}
