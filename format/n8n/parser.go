package n8n

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"

	"github.com/Tsinling0525/rivulet-nautobot/model"
	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

// DefaultTimeout bounds every imported node.
const DefaultTimeout = 30 * time.Second

// N8nWorkflow represents the n8n workflow format
type N8nWorkflow struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Active      bool                      `json:"active"`
	Nodes       []N8nNode                 `json:"nodes"`
	Connections map[string]N8nConnections `json:"connections"`
	Settings    map[string]any            `json:"settings"`
}

// N8nNode represents an n8n node
type N8nNode struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	TypeVersion    float64        `json:"typeVersion"`
	Position       []float64      `json:"position"`
	Parameters     map[string]any `json:"parameters"`
	Credentials    map[string]any `json:"credentials"`
	ContinueOnFail bool           `json:"continueOnFail"`
	OnError        string         `json:"onError"`
}

// N8nConnections represents n8n node connections
type N8nConnections struct {
	Main [][]N8nConnection `json:"main"`
}

// N8nConnection represents a single connection
type N8nConnection struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// N8nRequest represents the full n8n API request
type N8nRequest struct {
	Workflow N8nWorkflow    `json:"workflow"`
	Data     map[string]any `json:"data,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

// credentialRef is how n8n points a node at a stored credential.
type credentialRef struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// ParseWorkflow converts an n8n workflow to a Rivulet workflow. n8n keys
// connections by node name; they are resolved to node IDs here. Package
// type names registered as aliases are mapped to their Rivulet type.
func ParseWorkflow(n8nWF N8nWorkflow) (model.Workflow, error) {
	var errs *multierror.Error
	nodes := make([]model.Node, 0, len(n8nWF.Nodes))
	byName := map[string]model.ID{}

	for _, n := range n8nWF.Nodes {
		id := n.ID
		if id == "" {
			id = n.Name
		}
		nodeType := n.Type
		if t, ok := plugin.Resolve(n.Type); ok {
			nodeType = t
		}
		config := map[string]any{}
		for k, v := range n.Parameters {
			config[k] = convertExpressions(v)
		}

		creds, err := parseCredentials(n.Credentials)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("node %q: %w", n.Name, err))
		}

		node := model.Node{
			ID:             model.ID(id),
			Type:           nodeType,
			Name:           n.Name,
			Config:         config,
			Credentials:    creds,
			Timeout:        DefaultTimeout,
			ContinueOnFail: n.ContinueOnFail || continues(n.OnError),
		}
		nodes = append(nodes, node)
		byName[n.Name] = node.ID
	}

	edges := []model.Edge{}
	for from, conns := range n8nWF.Connections {
		fromID, ok := byName[from]
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("connection from unknown node %q", from))
			continue
		}
		for _, group := range conns.Main {
			for _, c := range group {
				toID, ok := byName[c.Node]
				if !ok {
					errs = multierror.Append(errs, fmt.Errorf("connection from %q to unknown node %q", from, c.Node))
					continue
				}
				edges = append(edges, model.Edge{
					FromNode: fromID,
					FromPort: model.PortMain,
					ToNode:   toID,
					ToPort:   model.PortMain,
				})
			}
		}
	}

	wf := model.Workflow{
		ID:    model.ID(n8nWF.ID),
		Name:  n8nWF.Name,
		Nodes: nodes,
		Edges: edges,
	}
	return wf, errs.ErrorOrNil()
}

// jsonField matches n8n item references such as {{ $json.id }} or
// {{ $json.status.value }}.
var jsonField = regexp.MustCompile(`\{\{\s*\$json((?:\.[A-Za-z_][A-Za-z0-9_]*)+)\s*\}\}`)

// convertExpressions rewrites n8n expressions ("={{ $json.id }}") into the
// Go templates the engine renders ("{{.id}}"). Other strings, and n8n
// expressions that reference anything but $json fields, are left as they are.
func convertExpressions(v any) any {
	switch vv := v.(type) {
	case string:
		expr, ok := strings.CutPrefix(vv, "=")
		if !ok || !strings.Contains(expr, "{{") {
			return vv
		}
		return jsonField.ReplaceAllString(expr, "{{$1}}")
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			out[k] = convertExpressions(e)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = convertExpressions(e)
		}
		return out
	default:
		return v
	}
}

func continues(onError string) bool {
	return onError == "continueRegularOutput" || onError == "continueErrorOutput"
}

// parseCredentials maps {"nautobotApi": {"id": "1", "name": "prod"}} to
// {"nautobotApi": "prod"}.
func parseCredentials(raw map[string]any) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for credType, v := range raw {
		var ref credentialRef
		if err := mapstructure.WeakDecode(v, &ref); err != nil {
			return nil, fmt.Errorf("credential %q: %w", credType, err)
		}
		name := ref.Name
		if name == "" {
			name = ref.ID
		}
		out[credType] = name
	}
	return out, nil
}

// ParseInputData converts n8n input data to Rivulet format
func ParseInputData(data map[string]any) map[model.ID]model.Items {
	result := make(map[model.ID]model.Items)

	for nodeID, nodeData := range data {
		items, ok := nodeData.([]any)
		if !ok {
			continue
		}
		rivuletItems := make(model.Items, 0, len(items))
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				rivuletItems = append(rivuletItems, m)
			}
		}
		result[model.ID(nodeID)] = rivuletItems
	}

	return result
}

// ToRivulet converts a full n8n request to Rivulet format. Without input
// data, every node without predecessors gets a single manual trigger item.
func ToRivulet(n8nReq N8nRequest) (model.Workflow, map[model.ID]model.Items, error) {
	workflow, err := ParseWorkflow(n8nReq.Workflow)
	if err != nil {
		return model.Workflow{}, nil, err
	}
	inputData := ParseInputData(n8nReq.Data)

	if len(inputData) == 0 {
		hasParent := map[model.ID]bool{}
		for _, e := range workflow.Edges {
			hasParent[e.ToNode] = true
		}
		for _, node := range workflow.Nodes {
			if !hasParent[node.ID] {
				inputData[node.ID] = model.Items{{"trigger": "manual"}}
			}
		}
	}

	return workflow, inputData, nil
}
