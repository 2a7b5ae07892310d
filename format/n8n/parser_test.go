package n8n

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsinling0525/rivulet-nautobot/model"
	_ "github.com/Tsinling0525/rivulet-nautobot/nodes/nautobot"
)

const exported = `{
  "id": "wf-1",
  "name": "Inventory",
  "nodes": [
    {"id": "a1", "name": "Start", "type": "http:request", "parameters": {"url": "http://example.test"}},
    {
      "id": "b2",
      "name": "Get Device",
      "type": "n8n-nodes-nautobot.nautobot",
      "typeVersion": 1,
      "position": [100, 200],
      "parameters": {"operation": "getDevice", "deviceId": "device-id-123"},
      "credentials": {"nautobotApi": {"id": "7", "name": "prod"}},
      "onError": "continueRegularOutput"
    }
  ],
  "connections": {
    "Start": {"main": [[{"node": "Get Device", "type": "main", "index": 0}]]}
  }
}`

func TestParseWorkflow(t *testing.T) {
	var raw N8nWorkflow
	require.NoError(t, json.Unmarshal([]byte(exported), &raw))

	wf, err := ParseWorkflow(raw)
	require.NoError(t, err)

	assert.Equal(t, model.ID("wf-1"), wf.ID)
	assert.Equal(t, "Inventory", wf.Name)
	require.Len(t, wf.Nodes, 2)

	node, ok := wf.Node("b2")
	require.True(t, ok)
	assert.Equal(t, "nautobot", node.Type)
	assert.Equal(t, "device-id-123", node.Config["deviceId"])
	assert.Equal(t, map[string]string{"nautobotApi": "prod"}, node.Credentials)
	assert.True(t, node.ContinueOnFail)
	assert.Equal(t, DefaultTimeout, node.Timeout)

	start, _ := wf.Node("a1")
	assert.False(t, start.ContinueOnFail)
	assert.Nil(t, start.Credentials)

	require.Len(t, wf.Edges, 1)
	assert.Equal(t, model.Edge{FromNode: "a1", FromPort: model.PortMain, ToNode: "b2", ToPort: model.PortMain}, wf.Edges[0])
}

func TestParseWorkflow_UnknownConnections(t *testing.T) {
	wf := N8nWorkflow{
		Nodes: []N8nNode{{Name: "A", Type: "http:request"}},
		Connections: map[string]N8nConnections{
			"A":     {Main: [][]N8nConnection{{{Node: "Missing"}}}},
			"Ghost": {Main: [][]N8nConnection{{{Node: "A"}}}},
		},
	}

	_, err := ParseWorkflow(wf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown node "Missing"`)
	assert.Contains(t, err.Error(), `unknown node "Ghost"`)
}

func TestParseWorkflow_NameAsID(t *testing.T) {
	wf, err := ParseWorkflow(N8nWorkflow{
		Nodes: []N8nNode{{Name: "Only", Type: "nautobot", ContinueOnFail: true}},
	})
	require.NoError(t, err)
	require.Len(t, wf.Nodes, 1)
	assert.Equal(t, model.ID("Only"), wf.Nodes[0].ID)
	assert.True(t, wf.Nodes[0].ContinueOnFail)
}

func TestToRivulet_DefaultInputs(t *testing.T) {
	var raw N8nWorkflow
	require.NoError(t, json.Unmarshal([]byte(exported), &raw))

	_, inputs, err := ToRivulet(N8nRequest{Workflow: raw})
	require.NoError(t, err)
	assert.Equal(t, map[model.ID]model.Items{"a1": {{"trigger": "manual"}}}, inputs)
}

func TestToRivulet_ExplicitInputs(t *testing.T) {
	var raw N8nWorkflow
	require.NoError(t, json.Unmarshal([]byte(exported), &raw))

	_, inputs, err := ToRivulet(N8nRequest{
		Workflow: raw,
		Data:     map[string]any{"b2": []any{map[string]any{"deviceId": "x"}, "skipped"}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.Items{{"deviceId": "x"}}, inputs["b2"])
}

func TestParseWorkflow_Expressions(t *testing.T) {
	wf, err := ParseWorkflow(N8nWorkflow{
		Nodes: []N8nNode{{
			Name: "Get Device",
			Type: "nautobot",
			Parameters: map[string]any{
				"operation": "getDevice",
				"deviceId":  "={{ $json.id }}",
				"nested":    map[string]any{"path": "=/sites/{{$json.site.slug}}/"},
				"list":      []any{"={{ $json.role }}", "plain"},
				"other":     "={{ $now }}",
				"literal":   "=not an expression",
			},
		}},
	})
	require.NoError(t, err)
	cfg := wf.Nodes[0].Config

	assert.Equal(t, "getDevice", cfg["operation"])
	assert.Equal(t, "{{.id}}", cfg["deviceId"])
	assert.Equal(t, map[string]any{"path": "/sites/{{.site.slug}}/"}, cfg["nested"])
	assert.Equal(t, []any{"{{.role}}", "plain"}, cfg["list"])
	assert.Equal(t, "{{ $now }}", cfg["other"])
	assert.Equal(t, "=not an expression", cfg["literal"])
}
