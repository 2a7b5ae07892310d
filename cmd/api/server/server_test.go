package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsinling0525/rivulet-nautobot/infra"
	"github.com/Tsinling0525/rivulet-nautobot/nodes/nautobot"
	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

func newTestRouter(t *testing.T, nautobotURL string) (*gin.Engine, *infra.MemState) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	creds := infra.NewMemCredentials()
	creds.Put(nautobot.CredentialType, plugin.DefaultCredentialName, map[string]any{"apiUrl": nautobotURL, "token": "testToken"})
	state := infra.NewMemState()
	metrics := infra.NewMetricsBus()
	deps := plugin.Deps{
		State:       state,
		Bus:         metrics,
		Credentials: creds,
		HTTP:        infra.NewHTTPTransport(infra.TransportConfig{Timeout: 5 * time.Second}, nil),
		Logger:      hclog.NewNullLogger(),
	}
	return NewRouter(deps, state, metrics, nil), state
}

func do(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var resp APIResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func nautobotStub() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/api/dcim/devices/device-id-123/" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Device not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"device-id-123","name":"edge-01"}`))
	}))
}

const startBody = `{
  "workflow": {
    "id": "wf-1",
    "name": "Inventory",
    "nodes": [{
      "id": "n1",
      "name": "Get Device",
      "type": "n8n-nodes-nautobot.nautobot",
      "parameters": {"operation": "getDevice", "deviceId": "%s"}
    }],
    "connections": {}
  }
}`

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, "http://unused")

	rec, resp := do(r, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", resp.Data["status"])
	assert.Equal(t, Version, resp.Data["version"])
}

func TestNodes(t *testing.T) {
	r, _ := newTestRouter(t, "http://unused")

	rec, resp := do(r, http.MethodGet, "/nodes", "")

	require.Equal(t, http.StatusOK, rec.Code)
	nodes, _ := resp.Data["nodes"].([]any)
	names := []string{}
	for _, n := range nodes {
		m, _ := n.(map[string]any)
		name, _ := m["name"].(string)
		names = append(names, name)
	}
	assert.Contains(t, names, nautobot.NodeType)
	assert.Contains(t, rec.Body.String(), nautobot.CredentialType)
}

func TestStartWorkflow(t *testing.T) {
	stub := nautobotStub()
	defer stub.Close()
	r, _ := newTestRouter(t, stub.URL)

	rec, resp := do(r, http.MethodPost, "/workflow/start", strings.Replace(startBody, "%s", "device-id-123", 1))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)
	execID, _ := resp.Data["executionId"].(string)
	require.NotEmpty(t, execID)
	result, _ := resp.Data["result"].(map[string]any)
	items, _ := result["n1"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "edge-01", items[0].(map[string]any)["name"])

	rec, resp = do(r, http.MethodGet, "/executions/"+execID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	nodes, _ := resp.Data["nodes"].(map[string]any)
	n1, _ := nodes["n1"].(map[string]any)
	assert.Equal(t, "completed", n1["status"])

	rec, _ = do(r, http.MethodGet, "/metrics", "")
	assert.Contains(t, rec.Body.String(), `rivulet_engine_events_total{event="node_completed",node_type="nautobot"} 1`)
}

func TestStartWorkflow_NodeFailure(t *testing.T) {
	stub := nautobotStub()
	defer stub.Close()
	r, _ := newTestRouter(t, stub.URL)

	rec, resp := do(r, http.MethodPost, "/workflow/start", strings.Replace(startBody, "%s", "missing", 1))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Nautobot API request failed: Device not found")
}

func TestStartWorkflow_BadRequests(t *testing.T) {
	r, _ := newTestRouter(t, "http://unused")

	rec, resp := do(r, http.MethodPost, "/workflow/start", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "Invalid JSON")

	rec, resp = do(r, http.MethodPost, "/workflow/start",
		`{"workflow":{"nodes":[{"name":"A","type":"nautobot"}],"connections":{"A":{"main":[[{"node":"B"}]]}}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "Invalid workflow")
}

func TestExecution_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, "http://unused")

	rec, resp := do(r, http.MethodGet, "/executions/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t, "http://unused")

	rec, _ := do(r, http.MethodOptions, "/workflow/start", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
