package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/Tsinling0525/rivulet-nautobot/engine"
	"github.com/Tsinling0525/rivulet-nautobot/format/n8n"
	"github.com/Tsinling0525/rivulet-nautobot/infra"
	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

// Version is reported by /health.
const Version = "0.2.0"

// APIRequest represents the request to start a workflow
type APIRequest = n8n.N8nRequest

// APIResponse represents the API response
type APIResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Server holds what the handlers share across requests.
type Server struct {
	deps    plugin.Deps
	state   *infra.MemState
	metrics *infra.MetricsBus
	log     hclog.Logger
}

func sendResponse(c *gin.Context, statusCode int, success bool, data map[string]any, errorMsg string) {
	c.JSON(statusCode, APIResponse{Success: success, Data: data, Error: errorMsg})
}

func sendSuccess(c *gin.Context, data map[string]any) {
	sendResponse(c, http.StatusOK, true, data, "")
}

func sendError(c *gin.Context, statusCode int, errorMsg string) {
	sendResponse(c, statusCode, false, nil, errorMsg)
}

func (s *Server) handleHealth(c *gin.Context) {
	sendSuccess(c, map[string]any{"status": "healthy", "timestamp": time.Now().Unix(), "version": Version})
}

func (s *Server) handleNodes(c *gin.Context) {
	descs := plugin.Descriptions()
	creds := []plugin.CredentialType{}
	seen := map[string]bool{}
	for _, d := range descs {
		for _, ref := range d.Credentials {
			if seen[ref.Name] {
				continue
			}
			seen[ref.Name] = true
			if ct, ok := plugin.Credential(ref.Name); ok {
				creds = append(creds, ct)
			}
		}
	}
	sendSuccess(c, map[string]any{"nodes": descs, "credentials": creds})
}

func (s *Server) handleStartWorkflow(c *gin.Context) {
	var req APIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	workflow, inputData, err := n8n.ToRivulet(req)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid workflow: "+err.Error())
		return
	}

	executionID := uuid.NewString()
	eng := engine.New(s.deps)
	result, err := eng.Run(c.Request.Context(), executionID, workflow, inputData)
	if err != nil {
		s.log.Error("execution failed", "exec", executionID, "error", err)
		sendResponse(c, http.StatusInternalServerError, false, map[string]any{"executionId": executionID, "result": result}, err.Error())
		return
	}
	sendSuccess(c, map[string]any{"executionId": executionID, "result": result})
}

func (s *Server) handleExecution(c *gin.Context) {
	id := c.Param("id")
	nodes := s.state.Execution(id)
	if len(nodes) == 0 {
		sendError(c, http.StatusNotFound, "execution not found: "+id)
		return
	}
	sendSuccess(c, map[string]any{"executionId": id, "nodes": nodes})
}

// requestLogger logs one line per request through hclog.
func requestLogger(log hclog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// NewRouter builds the Gin router with routes and middleware. deps is shared
// by every execution. /executions and /metrics only see what reaches state
// and metrics through deps.
func NewRouter(deps plugin.Deps, state *infra.MemState, metrics *infra.MetricsBus, log hclog.Logger) *gin.Engine {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	s := &Server{deps: deps, state: state, metrics: metrics, log: log.Named("api")}

	r := gin.New()
	r.Use(requestLogger(s.log))
	r.Use(gin.Recovery())
	// CORS
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", s.handleHealth)
	r.GET("/nodes", s.handleNodes)
	r.POST("/workflow/start", s.handleStartWorkflow)
	r.GET("/executions/:id", s.handleExecution)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}
