package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/Tsinling0525/rivulet-nautobot/cmd/api/server"
	"github.com/Tsinling0525/rivulet-nautobot/engine"
	"github.com/Tsinling0525/rivulet-nautobot/format/n8n"
	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

type serverCommand struct {
	*baseCommand
}

func (c *serverCommand) Synopsis() string { return "Run the workflow API server" }

func (c *serverCommand) Help() string {
	return `Usage: rivulet server [-config=path]

  Serves the n8n-compatible workflow API. The port comes from the config
  file or RIV_API_PORT.`
}

func (c *serverCommand) Run(args []string) int {
	if err := c.flagSet("server").Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	rt, err := c.runtime()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	r := server.NewRouter(rt.deps(), rt.state, rt.metrics, rt.log)
	addr := fmt.Sprintf(":%d", rt.cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info("listening", "addr", addr, "version", server.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		rt.log.Error("server error", "error", err)
		return 1
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		rt.log.Error("shutdown", "error", err)
		return 1
	}
	return 0
}

type runCommand struct {
	*baseCommand

	flagFile string
}

func (c *runCommand) Synopsis() string { return "Run an n8n workflow file once" }

func (c *runCommand) Help() string {
	return `Usage: rivulet run -file=workflow.json [-config=path]

  Executes an n8n workflow request (or a bare workflow) and prints the
  output items of every node as JSON.`
}

func (c *runCommand) Run(args []string) int {
	f := c.flagSet("run")
	f.StringVar(&c.flagFile, "file", "", "Path to n8n workflow JSON.")
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagFile == "" {
		c.UI.Error("-file is required")
		return 1
	}

	raw, err := os.ReadFile(c.flagFile)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	req, err := decodeRequest(raw)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	wf, inputs, err := n8n.ToRivulet(req)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	rt, err := c.runtime()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	execID := uuid.NewString()
	res, err := engine.New(rt.deps()).Run(context.Background(), execID, wf, inputs)
	if err != nil {
		c.UI.Error(fmt.Sprintf("execution %s: %v", execID, err))
		return 1
	}
	return c.printJSON(res)
}

// decodeRequest accepts a full {"workflow": ...} request or a bare workflow
// as exported from n8n.
func decodeRequest(raw []byte) (n8n.N8nRequest, error) {
	var req n8n.N8nRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, err
	}
	if len(req.Workflow.Nodes) > 0 {
		return req, nil
	}
	var wf n8n.N8nWorkflow
	if err := json.Unmarshal(raw, &wf); err != nil {
		return req, err
	}
	req.Workflow = wf
	return req, nil
}

type nodesCommand struct {
	*baseCommand
}

func (c *nodesCommand) Synopsis() string { return "List registered node types" }

func (c *nodesCommand) Help() string {
	return `Usage: rivulet nodes

  Lists every registered node type with its aliases and credentials.`
}

func (c *nodesCommand) Run(args []string) int {
	for _, d := range plugin.Descriptions() {
		creds := make([]string, 0, len(d.Credentials))
		for _, ref := range d.Credentials {
			creds = append(creds, ref.Name)
		}
		sort.Strings(creds)
		c.UI.Output(fmt.Sprintf("%s\t%s\taliases=%s\tcredentials=%s",
			d.Name, d.DisplayName, strings.Join(d.Aliases, ","), strings.Join(creds, ",")))
	}
	return 0
}

type versionCommand struct {
	*baseCommand
}

func (c *versionCommand) Synopsis() string { return "Print the version" }
func (c *versionCommand) Help() string     { return "Usage: rivulet version" }

func (c *versionCommand) Run(args []string) int {
	c.UI.Output("rivulet v" + server.Version)
	return 0
}

func (c *baseCommand) printJSON(v any) int {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output(string(b))
	return 0
}
