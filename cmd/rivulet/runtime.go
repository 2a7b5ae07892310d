package main

import (
	"context"
	"flag"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/Tsinling0525/rivulet-nautobot/infra"
	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

// baseCommand carries what every subcommand shares.
type baseCommand struct {
	UI cli.Ui

	flagConfig string
}

func (c *baseCommand) flagSet(name string) *flag.FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.StringVar(&c.flagConfig, "config", "", "Path to an HCL config file.")
	return f
}

// runtime is the wired set of infrastructure a command runs against.
type runtime struct {
	cfg       *infra.Config
	log       hclog.Logger
	creds     *infra.MemCredentials
	transport *infra.HTTPTransport
	state     *infra.MemState
	metrics   *infra.MetricsBus
}

func (c *baseCommand) runtime() (*runtime, error) {
	cfg, err := infra.LoadConfig(c.flagConfig)
	if err != nil {
		return nil, err
	}
	log := cfg.NewLogger("rivulet")

	creds := infra.NewMemCredentials()
	if cfg.CredentialsFile != "" {
		if creds, err = infra.LoadCredentialsFile(cfg.CredentialsFile); err != nil {
			return nil, err
		}
	}
	tc, err := cfg.TransportConfig()
	if err != nil {
		return nil, err
	}
	return &runtime{
		cfg:       cfg,
		log:       log,
		creds:     creds,
		transport: infra.NewHTTPTransport(tc, log.Named("http")),
		state:     infra.NewMemState(),
		metrics:   infra.NewMetricsBus(),
	}, nil
}

func (r *runtime) deps() plugin.Deps {
	return plugin.Deps{
		State:       r.state,
		Bus:         infra.MultiBus{infra.LogBus{Log: r.log.Named("events")}, r.metrics},
		Credentials: r.creds,
		HTTP:        r.transport,
		Logger:      r.log,
	}
}

// transportHost lets code outside a workflow use the shared transport.
type transportHost struct{ t plugin.HTTPRequester }

func (h transportHost) HTTPRequest(ctx context.Context, opts plugin.RequestOptions) (any, error) {
	return h.t.Do(ctx, opts)
}
