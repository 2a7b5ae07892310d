package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/Tsinling0525/rivulet-nautobot/nodes/nautobot"
	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

type deviceCommand struct {
	*baseCommand
}

func (c *deviceCommand) Synopsis() string { return "Query Nautobot devices" }

func (c *deviceCommand) Help() string {
	return `Usage: rivulet device <subcommand> [options]

  Queries the Nautobot instance of a stored nautobotApi credential.`
}

func (c *deviceCommand) Run(args []string) int { return cli.RunResultHelp }

// deviceFlags are shared by the device subcommands.
type deviceFlags struct {
	credential string
}

func (c *baseCommand) nautobotClient(credential string) (*nautobot.Client, error) {
	rt, err := c.runtime()
	if err != nil {
		return nil, err
	}
	data, err := rt.creds.Get(context.Background(), nautobot.CredentialType, credential)
	if err != nil {
		return nil, err
	}
	creds, err := nautobot.DecodeCredentials(data)
	if err != nil {
		return nil, err
	}
	return nautobot.NewClient(creds.APIURL, creds.Token, transportHost{t: rt.transport}), nil
}

func (c *baseCommand) printResult(res nautobot.Result) int {
	switch res.Kind {
	case nautobot.ResultOK:
		return c.printJSON(res.Value)
	case nautobot.ResultTransportError:
		c.UI.Error("Nautobot API request failed: " + res.Message())
		if p := res.Payload(); p != nil {
			c.printJSON(p)
		}
	default:
		c.UI.Error("Error executing Nautobot request: " + res.Message())
	}
	return 1
}

type deviceGetCommand struct {
	*baseCommand
	deviceFlags

	flagID string
}

func (c *deviceGetCommand) Synopsis() string { return "Fetch one device by ID" }

func (c *deviceGetCommand) Help() string {
	return `Usage: rivulet device get -id=<uuid> [-credential=name] [-config=path]`
}

func (c *deviceGetCommand) Run(args []string) int {
	f := c.flagSet("device get")
	f.StringVar(&c.credential, "credential", plugin.DefaultCredentialName, "Name of the nautobotApi credential.")
	f.StringVar(&c.flagID, "id", "", "Device ID.")
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagID == "" {
		c.UI.Error("Device ID is required for getDevice operation.")
		return 1
	}
	client, err := c.nautobotClient(c.credential)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return c.printResult(client.GetDevice(context.Background(), c.flagID))
}

type deviceListCommand struct {
	*baseCommand
	deviceFlags

	filters filterFlags
}

func (c *deviceListCommand) Synopsis() string { return "List devices" }

func (c *deviceListCommand) Help() string {
	return `Usage: rivulet device list [-filter=key=value ...] [-credential=name] [-config=path]

  Filters are passed to Nautobot as query parameters. Repeating a key
  sends it several times.`
}

func (c *deviceListCommand) Run(args []string) int {
	f := c.flagSet("device list")
	f.StringVar(&c.credential, "credential", plugin.DefaultCredentialName, "Name of the nautobotApi credential.")
	f.Var(&c.filters, "filter", "Filter as key=value. Repeatable.")
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	client, err := c.nautobotClient(c.credential)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return c.printResult(client.ListDevices(context.Background(), c.filters.query()))
}

// filterFlags collects repeated -filter=key=value flags.
type filterFlags []string

func (f *filterFlags) String() string { return strings.Join(*f, ",") }

func (f *filterFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("filter %q: expected key=value", v)
	}
	*f = append(*f, v)
	return nil
}

func (f filterFlags) query() map[string]any {
	if len(f) == 0 {
		return nil
	}
	out := map[string]any{}
	for _, kv := range f {
		k, v, _ := strings.Cut(kv, "=")
		switch prev := out[k].(type) {
		case nil:
			out[k] = v
		case string:
			out[k] = []string{prev, v}
		case []string:
			out[k] = append(prev, v)
		}
	}
	return out
}
