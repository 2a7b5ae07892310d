package main

import (
	"bufio"
	"os"

	"github.com/mitchellh/cli"

	"github.com/Tsinling0525/rivulet-nautobot/cmd/api/server"
	_ "github.com/Tsinling0525/rivulet-nautobot/nodes/http"
	_ "github.com/Tsinling0525/rivulet-nautobot/nodes/nautobot"
)

func main() {
	os.Exit(realMain(os.Args))
}

// realMain runs the CLI with the given arguments and returns the exit code.
func realMain(args []string) int {
	name := "rivulet"

	if len(args) == 2 && (args[1] == "-version" || args[1] == "-v") {
		args = []string{args[0], "version"}
	}
	// No subcommand starts the API server.
	if len(args) <= 1 {
		args = []string{args[0], "server"}
	}

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	c := &cli.CLI{
		Name:     name,
		Args:     args[1:],
		Version:  server.Version,
		Commands: commands(ui),
	}

	exitCode, err := c.Run()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	return exitCode
}

func commands(ui cli.Ui) map[string]cli.CommandFactory {
	b := &baseCommand{UI: ui}
	return map[string]cli.CommandFactory{
		"server": func() (cli.Command, error) {
			return &serverCommand{baseCommand: b}, nil
		},
		"run": func() (cli.Command, error) {
			return &runCommand{baseCommand: b}, nil
		},
		"nodes": func() (cli.Command, error) {
			return &nodesCommand{baseCommand: b}, nil
		},
		"device": func() (cli.Command, error) {
			return &deviceCommand{baseCommand: b}, nil
		},
		"device get": func() (cli.Command, error) {
			return &deviceGetCommand{baseCommand: b}, nil
		},
		"device list": func() (cli.Command, error) {
			return &deviceListCommand{baseCommand: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &versionCommand{baseCommand: b}, nil
		},
	}
}
