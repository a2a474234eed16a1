// Package cmd provides the esctl CLI application
package cmd

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"heckel.io/esctl/client"
	"heckel.io/esctl/util"
	"os"
)

// New creates a new CLI application
func New() *cli.App {
	return &cli.App{
		Name:                   "esctl",
		Usage:                  "Elasticsearch cluster utilities",
		UsageText:              "esctl COMMAND [OPTION..] [ARG..]",
		HideHelp:               true,
		HideVersion:            true,
		EnableBashCompletion:   true,
		UseShortOptionHandling: true,
		Reader:                 os.Stdin,
		Writer:                 os.Stdout,
		ErrWriter:              os.Stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Commands: []*cli.Command{
			cmdAuth,
			cmdGet,
			cmdDescribe,
			cmdSearch,
			cmdExport,
			cmdJSONL,
			cmdVersion,
		},
	}
}

// newClient builds the logger and an authenticated cluster client for a
// command invocation.
func newClient(c *cli.Context) (*client.Client, *zap.Logger, error) {
	logger := util.NewLogger(c.Bool("debug"))
	cl, err := client.FromCredentials(logger)
	if err != nil {
		return nil, nil, err
	}
	return cl, logger, nil
}
