package cmd

import (
	"fmt"
	"github.com/urfave/cli/v2"
)

var cmdVersion = &cli.Command{
	Name:      "version",
	Usage:     "Show cluster version information",
	UsageText: "esctl version [OPTION..]",
	Action:    execVersion,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "text", Usage: "output format: text or json"},
	},
}

func execVersion(c *cli.Context) error {
	output := c.String("output")
	if output != "text" && output != "json" {
		return cli.Exit("invalid output: must be text or json", 1)
	}
	cl, _, err := newClient(c)
	if err != nil {
		return err
	}
	info, err := cl.Info(c.Context)
	if err != nil {
		return err
	}
	if output == "json" {
		return printJSON(c.App.Writer, info)
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Cluster:      %s\n", info.ClusterName)
	fmt.Fprintf(w, "UUID:         %s\n", info.ClusterUUID)
	fmt.Fprintf(w, "Version:      %s\n", info.Version.Number)
	fmt.Fprintf(w, "Build:        %s / %s\n", info.Version.BuildFlavor, info.Version.BuildType)
	fmt.Fprintf(w, "Lucene:       %s\n", info.Version.LuceneVersion)
	return nil
}
