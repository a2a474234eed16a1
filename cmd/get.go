package cmd

import (
	"encoding/json"
	"fmt"
	"github.com/urfave/cli/v2"
	"io"
	"strconv"
	"text/tabwriter"
	"time"
)

var cmdGet = &cli.Command{
	Name:      "get",
	Aliases:   []string{"g"},
	Usage:     "List cluster resources (kubectl-style)",
	UsageText: "esctl get COMMAND [OPTION..] [PATTERN]",
	Subcommands: []*cli.Command{
		cmdGetIndices,
		cmdGetAliases,
	},
}

var cmdGetIndices = &cli.Command{
	Name:      "indices",
	Usage:     "List indices",
	UsageText: "esctl get indices [-o table|wide|json] [--sort COLUMN] [PATTERN]",
	Action:    execGetIndices,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "table", Usage: "output format: table, wide or json"},
		&cli.StringFlag{Name: "sort", Value: "creation.date", Usage: "sort by column"},
	},
}

var cmdGetAliases = &cli.Command{
	Name:      "aliases",
	Usage:     "List aliases",
	UsageText: "esctl get aliases [-o table|json] [PATTERN]",
	Action:    execGetAliases,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "table", Usage: "output format: table or json"},
	},
}

func execGetIndices(c *cli.Context) error {
	output := c.String("output")
	if output != "table" && output != "wide" && output != "json" {
		return cli.Exit("invalid output: must be table, wide or json", 1)
	}
	cl, _, err := newClient(c)
	if err != nil {
		return err
	}
	headers := []string{"index", "health", "status", "docs.count", "store.size", "creation.date"}
	if output == "wide" {
		headers = []string{"index", "health", "status", "docs.count", "store.size", "pri", "rep", "creation.date"}
	}
	indices, err := cl.CatIndices(c.Context, c.Args().Get(0), headers, c.String("sort"))
	if err != nil {
		return err
	}
	if output == "json" {
		return printJSON(c.App.Writer, indices)
	}
	if len(indices) == 0 {
		fmt.Fprintln(c.App.Writer, "No indices found.")
		return nil
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 8, 2, ' ', 0)
	if output == "wide" {
		fmt.Fprintln(w, "NAME\tHEALTH\tSTATUS\tDOCS\tSIZE\tPRI\tREP\tCREATED")
	} else {
		fmt.Fprintln(w, "NAME\tHEALTH\tSTATUS\tDOCS\tSIZE\tCREATED")
	}
	for _, idx := range indices {
		if output == "wide" {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				idx.Index, idx.Health, idx.Status, formatDocs(idx.DocsCount), orDash(idx.StoreSize),
				orDash(idx.Pri), orDash(idx.Rep), formatMillis(idx.CreationDate))
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				idx.Index, idx.Health, idx.Status, formatDocs(idx.DocsCount), orDash(idx.StoreSize),
				formatMillis(idx.CreationDate))
		}
	}
	return w.Flush()
}

func execGetAliases(c *cli.Context) error {
	output := c.String("output")
	if output != "table" && output != "json" {
		return cli.Exit("invalid output: must be table or json", 1)
	}
	cl, _, err := newClient(c)
	if err != nil {
		return err
	}
	aliases, err := cl.CatAliases(c.Context, c.Args().Get(0))
	if err != nil {
		return err
	}
	if output == "json" {
		return printJSON(c.App.Writer, aliases)
	}
	if len(aliases) == 0 {
		fmt.Fprintln(c.App.Writer, "No aliases found.")
		return nil
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tINDEX\tFILTER\tROUTING.INDEX\tROUTING.SEARCH")
	for _, a := range aliases {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.Alias, a.Index, orDash(a.Filter), orDash(a.RoutingIndex), orDash(a.RoutingSearch))
	}
	return w.Flush()
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatDocs adds thousands separators to a numeric doc count.
func formatDocs(count string) string {
	if count == "" {
		return "-"
	}
	n, err := strconv.ParseInt(count, 10, 64)
	if err != nil {
		return count
	}
	out := strconv.FormatInt(n, 10)
	for i := len(out) - 3; i > 0; i -= 3 {
		out = out[:i] + "," + out[i:]
	}
	return out
}

// formatMillis renders an epoch-milliseconds string as a UTC date.
func formatMillis(ms string) string {
	if ms == "" {
		return "-"
	}
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return ms
	}
	return time.UnixMilli(n).UTC().Format("2006-01-02 15:04")
}
