package cmd

import (
	"fmt"
	"github.com/urfave/cli/v2"
	"heckel.io/esctl/tools"
	"heckel.io/esctl/util"
)

var cmdExport = &cli.Command{
	Name:      "export",
	Aliases:   []string{"e"},
	Usage:     "Export all matching documents via async search and cursor pagination",
	UsageText: "esctl export --index INDEX [--query-file FILE] [OPTION..]",
	Action:    execExport,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "index", Aliases: []string{"i"}, Required: true, Usage: "index or alias to search"},
		&cli.StringFlag{Name: "query-file", Aliases: []string{"f"}, Usage: "path to JSON file containing the query, stdin otherwise", TakesFile: true},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default: stdout)"},
		&cli.StringFlag{Name: "format", Value: "jsonl", Usage: "output format: json or jsonl"},
		&cli.IntFlag{Name: "page-size", Value: 1000, Usage: "results per page"},
		&cli.StringFlag{Name: "keep-alive", Value: "10m", Usage: "cursor keep-alive duration"},
		&cli.StringFlag{Name: "from-date", Usage: "start date filter (inclusive, ISO format)"},
		&cli.StringFlag{Name: "to-date", Usage: "end date filter (exclusive, ISO format)"},
		&cli.StringFlag{Name: "timestamp-field", Value: "@timestamp", Usage: "date field used for filtering and default sort"},
		&cli.DurationFlag{Name: "timeout", Usage: "maximum time to wait for the search to complete (unlimited when omitted)"},
	},
}

func execExport(c *cli.Context) error {
	format := c.String("format")
	if format != "json" && format != "jsonl" {
		return cli.Exit("invalid format: must be json or jsonl", 1)
	}
	cl, logger, err := newClient(c)
	if err != nil {
		return err
	}
	query, err := readQuery(c)
	if err != nil {
		return err
	}
	hits, err := tools.Export(c.Context, cl, logger, c.App.ErrWriter, tools.ExportOptions{
		Index:          c.String("index"),
		Query:          query,
		PageSize:       c.Int("page-size"),
		KeepAlive:      c.String("keep-alive"),
		FromDate:       c.String("from-date"),
		ToDate:         c.String("to-date"),
		TimestampField: c.String("timestamp-field"),
		WaitTimeout:    c.Duration("timeout"),
	})
	if err != nil {
		return err
	}
	data, err := util.FormatHits(hits, format)
	if err != nil {
		return err
	}
	output := c.String("output")
	if err := util.WriteOutput(c.App.Writer, output, data); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(c.App.ErrWriter, "Wrote %d docs to %s\n", len(hits), output)
	}
	return nil
}
