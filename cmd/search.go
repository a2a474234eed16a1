package cmd

import (
	"fmt"
	"github.com/urfave/cli/v2"
	"heckel.io/esctl/client"
	"heckel.io/esctl/util"
	"time"
)

var cmdSearch = &cli.Command{
	Name:      "search",
	Aliases:   []string{"s"},
	Usage:     "Run async searches against the cluster",
	UsageText: "esctl search COMMAND [OPTION..] [ARG..]",
	Subcommands: []*cli.Command{
		cmdSearchSubmit,
		cmdSearchStatus,
		cmdSearchWait,
		cmdSearchGet,
		cmdSearchDelete,
	},
}

var cmdSearchSubmit = &cli.Command{
	Name:      "submit",
	Usage:     "Submit an async search and return the search ID",
	UsageText: "esctl search submit --index INDEX [--query-file FILE] [OPTION..]",
	Action:    execSearchSubmit,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "index", Aliases: []string{"i"}, Required: true, Usage: "index or alias to search"},
		&cli.StringFlag{Name: "query-file", Aliases: []string{"f"}, Usage: "path to JSON file containing the query, stdin otherwise", TakesFile: true},
		&cli.StringFlag{Name: "wait-for", Value: client.DefaultWaitFor, Usage: "initial wait timeout for completion"},
		&cli.StringFlag{Name: "keep-alive", Value: client.DefaultKeepAlive, Usage: "how long to keep the search alive"},
	},
}

var cmdSearchStatus = &cli.Command{
	Name:      "status",
	Usage:     "Check the status of an async search",
	UsageText: "esctl search status [--wait-for 5s] SEARCH_ID",
	Action:    execSearchStatus,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "wait-for", Usage: "wait timeout for completion (e.g. 5s)"},
	},
}

var cmdSearchWait = &cli.Command{
	Name:      "wait",
	Usage:     "Wait for an async search to complete, showing progress",
	UsageText: "esctl search wait [--interval 5s] [--timeout DURATION] SEARCH_ID",
	Action:    execSearchWait,
	Flags: []cli.Flag{
		&cli.DurationFlag{Name: "interval", Value: 5 * time.Second, Usage: "poll interval"},
		&cli.DurationFlag{Name: "timeout", Usage: "maximum wait time (unlimited when omitted)"},
	},
}

var cmdSearchGet = &cli.Command{
	Name:      "get",
	Usage:     "Get the results of an async search",
	UsageText: "esctl search get [--output FILE] [--format jsonl] SEARCH_ID",
	Action:    execSearchGet,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default: stdout)"},
		&cli.StringFlag{Name: "format", Value: "jsonl", Usage: "output format: json or jsonl"},
	},
}

var cmdSearchDelete = &cli.Command{
	Name:      "delete",
	Usage:     "Delete an async search",
	UsageText: "esctl search delete SEARCH_ID",
	Action:    execSearchDelete,
}

func execSearchSubmit(c *cli.Context) error {
	cl, _, err := newClient(c)
	if err != nil {
		return err
	}
	query, err := readQuery(c)
	if err != nil {
		return err
	}
	index := c.String("index")
	fmt.Fprintf(c.App.ErrWriter, "Submitting async search to %s...\n", index)
	res, err := cl.SubmitAsyncSearch(c.Context, index, query, c.String("wait-for"), c.String("keep-alive"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Search submitted!")
	fmt.Fprintf(c.App.Writer, "  Search ID: %s\n", res.ID)
	fmt.Fprintf(c.App.Writer, "  Running: %t\n", res.IsRunning)
	fmt.Fprintf(c.App.Writer, "  Partial: %t\n", res.IsPartial)
	fmt.Fprintf(c.App.Writer, "  Shards: %s\n", res.Response.Shards)
	return nil
}

func execSearchStatus(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("invalid syntax: search id missing", 1)
	}
	cl, _, err := newClient(c)
	if err != nil {
		return err
	}
	res, err := cl.GetAsyncSearch(c.Context, c.Args().Get(0), c.String("wait-for"))
	if err != nil {
		return err
	}
	status := "Complete"
	if res.IsRunning {
		status = "Running"
	}
	fmt.Fprintf(c.App.Writer, "Status: %s\n", status)
	fmt.Fprintf(c.App.Writer, "  Partial: %t\n", res.IsPartial)
	fmt.Fprintf(c.App.Writer, "  Shards: %s\n", res.Response.Shards)
	fmt.Fprintf(c.App.Writer, "  Took: %dms\n", res.Response.Took)
	fmt.Fprintf(c.App.Writer, "  Hits returned: %d\n", len(res.Hits()))
	return nil
}

func execSearchWait(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("invalid syntax: search id missing", 1)
	}
	cl, _, err := newClient(c)
	if err != nil {
		return err
	}
	bar := util.NewProgressBar(c.App.ErrWriter)
	res, err := cl.WaitForAsyncSearch(c.Context, c.Args().Get(0), c.Duration("interval"), c.Duration("timeout"),
		func(shards client.Shards, elapsed time.Duration) {
			bar.Status(fmt.Sprintf("Shards: %s | Elapsed: %ds", shards, int(elapsed.Seconds())))
		})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.ErrWriter)
	if res == nil {
		fmt.Fprintln(c.App.Writer, "Search no longer present (expired or deleted).")
		return nil
	}
	fmt.Fprintln(c.App.Writer, "Search complete!")
	fmt.Fprintf(c.App.Writer, "  Shards: %s\n", res.Response.Shards)
	fmt.Fprintf(c.App.Writer, "  Took: %dms\n", res.Response.Took)
	fmt.Fprintf(c.App.Writer, "  Hits returned: %d\n", len(res.Hits()))
	return nil
}

func execSearchGet(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("invalid syntax: search id missing", 1)
	}
	format := c.String("format")
	if format != "json" && format != "jsonl" {
		return cli.Exit("invalid format: must be json or jsonl", 1)
	}
	cl, _, err := newClient(c)
	if err != nil {
		return err
	}
	res, err := cl.GetAsyncSearch(c.Context, c.Args().Get(0), "")
	if err != nil {
		return err
	}
	hits := res.Hits()
	data, err := util.FormatHits(hits, format)
	if err != nil {
		return err
	}
	output := c.String("output")
	if err := util.WriteOutput(c.App.Writer, output, data); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(c.App.Writer, "Wrote %d hits to %s\n", len(hits), output)
	}
	return nil
}

func execSearchDelete(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("invalid syntax: search id missing", 1)
	}
	cl, _, err := newClient(c)
	if err != nil {
		return err
	}
	deleted, err := cl.DeleteAsyncSearch(c.Context, c.Args().Get(0), client.Warn)
	if err != nil {
		return err
	}
	if deleted {
		fmt.Fprintln(c.App.Writer, "Search deleted.")
	}
	return nil
}
