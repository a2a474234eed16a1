package cmd

import (
	"fmt"
	"github.com/urfave/cli/v2"
	"heckel.io/esctl/client"
	"sort"
	"text/tabwriter"
	"time"
)

var cmdDescribe = &cli.Command{
	Name:      "describe",
	Aliases:   []string{"d"},
	Usage:     "Show detailed resource information",
	UsageText: "esctl describe COMMAND [OPTION..] NAME",
	Subcommands: []*cli.Command{
		cmdDescribeIndex,
		cmdDescribeAlias,
	},
}

var describeFlags = []cli.Flag{
	&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "text", Usage: "output format: text or json"},
	&cli.StringFlag{Name: "timestamp-field", Value: "@timestamp", Usage: "field to use for date range calculation"},
}

var cmdDescribeIndex = &cli.Command{
	Name:      "index",
	Usage:     "Show detailed index information",
	UsageText: "esctl describe index [OPTION..] NAME",
	Action:    execDescribeIndex,
	Flags:     describeFlags,
}

var cmdDescribeAlias = &cli.Command{
	Name:      "alias",
	Usage:     "Show detailed alias information",
	UsageText: "esctl describe alias [OPTION..] NAME",
	Action:    execDescribeAlias,
	Flags:     describeFlags,
}

func execDescribeIndex(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("invalid syntax: index name missing", 1)
	}
	name := c.Args().Get(0)
	output := c.String("output")
	if output != "text" && output != "json" {
		return cli.Exit("invalid output: must be text or json", 1)
	}
	cl, _, err := newClient(c)
	if err != nil {
		return err
	}
	release := cl.Session()
	defer release()

	indices, err := cl.CatIndices(c.Context, name,
		[]string{"index", "health", "status", "docs.count", "store.size", "pri", "rep", "creation.date"}, "")
	if err != nil {
		return err
	}
	if len(indices) == 0 {
		return cli.Exit("index not found: "+name, 1)
	}
	settings, err := cl.IndexSettings(c.Context, name)
	if err != nil {
		return err
	}
	ilm, err := cl.ILMExplain(c.Context, name)
	if err != nil {
		return err
	}
	dates, err := cl.DateRangeOf(c.Context, name, c.String("timestamp-field"))
	if err != nil {
		return err
	}

	if output == "json" {
		return printJSON(c.App.Writer, map[string]interface{}{
			"index":      indices[0],
			"settings":   settings,
			"ilm":        ilm,
			"date_range": dates,
		})
	}

	idx := indices[0]
	w := c.App.Writer
	fmt.Fprintf(w, "Name:         %s\n", idx.Index)
	fmt.Fprintf(w, "Health:       %s\n", orDash(idx.Health))
	fmt.Fprintf(w, "Status:       %s\n", orDash(idx.Status))
	fmt.Fprintf(w, "Docs:         %s\n", formatDocs(idx.DocsCount))
	fmt.Fprintf(w, "Size:         %s\n", orDash(idx.StoreSize))
	fmt.Fprintf(w, "Shards:       %s primary, %s replica\n", orDash(idx.Pri), orDash(idx.Rep))
	fmt.Fprintf(w, "Created:      %s\n", formatMillis(idx.CreationDate))
	printDateRange(c, dates)
	if len(ilm.Indices) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "ILM Status:")
		for _, info := range ilm.Indices {
			if info.Managed {
				fmt.Fprintf(w, "  Phase:        %s\n", orDash(info.Phase))
				fmt.Fprintf(w, "  Action:       %s\n", orDash(info.Action))
				fmt.Fprintf(w, "  Step:         %s\n", orDash(info.Step))
				fmt.Fprintf(w, "  Age:          %s\n", orDash(info.Age))
			} else {
				fmt.Fprintln(w, "  Not managed by ILM")
			}
		}
	}
	return nil
}

func execDescribeAlias(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("invalid syntax: alias name missing", 1)
	}
	name := c.Args().Get(0)
	output := c.String("output")
	if output != "text" && output != "json" {
		return cli.Exit("invalid output: must be text or json", 1)
	}
	cl, _, err := newClient(c)
	if err != nil {
		return err
	}
	release := cl.Session()
	defer release()

	members, err := cl.Alias(c.Context, name)
	if err != nil {
		return err
	}
	indices, err := cl.CatIndices(c.Context, name,
		[]string{"index", "health", "status", "docs.count", "store.size", "creation.date"}, "")
	if err != nil {
		return err
	}
	ilm, err := cl.ILMExplain(c.Context, name)
	if err != nil {
		return err
	}
	dates, err := cl.DateRangeOf(c.Context, name, c.String("timestamp-field"))
	if err != nil {
		return err
	}

	if output == "json" {
		return printJSON(c.App.Writer, map[string]interface{}{
			"alias":      name,
			"indices":    members,
			"index_info": indices,
			"ilm":        ilm,
			"date_range": dates,
		})
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Name:         %s\n", name)
	fmt.Fprintf(w, "Indices:      %d\n", len(members))
	if len(indices) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Member Indices:")
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "INDEX\tHEALTH\tDOCS\tSIZE\tCREATED")
		for _, idx := range indices {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				idx.Index, idx.Health, formatDocs(idx.DocsCount), orDash(idx.StoreSize), formatMillis(idx.CreationDate))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	printDateRange(c, dates)
	names := make([]string, 0, len(ilm.Indices))
	for idxName, info := range ilm.Indices {
		if info.Managed {
			names = append(names, idxName)
		}
	}
	sort.Strings(names)
	if len(names) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "ILM Status:")
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "INDEX\tPHASE\tACTION\tSTEP\tAGE")
		for _, idxName := range names {
			info := ilm.Indices[idxName]
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				idxName, orDash(info.Phase), orDash(info.Action), orDash(info.Step), orDash(info.Age))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func printDateRange(c *cli.Context, dates *client.DateRange) {
	w := c.App.Writer
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Date Range:")
	fmt.Fprintf(w, "  Oldest:       %s\n", orDash(dates.Min))
	fmt.Fprintf(w, "  Newest:       %s\n", orDash(dates.Max))
	fmt.Fprintf(w, "  Span:         %s\n", formatSpan(dates.Min, dates.Max))
}

// formatSpan renders the distance between two ISO timestamps in the
// largest sensible unit.
func formatSpan(from, to string) string {
	if from == "" || to == "" {
		return "-"
	}
	start, err1 := time.Parse(time.RFC3339, from)
	end, err2 := time.Parse(time.RFC3339, to)
	if err1 != nil || err2 != nil {
		return "-"
	}
	d := end.Sub(start)
	if days := int(d.Hours() / 24); days > 0 {
		return fmt.Sprintf("%d %s", days, plural("day", days))
	}
	if hours := int(d.Hours()); hours > 0 {
		return fmt.Sprintf("%d %s", hours, plural("hour", hours))
	}
	minutes := int(d.Minutes())
	return fmt.Sprintf("%d %s", minutes, plural("minute", minutes))
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
