package cmd

import (
	"fmt"
	"github.com/urfave/cli/v2"
	"heckel.io/esctl/tools"
	"os"
)

var cmdJSONL = &cli.Command{
	Name:      "jsonl",
	Usage:     "Work with JSONL files produced by export",
	UsageText: "esctl jsonl COMMAND [OPTION..] [ARG..]",
	Subcommands: []*cli.Command{
		cmdJSONLExtract,
	},
}

var cmdJSONLExtract = &cli.Command{
	Name:      "extract",
	Usage:     "Extract regex matches from a JSONL file into a spreadsheet",
	UsageText: "esctl jsonl extract [OPTION..] FILE",
	Action:    execJSONLExtract,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "pattern", Aliases: []string{"p"}, Required: true, Usage: "regex pattern to match against the source field"},
		&cli.StringFlag{Name: "source-field", Aliases: []string{"s"}, Value: "_source.message", Usage: "document field to search"},
		&cli.StringSliceFlag{Name: "field", Aliases: []string{"f"}, Usage: "additional field to include as a column, PATH or PATH:NAME"},
		&cli.StringFlag{Name: "format", Value: "xlsx", Usage: "output format: xlsx or csv"},
		&cli.BoolFlag{Name: "dedupe", Value: true, Usage: "drop duplicate rows"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "output file"},
	},
}

func execJSONLExtract(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("invalid syntax: input file missing", 1)
	}
	format := c.String("format")
	if format != "xlsx" && format != "csv" {
		return cli.Exit("invalid format: must be xlsx or csv", 1)
	}
	fields := make([]tools.FieldSpec, 0)
	for _, spec := range c.StringSlice("field") {
		fields = append(fields, tools.ParseFieldSpec(spec))
	}
	f, err := os.Open(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer f.Close()
	extraction, err := tools.Extract(f, tools.ExtractOptions{
		Pattern:     c.String("pattern"),
		SourceField: c.String("source-field"),
		Fields:      fields,
		Dedupe:      c.Bool("dedupe"),
	}, func(line int, reason string) {
		fmt.Fprintf(c.App.ErrWriter, "Warning: %s at line %d\n", reason, line)
	})
	if err != nil {
		return err
	}
	if len(extraction.Rows) == 0 {
		fmt.Fprintln(c.App.Writer, "No matches found.")
		return nil
	}
	output := c.String("output")
	if format == "csv" {
		err = extraction.WriteCSV(output)
	} else {
		err = extraction.WriteXLSX(output)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Extracted %d entries to %s\n", len(extraction.Rows), output)
	return nil
}
