package tools

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

// FieldSpec names an extra column pulled from each matching document: a
// dot-notation path, optionally renamed via "path:name".
type FieldSpec struct {
	Path string
	Name string
}

// ParseFieldSpec splits "path[:name]". The column name defaults to the last
// path component.
func ParseFieldSpec(spec string) FieldSpec {
	if i := strings.LastIndex(spec, ":"); i >= 0 {
		return FieldSpec{Path: spec[:i], Name: spec[i+1:]}
	}
	parts := strings.Split(spec, ".")
	return FieldSpec{Path: spec, Name: parts[len(parts)-1]}
}

// ExtractOptions configures a JSONL extraction run.
type ExtractOptions struct {
	Pattern     string
	SourceField string // default _source.message
	Fields      []FieldSpec
	Dedupe      bool
}

// Extraction is the result table: the match column first, then one column
// per field spec.
type Extraction struct {
	Columns []string
	Rows    [][]string
}

// Extract scans newline-delimited JSON from r and collects every regex
// match of the pattern over the source field, one row per match. With
// capture groups the first group is taken instead of the whole match. Rows
// are sorted descending by the first field column, then by match. Lines
// that are not valid JSON are reported through warn and skipped.
func Extract(r io.Reader, opts ExtractOptions, warn func(line int, reason string)) (*Extraction, error) {
	re, err := regexp.Compile(opts.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	sourceField := opts.SourceField
	if sourceField == "" {
		sourceField = "_source.message"
	}

	columns := []string{"match"}
	for _, f := range opts.Fields {
		columns = append(columns, f.Name)
	}

	var rows [][]string
	seen := map[string]bool{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024) // Hit documents can be long
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := scanner.Text()
		if !gjson.Valid(line) {
			if warn != nil {
				warn(lineNum, "invalid JSON")
			}
			continue
		}
		source := gjson.Get(line, sourceField)
		if !source.Exists() || source.Type == gjson.Null {
			continue
		}
		for _, match := range findMatches(re, source.String()) {
			row := make([]string, 0, len(columns))
			row = append(row, match)
			for _, f := range opts.Fields {
				row = append(row, gjson.Get(line, f.Path).String())
			}
			if opts.Dedupe {
				key := strings.Join(row, "\x1f")
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if len(opts.Fields) > 0 && a[1] != b[1] {
			return a[1] > b[1]
		}
		return a[0] > b[0]
	})
	return &Extraction{Columns: columns, Rows: rows}, nil
}

// findMatches returns all pattern matches, taking the first capture group
// when the pattern has groups.
func findMatches(re *regexp.Regexp, text string) []string {
	if re.NumSubexp() == 0 {
		return re.FindAllString(text, -1)
	}
	var matches []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		matches = append(matches, m[1])
	}
	return matches
}

// WriteCSV writes the extraction as a CSV file with a header row.
func (e *Extraction) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(e.Columns); err != nil {
		return err
	}
	if err := w.WriteAll(e.Rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// WriteXLSX writes the extraction as a spreadsheet with a styled header row
// and column widths fitted to the data.
func (e *Extraction) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Extract"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	})
	if err != nil {
		return err
	}
	for col, name := range e.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	endHeader, err := excelize.CoordinatesToCellName(len(e.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", endHeader, headerStyle); err != nil {
		return err
	}
	for rowNum, row := range e.Rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	// Fit column widths to the header and a sample of the data
	for col, name := range e.Columns {
		maxLen := len(name)
		for i, row := range e.Rows {
			if i >= 100 {
				break
			}
			if col < len(row) && len(row[col]) > maxLen {
				maxLen = len(row[col])
			}
		}
		width := float64(maxLen + 2)
		if width > 50 {
			width = 50
		}
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, colName, colName, width); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
