package tools

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const extractSample = `{"_id":"1","_source":{"message":"error 42 from host-a","host":{"name":"host-a"}}}
{"_id":"2","_source":{"message":"error 17 and error 42","host":{"name":"host-b"}}}
not json
{"_id":"3","_source":{"host":{"name":"host-c"}}}
`

func TestParseFieldSpec(t *testing.T) {
	tests := []struct {
		spec string
		want FieldSpec
	}{
		{"_source.host.name", FieldSpec{Path: "_source.host.name", Name: "name"}},
		{"_source.host.name:host", FieldSpec{Path: "_source.host.name", Name: "host"}},
		{"level", FieldSpec{Path: "level", Name: "level"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseFieldSpec(tt.spec))
	}
}

func TestExtractMatches(t *testing.T) {
	var warnLines []int
	extraction, err := Extract(strings.NewReader(extractSample), ExtractOptions{
		Pattern: `error \d+`,
	}, func(line int, reason string) {
		warnLines = append(warnLines, line)
		assert.Equal(t, "invalid JSON", reason)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"match"}, extraction.Columns)
	assert.Equal(t, [][]string{{"error 42"}, {"error 42"}, {"error 17"}}, extraction.Rows)
	assert.Equal(t, []int{3}, warnLines)
}

func TestExtractDedupe(t *testing.T) {
	extraction, err := Extract(strings.NewReader(extractSample), ExtractOptions{
		Pattern: `error \d+`,
		Dedupe:  true,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"error 42"}, {"error 17"}}, extraction.Rows)
}

func TestExtractCaptureGroup(t *testing.T) {
	extraction, err := Extract(strings.NewReader(extractSample), ExtractOptions{
		Pattern: `error (\d+)`,
		Dedupe:  true,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"42"}, {"17"}}, extraction.Rows)
}

func TestExtractFields(t *testing.T) {
	extraction, err := Extract(strings.NewReader(extractSample), ExtractOptions{
		Pattern: `error \d+`,
		Fields:  []FieldSpec{{Path: "_source.host.name", Name: "host"}},
		Dedupe:  true,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"match", "host"}, extraction.Columns)
	// Sorted descending by the field column, then by match
	assert.Equal(t, [][]string{
		{"error 42", "host-b"},
		{"error 17", "host-b"},
		{"error 42", "host-a"},
	}, extraction.Rows)
}

func TestExtractCustomSourceField(t *testing.T) {
	input := `{"_source":{"raw":"code=a1 code=b2"}}` + "\n"
	extraction, err := Extract(strings.NewReader(input), ExtractOptions{
		Pattern:     `code=(\w+)`,
		SourceField: "_source.raw",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"b2"}, {"a1"}}, extraction.Rows)
}

func TestExtractMissingSourceField(t *testing.T) {
	extraction, err := Extract(strings.NewReader(extractSample), ExtractOptions{
		Pattern:     `error \d+`,
		SourceField: "_source.nope",
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, extraction.Rows)
}

func TestExtractInvalidPattern(t *testing.T) {
	_, err := Extract(strings.NewReader(""), ExtractOptions{Pattern: `error (`}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid regex pattern")
}

func TestWriteCSV(t *testing.T) {
	extraction := &Extraction{
		Columns: []string{"match", "host"},
		Rows:    [][]string{{"error 42", "host-b"}, {"error 17", "host-a"}},
	}
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, extraction.WriteCSV(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"match", "host"},
		{"error 42", "host-b"},
		{"error 17", "host-a"},
	}, records)
}

func TestWriteXLSX(t *testing.T) {
	extraction := &Extraction{
		Columns: []string{"match", "host"},
		Rows:    [][]string{{"error 42", "host-b"}, {"error 17", "host-a"}},
	}
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, extraction.WriteXLSX(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Extract")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"match", "host"},
		{"error 42", "host-b"},
		{"error 17", "host-a"},
	}, rows)
}
