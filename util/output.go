package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// FormatHits renders hits either as an indented JSON array or as
// newline-delimited JSON with one compact document per line.
func FormatHits(hits []json.RawMessage, format string) ([]byte, error) {
	switch format {
	case "json":
		if len(hits) == 0 {
			return []byte("[]\n"), nil
		}
		data, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "jsonl":
		var buf bytes.Buffer
		for _, hit := range hits {
			if err := json.Compact(&buf, hit); err != nil {
				return nil, err
			}
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteOutput writes data to the given file, or to w when path is empty.
func WriteOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
