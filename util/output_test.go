package util

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHitsJSON(t *testing.T) {
	hits := []json.RawMessage{
		json.RawMessage(`{"a": 1}`),
		json.RawMessage(`{"b": 2}`),
	}
	data, err := FormatHits(hits, "json")
	require.NoError(t, err)
	assert.Equal(t, `[
  {
    "a": 1
  },
  {
    "b": 2
  }
]
`, string(data))
}

func TestFormatHitsJSONEmpty(t *testing.T) {
	data, err := FormatHits(nil, "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestFormatHitsJSONL(t *testing.T) {
	hits := []json.RawMessage{
		json.RawMessage(`{"a": 1}`),
		json.RawMessage(`{"b": 2}`),
	}
	data, err := FormatHits(hits, "jsonl")
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", string(data))
}

func TestFormatHitsJSONLEmpty(t *testing.T) {
	data, err := FormatHits(nil, "jsonl")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFormatHitsUnsupported(t *testing.T) {
	_, err := FormatHits(nil, "yaml")
	require.EqualError(t, err, "unsupported output format: yaml")
}

func TestWriteOutputWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, "", []byte("hello\n")))
	assert.Equal(t, "hello\n", buf.String())
}

func TestWriteOutputFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "out.jsonl")
	require.NoError(t, WriteOutput(&buf, path, []byte("hello\n")))
	assert.Empty(t, buf.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}
