package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBarDone(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf)
	bar.Add(3, 1536)
	bar.Done()
	out := buf.String()
	assert.Contains(t, out, "complete: 3 docs")
	assert.Contains(t, out, "1.5 kB")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestProgressBarPercent(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf)
	bar.SetTotal(10)
	bar.Add(5, 100)
	assert.Contains(t, buf.String(), "50.0%")
}

func TestProgressBarStatusAndClear(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf)
	bar.Status("waiting for shards")
	assert.Contains(t, buf.String(), "waiting for shards")
	bar.Clear()
	assert.True(t, strings.HasSuffix(buf.String(), "\r"))
}

func TestBytesToHuman(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1024, "1.0 kB"},
		{1536, "1.5 kB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bytesToHuman(tt.in))
	}
}
