package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/urfave/cli/v2"
	"io"
	"os"
	"strings"
)

// readQuery reads the query document from --query-file, or from stdin when
// something is piped in. An empty or malformed document is rejected before
// any request is made.
func readQuery(c *cli.Context) (string, error) {
	var content []byte
	if file := c.String("query-file"); file != "" {
		var err error
		if content, err = os.ReadFile(file); err != nil {
			return "", err
		}
	} else {
		if f, ok := c.App.Reader.(*os.File); ok {
			if stat, err := f.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
				return "", errors.New("no query provided, use --query-file or pipe JSON via stdin")
			}
		}
		var err error
		if content, err = io.ReadAll(c.App.Reader); err != nil {
			return "", err
		}
	}
	query := strings.TrimSpace(string(content))
	if query == "" {
		return "", errors.New("no query provided, use --query-file or pipe JSON via stdin")
	}
	var js json.RawMessage
	if err := json.Unmarshal([]byte(query), &js); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	return query, nil
}
