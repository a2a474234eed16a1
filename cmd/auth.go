package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
	"heckel.io/esctl/config"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var cmdAuth = &cli.Command{
	Name:      "auth",
	Usage:     "Manage cluster authentication",
	UsageText: "esctl auth COMMAND [OPTION..]",
	Subcommands: []*cli.Command{
		cmdAuthLogin,
		cmdAuthLogout,
		cmdAuthStatus,
	},
}

var cmdAuthLogin = &cli.Command{
	Name:      "login",
	Usage:     "Authenticate with the cluster and store an API key",
	UsageText: "esctl auth login [--url URL] [--username USER] [--password PASS]",
	Action:    execAuthLogin,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "url", Usage: "Elasticsearch server URL (prompted when omitted)"},
		&cli.StringFlag{Name: "username", Usage: "Elasticsearch username (prompted when omitted)"},
		&cli.StringFlag{Name: "password", Usage: "Elasticsearch password (prompted when omitted)"},
	},
}

var cmdAuthLogout = &cli.Command{
	Name:   "logout",
	Usage:  "Remove stored credentials",
	Action: execAuthLogout,
}

var cmdAuthStatus = &cli.Command{
	Name:   "status",
	Usage:  "Show current authentication status",
	Action: execAuthStatus,
}

func execAuthLogin(c *cli.Context) error {
	stdin := bufio.NewReader(c.App.Reader)
	clusterURL, err := promptValue(c, stdin, "url", "Elasticsearch URL: ", false)
	if err != nil {
		return err
	}
	username, err := promptValue(c, stdin, "username", "Username: ", false)
	if err != nil {
		return err
	}
	password, err := promptValue(c, stdin, "password", "Password: ", true)
	if err != nil {
		return err
	}
	clusterURL = strings.TrimRight(clusterURL, "/")

	fmt.Fprintf(c.App.Writer, "Authenticating with %s...\n", clusterURL)
	keyID, key, err := createAPIKey(c.Context, clusterURL, username, password)
	if err != nil {
		return err
	}
	path, err := config.Save(clusterURL, keyID, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Successfully authenticated!")
	fmt.Fprintf(c.App.Writer, "API key stored at: %s\n", path)
	return nil
}

func execAuthLogout(c *cli.Context) error {
	deleted, err := config.Delete()
	if err != nil {
		return err
	}
	if deleted {
		fmt.Fprintln(c.App.Writer, "Credentials removed.")
	} else {
		fmt.Fprintln(c.App.Writer, "No credentials found.")
	}
	return nil
}

func execAuthStatus(c *cli.Context) error {
	creds, err := config.Load()
	if err != nil {
		return err
	}
	if creds == nil {
		fmt.Fprintln(c.App.Writer, "Not authenticated.")
		fmt.Fprintln(c.App.Writer, "Run 'esctl auth login' to authenticate.")
		return nil
	}
	fmt.Fprintln(c.App.Writer, "Authenticated")
	fmt.Fprintf(c.App.Writer, "  URL: %s\n", creds.URL)
	fmt.Fprintf(c.App.Writer, "  API Key ID: %s\n", creds.APIKeyID)
	fmt.Fprintf(c.App.Writer, "  Created: %s\n", creds.CreatedAt)
	fmt.Fprintf(c.App.Writer, "  Credentials file: %s\n", config.Path())
	return nil
}

// createAPIKey trades basic auth credentials for a long-lived API key via
// the security API. This is the only request that does not use the stored
// ApiKey header, since it is what creates the key in the first place.
func createAPIKey(ctx context.Context, clusterURL, username, password string) (keyID string, key string, err error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	body := strings.NewReader(`{"name":"esctl","expiration":"90d"}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, clusterURL+"/_security/api_key", body)
	if err != nil {
		return "", "", err
	}
	req.SetBasicAuth(username, password)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return "", "", errors.New("authentication failed: invalid username or password")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("HTTP error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	var res struct {
		ID     string `json:"id"`
		APIKey string `json:"api_key"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return "", "", fmt.Errorf("malformed API key response: %w", err)
	}
	if res.ID == "" || res.APIKey == "" {
		return "", "", errors.New("malformed API key response: missing key material")
	}
	return res.ID, res.APIKey, nil
}

// promptValue returns the flag value, or prompts for it on the terminal.
// Hidden prompts suppress echo when stdin is a real terminal.
func promptValue(c *cli.Context, stdin *bufio.Reader, flag, prompt string, hidden bool) (string, error) {
	if v := c.String(flag); v != "" {
		return v, nil
	}
	fmt.Fprint(c.App.ErrWriter, prompt)
	if hidden {
		if f, ok := c.App.Reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			pass, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(c.App.ErrWriter)
			if err != nil {
				return "", err
			}
			return string(pass), nil
		}
	}
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
