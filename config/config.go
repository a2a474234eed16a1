// Package config stores the CLI credentials in the XDG data directory.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"github.com/adrg/xdg"
	_ "github.com/joho/godotenv/autoload"
	"os"
	"path/filepath"
	"time"
)

const appName = "esctl"

// Credentials is the stored authentication state, as written by
// `esctl auth login`.
type Credentials struct {
	URL       string `json:"url"`
	APIKeyID  string `json:"api_key_id"`
	APIKey    string `json:"api_key"`
	CreatedAt string `json:"created_at"`
}

// Encoded returns the ApiKey authorization payload, base64(id:key).
func (c *Credentials) Encoded() string {
	return base64.StdEncoding.EncodeToString([]byte(c.APIKeyID + ":" + c.APIKey))
}

// Path returns the credentials file location.
func Path() string {
	return filepath.Join(xdg.DataHome, appName, "credentials.json")
}

// Save writes credentials readable only by the current user and returns the
// file location.
func Save(clusterURL, keyID, key string) (string, error) {
	creds := &Credentials{
		URL:       clusterURL,
		APIKeyID:  keyID,
		APIKey:    key,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}
	return path, nil
}

// Load returns the stored credentials, or nil when none exist. The
// ESCTL_URL, ESCTL_API_KEY_ID and ESCTL_API_KEY environment variables take
// precedence over the file; a .env file in the working directory can
// provide them.
func Load() (*Credentials, error) {
	clusterURL, keyID, key := os.Getenv("ESCTL_URL"), os.Getenv("ESCTL_API_KEY_ID"), os.Getenv("ESCTL_API_KEY")
	if clusterURL != "" && keyID != "" && key != "" {
		return &Credentials{URL: clusterURL, APIKeyID: keyID, APIKey: key}, nil
	}
	data, err := os.ReadFile(Path())
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("corrupt credentials file %s: %w", Path(), err)
	}
	return &creds, nil
}

// Delete removes the stored credentials, reporting whether any existed.
func Delete() (bool, error) {
	err := os.Remove(Path())
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}
