package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CredentialsFile is the on-disk token store, keyed by server name.
type CredentialsFile struct {
	Version int                         `json:"version"`
	Servers map[string]ServerCredential `json:"servers"`
}

// ServerCredential holds the stored auth material for one server.
type ServerCredential struct {
	Type  string `json:"type"` // currently always "bearer"
	Token string `json:"token,omitempty"`
}

// DefaultCredentialsPath is ~/.mcptool/credentials.json.
func DefaultCredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".mcptool", "credentials.json"), nil
}

// LoadCredentials reads the store at path. A missing file yields an empty
// store rather than an error; an empty path always yields an empty store.
func LoadCredentials(path string) (*CredentialsFile, error) {
	empty := &CredentialsFile{Version: 1, Servers: make(map[string]ServerCredential)}
	if path == "" {
		return empty, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return empty, nil
		}
		return nil, err
	}

	var creds CredentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if creds.Servers == nil {
		creds.Servers = make(map[string]ServerCredential)
	}
	return &creds, nil
}

// SaveCredentials writes the store, creating the parent directory 0700 and
// the file 0600 since it holds secrets.
func SaveCredentials(path string, creds *CredentialsFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// SetToken records a bearer token for a server in the store at path.
func SetToken(path, serverName, token string) error {
	creds, err := LoadCredentials(path)
	if err != nil {
		return err
	}
	creds.Servers[serverName] = ServerCredential{Type: "bearer", Token: token}
	return SaveCredentials(path, creds)
}

// DeleteToken removes a server's stored credential. Removing an absent
// entry is not an error.
func DeleteToken(path, serverName string) error {
	creds, err := LoadCredentials(path)
	if err != nil {
		return err
	}
	delete(creds.Servers, serverName)
	return SaveCredentials(path, creds)
}
