package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcptool/mcptool/internal/config"
)

func TestStaticProviders(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		provider Provider
		want     map[string]string
	}{
		{"none", None{}, nil},
		{"bearer", Bearer{Token: "tok"}, map[string]string{"Authorization": "Bearer tok"}},
		{"bearer empty", Bearer{}, nil},
		{"api key default header", APIKey{Token: "k"}, map[string]string{"X-API-Key": "k"}},
		{"api key custom header", APIKey{Token: "k", HeaderName: "X-Custom"}, map[string]string{"X-Custom": "k"}},
		{"basic", Basic{Username: "u", Password: "p"}, map[string]string{"Authorization": "Basic dTpw"}},
		{"basic empty", Basic{}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.provider.Headers(ctx)
			if err != nil {
				t.Fatalf("Headers: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("Headers = %v, want %v", got, tc.want)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Errorf("header %s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store", "credentials.json")

	// Missing file is an empty store.
	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if len(creds.Servers) != 0 {
		t.Errorf("expected empty store, got %v", creds.Servers)
	}

	if err := SetToken(path, "linear", "secret-token"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("credentials file mode = %o, want 600", perm)
	}

	creds, err = LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials after save: %v", err)
	}
	if creds.Servers["linear"].Token != "secret-token" {
		t.Errorf("stored credential = %+v", creds.Servers["linear"])
	}

	if err := DeleteToken(path, "linear"); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	creds, _ = LoadCredentials(path)
	if _, ok := creds.Servers["linear"]; ok {
		t.Error("credential not deleted")
	}
}

func TestForServer(t *testing.T) {
	credPath := filepath.Join(t.TempDir(), "credentials.json")
	if err := SetToken(credPath, "stored", "stored-token"); err != nil {
		t.Fatal(err)
	}

	t.Run("no auth block, no stored credential", func(t *testing.T) {
		p, err := ForServer(config.ServerConfig{Name: "plain", Type: "http"}, credPath)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := p.(None); !ok {
			t.Errorf("provider = %T, want None", p)
		}
	})

	t.Run("no auth block falls back to store", func(t *testing.T) {
		p, err := ForServer(config.ServerConfig{Name: "stored", Type: "http"}, credPath)
		if err != nil {
			t.Fatal(err)
		}
		headers, _ := p.Headers(context.Background())
		if headers["Authorization"] != "Bearer stored-token" {
			t.Errorf("headers = %v", headers)
		}
	})

	t.Run("bearer without any token", func(t *testing.T) {
		cfg := config.ServerConfig{Name: "missing", Auth: &config.AuthConfig{Type: "bearer"}}
		if _, err := ForServer(cfg, credPath); err == nil || !strings.Contains(err.Error(), "set-token") {
			t.Errorf("err = %v, want set-token hint", err)
		}
	})

	t.Run("unknown auth type", func(t *testing.T) {
		cfg := config.ServerConfig{Name: "odd", Auth: &config.AuthConfig{Type: "kerberos"}}
		if _, err := ForServer(cfg, credPath); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("client credentials missing fields", func(t *testing.T) {
		cfg := config.ServerConfig{Name: "cc", Auth: &config.AuthConfig{Type: "oauth2_client_credentials", ClientID: "only-id"}}
		if _, err := ForServer(cfg, credPath); err == nil {
			t.Error("expected error")
		}
	})
}

func TestClientCredentialsHeaders(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if grant := r.PostFormValue("grant_type"); grant != "client_credentials" {
			t.Errorf("grant_type = %q", grant)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "granted",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	cfg := config.ServerConfig{
		Name: "cc",
		Auth: &config.AuthConfig{
			Type:         "oauth2_client_credentials",
			ClientID:     "cid",
			ClientSecret: "secret",
			TokenURL:     tokenServer.URL,
			Scopes:       []string{"mcp.read"},
		},
	}

	p, err := ForServer(cfg, "")
	if err != nil {
		t.Fatalf("ForServer: %v", err)
	}
	headers, err := p.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers: %v", err)
	}
	if headers["Authorization"] != "Bearer granted" {
		t.Errorf("headers = %v", headers)
	}
}
