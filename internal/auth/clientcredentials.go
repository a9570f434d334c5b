package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/mcptool/mcptool/internal/config"
)

// ClientCredentials obtains bearer tokens via the OAuth2 client-credentials
// grant. The underlying token source caches and refreshes tokens for the
// lifetime of the invocation.
type ClientCredentials struct {
	config *clientcredentials.Config
}

func newClientCredentials(serverName string, cfg *config.AuthConfig) (*ClientCredentials, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.TokenURL == "" {
		return nil, fmt.Errorf("server %q: oauth2_client_credentials requires clientId, clientSecret and tokenUrl", serverName)
	}
	return &ClientCredentials{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		},
	}, nil
}

func (p *ClientCredentials) Headers(ctx context.Context) (map[string]string, error) {
	token, err := p.config.TokenSource(ctx).Token()
	if err != nil {
		return nil, fmt.Errorf("oauth2 token: %w", err)
	}
	return map[string]string{"Authorization": token.Type() + " " + token.AccessToken}, nil
}
