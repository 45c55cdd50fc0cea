package hostenv

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// RefreshFunc matches the host's refreshMfeApiCredentials.
type RefreshFunc func(ctx context.Context) (any, error)

// TokenSourceRefresher builds a refresh function that turns tokens from ts into
// credential bundles for the given API key and BFF base URL.
func TokenSourceRefresher(ts oauth2.TokenSource, apiKey, baseURL string) RefreshFunc {
	return func(ctx context.Context) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := ts.Token()
		if err != nil {
			return nil, fmt.Errorf("token source: %w", err)
		}
		return credentialsFromToken(tok, apiKey, baseURL), nil
	}
}

// ClientCredentialsRefresher fetches a brand new token with the client
// credentials grant on every call.
func ClientCredentialsRefresher(cfg *clientcredentials.Config, apiKey, baseURL string) RefreshFunc {
	return func(ctx context.Context) (any, error) {
		tok, err := cfg.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("client credentials grant: %w", err)
		}
		return credentialsFromToken(tok, apiKey, baseURL), nil
	}
}

func credentialsFromToken(tok *oauth2.Token, apiKey, baseURL string) *hostdata.APICredentials {
	creds := &hostdata.APICredentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		XAPIKey:      apiKey,
		BaseURLBFF:   baseURL,
	}
	if !tok.Expiry.IsZero() {
		creds.TokenExpiry = tok.Expiry.UTC().Format(time.RFC3339)
	}
	return creds
}
