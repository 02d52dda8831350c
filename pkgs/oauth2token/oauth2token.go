// Package oauth2token refreshes a XOAUTH2 bearer token against a
// configured token endpoint using the OAuth2 refresh-token grant.
package oauth2token

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// Source lazily refreshes and caches a bearer token for the lifetime of a
// process. It satisfies pkgs/imap.TokenSource.
type Source struct {
	ts oauth2.TokenSource
}

// New builds a Source that exchanges refreshToken for an access token
// against tokenURL, authenticating as clientID/clientSecret. The returned
// token is cached in memory by the underlying oauth2.TokenSource and
// re-fetched transparently once it expires; nothing is ever written to
// disk.
func New(tokenURL, clientID, clientSecret, refreshToken string) *Source {
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: tokenURL,
		},
	}
	seed := &oauth2.Token{RefreshToken: refreshToken}
	return &Source{ts: cfg.TokenSource(context.Background(), seed)}
}

// Token returns a valid access token, refreshing it first if necessary.
// A token endpoint error response (`error`/`error_description` fields)
// surfaces here as a wrapped error; the Auth Selector turns any error
// from Token into an auth failure without ever issuing AUTHENTICATE.
func (s *Source) Token() (string, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return "", fmt.Errorf("oauth2token: refresh: %w", err)
	}
	return tok.AccessToken, nil
}
