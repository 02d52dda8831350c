package imap

import (
	"encoding/base64"
	"fmt"

	"github.com/emersion/go-sasl"
)

// AuthNotSupportedError is returned when XOAUTH2 authentication was
// requested but the server didn't advertise SASL-IR and AUTH=XOAUTH2.
type AuthNotSupportedError struct{}

func (e *AuthNotSupportedError) Error() string {
	return "imap: server does not advertise SASL-IR and AUTH=XOAUTH2"
}

// TokenSource supplies a bearer token for XOAUTH2 authentication. It is
// satisfied by pkgs/oauth2token.Source on the refresh-token path, or by a
// trivial constant wrapper when xoauth2_access_token is configured verbatim.
type TokenSource interface {
	Token() (string, error)
}

// staticToken is a TokenSource that always returns the same pre-obtained
// access token.
type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

// StaticToken wraps a pre-obtained XOAUTH2 access token as a TokenSource.
func StaticToken(token string) TokenSource { return staticToken(token) }

// Login authenticates via plain LOGIN, then issues CAPABILITY to populate
// caps. A server's pre-auth capability list (in its greeting) can differ
// from what's actually on offer once authenticated, so this re-query is
// the authoritative set the Gmail-label decision is made from. Login's
// own args are sent verbatim, no escaping applied: the
// config collaborator is responsible for handing us values that don't
// need it.
func Login(ch *Channel, user, pass string, caps Capabilities) error {
	if err := ch.Do("LOGIN", fmt.Sprintf("%s %s", user, pass), nil, nil); err != nil {
		return err
	}
	return ch.Do("CAPABILITY", "", func(items []Item) error {
		caps.Add(items)
		return nil
	}, nil)
}

// AuthenticateXOAuth2 issues CAPABILITY to confirm SASL-IR/AUTH=XOAUTH2
// support, fetches a bearer token from src, and issues AUTHENTICATE
// XOAUTH2 with the token folded into the SASL initial response.
//
// Capabilities from the untagged CAPABILITY response are merged into caps.
// The text of tagged OK responses is not inspected for capabilities, and
// CAPABILITY is not re-issued after AUTHENTICATE succeeds.
func AuthenticateXOAuth2(ch *Channel, user string, src TokenSource, caps Capabilities) error {
	if err := ch.Do("CAPABILITY", "", func(items []Item) error {
		caps.Add(items)
		return nil
	}, nil); err != nil {
		return err
	}
	if !caps.HasXOAuth2() {
		return &AuthNotSupportedError{}
	}

	token, err := src.Token()
	if err != nil {
		return fmt.Errorf("imap: xoauth2 token fetch: %w", err)
	}

	client := sasl.NewXoauth2Client(user, token)
	_, ir, err := client.Start()
	if err != nil {
		return fmt.Errorf("imap: xoauth2 start: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(ir)

	return ch.Do("AUTHENTICATE", "XOAUTH2 "+encoded, nil, func(line string) ([]byte, error) {
		_, failed, err := ContinuationPayload(line)
		if failed {
			return nil, fmt.Errorf("imap: xoauth2 authentication failed: %w", err)
		}
		// A non-failure continuation during XOAUTH2 is the empty-JSON
		// prompt the server sends before aborting; answer with an empty
		// line so the server can emit its tagged NO.
		return []byte{}, nil
	})
}

// quoteString wraps s in IMAP double quotes, escaping backslash and quote.
func quoteString(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == '"' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	out = append(out, '"')
	return string(out)
}
