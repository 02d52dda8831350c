package imap

import "strings"

// Capabilities is the set of tokens observed from untagged CAPABILITY
// responses. Tagged OK response text is not parsed into it.
type Capabilities map[string]bool

// HasGmail reports whether the server advertised the Gmail IMAP extension.
func (c Capabilities) HasGmail() bool {
	return c["X-GM-EXT-1"]
}

// HasXOAuth2 reports whether the server supports SASL-IR-assisted XOAUTH2
// authentication.
func (c Capabilities) HasXOAuth2() bool {
	return c["SASL-IR"] && c["AUTH=XOAUTH2"]
}

// Add records every atom in items (a flattened CAPABILITY response, or any
// other list of bareword tokens) as an observed capability.
func (c Capabilities) Add(items []Item) {
	for _, item := range items {
		switch v := item.(type) {
		case Atom:
			c[strings.ToUpper(string(v))] = true
		case List:
			c.Add(v)
		}
	}
}

// NewCapabilities returns an empty capability set.
func NewCapabilities() Capabilities {
	return make(Capabilities)
}
