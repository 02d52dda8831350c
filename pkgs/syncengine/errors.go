package syncengine

import (
	"errors"

	"github.com/emx-mail/mailsync/pkgs/imap"
)

// isAuthOrProtocolError reports whether err came from the Auth Selector
// (LOGIN/AUTHENTICATE rejection, missing XOAUTH2 support, token refresh
// failure), the Folder Resolver (no LIST entry carries the configured
// flag, or EXAMINE was rejected), or is a protocol-level violation (parser
// imbalance, unsolicited BYE). These are fatal and never retried
// automatically; everything else is treated as a transport error and
// triggers reconnect.
func isAuthOrProtocolError(err error) bool {
	var cmdErr *imap.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Verb {
		case "LOGIN", "AUTHENTICATE", "EXAMINE":
			return true
		}
		return false
	}

	var notSupported *imap.AuthNotSupportedError
	if errors.As(err, &notSupported) {
		return true
	}

	var folderNotFound *imap.FolderNotFoundError
	if errors.As(err, &folderNotFound) {
		return true
	}

	var parseErr *imap.ParseError
	if errors.As(err, &parseErr) {
		return true
	}

	var protoErr *imap.ProtocolError
	if errors.As(err, &protoErr) {
		return true
	}

	return false
}
