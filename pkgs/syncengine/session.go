// Package syncengine drives the UID-based incremental fetch loop: connect,
// authenticate, resolve the folder, discover what's new, stream it to the
// sink, and idle for the next push notification, reconnecting on any
// transport failure without ever rewinding the checkpoint.
package syncengine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emx-mail/mailsync/pkgs/config"
	"github.com/emx-mail/mailsync/pkgs/imap"
	"github.com/emx-mail/mailsync/pkgs/oauth2token"
)

// session is one authenticated, folder-selected IMAP connection. The
// Engine discards and rebuilds it on every reconnect.
type session struct {
	transport *imap.Transport
	channel   *imap.Channel
	caps      imap.Capabilities
}

// connect dials cfg.Server:cfg.Port, authenticates per cfg's configured
// auth method, resolves and EXAMINEs the folder, and returns the live
// session. Any failure here is returned unwrapped; the Engine's reconnect
// loop is the only caller that interprets it.
func connect(cfg *config.Config, log *logrus.Logger) (*session, error) {
	log.WithFields(logrus.Fields{"server": cfg.Server, "port": cfg.Port, "ssl": cfg.SSL}).Info("connecting")

	t, err := imap.Dial(cfg.Server, cfg.Port, cfg.SSL)
	if err != nil {
		return nil, err
	}

	ch := imap.NewChannel(t)
	caps := imap.NewCapabilities()

	if err := authenticate(ch, cfg, caps); err != nil {
		t.Close()
		return nil, err
	}

	folder, err := imap.ResolveFolder(ch, quoteIfNeeded(cfg.Folder), cfg.FolderFlag)
	if err != nil {
		t.Close()
		return nil, err
	}
	log.WithField("folder", folder).Info("selected folder")

	if err := imap.Examine(ch, folder); err != nil {
		t.Close()
		return nil, err
	}

	return &session{transport: t, channel: ch, caps: caps}, nil
}

// authenticate dispatches to LOGIN or AUTHENTICATE XOAUTH2 per cfg's
// single configured auth method.
func authenticate(ch *imap.Channel, cfg *config.Config, caps imap.Capabilities) error {
	switch {
	case cfg.Pass != "":
		return imap.Login(ch, cfg.User, cfg.Pass, caps)

	case cfg.XOAuth2AccessToken != "":
		return imap.AuthenticateXOAuth2(ch, cfg.User, imap.StaticToken(cfg.XOAuth2AccessToken), caps)

	case cfg.XOAuth2RequestURL != "":
		src := oauth2token.New(cfg.XOAuth2RequestURL, cfg.XOAuth2ClientID, cfg.XOAuth2ClientSecret, cfg.XOAuth2RefreshToken)
		return imap.AuthenticateXOAuth2(ch, cfg.User, src, caps)

	default:
		// The Config Loader guarantees exactly one of these is set; this
		// branch would mean that invariant was violated upstream.
		return fmt.Errorf("syncengine: no auth method configured")
	}
}

// quoteIfNeeded leaves an empty folder name (meaning "resolve via LIST")
// alone, and otherwise wraps an unquoted configured folder name in IMAP
// quotes so ResolveFolder's "use as-is" path hands EXAMINE a quoted
// mailbox name.
func quoteIfNeeded(folder string) string {
	if folder == "" {
		return ""
	}
	if folder[0] == '"' {
		return folder
	}
	return `"` + folder + `"`
}

// close tears the session down without issuing LOGOUT; used on the
// reconnect path where the old connection is already assumed dead.
func (s *session) close() {
	s.transport.Close()
}

// logout sends "0 LOGOUT" using the conventional unsolicited-logout tag
// "0" (not the channel's own counter, since no reply is awaited) and
// closes the transport; used on the clean shutdown path.
func (s *session) logout() {
	_ = s.transport.WriteAll([]byte("0 LOGOUT\r\n"))
	s.transport.Close()
}
