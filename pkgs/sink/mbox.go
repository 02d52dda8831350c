package sink

import (
	"bytes"
	"fmt"
	"os"
	"os/user"
	"strings"

	gomessage "github.com/emersion/go-message"
	"github.com/emersion/go-mbox"
)

// MboxSink appends each delivered message to a local mbox file using
// go-mbox's writer, which implements the "From " separator and
// ">"-escaping rules this format requires.
type MboxSink struct {
	f *os.File
	w *mbox.Writer
}

// OpenMbox opens (creating if necessary) the mbox file at path in append
// mode and wraps it in a mbox.Writer.
func OpenMbox(path string) (*MboxSink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("sink: open mbox %s: %w", path, err)
	}
	return &MboxSink{f: f, w: mbox.NewWriter(f)}, nil
}

// Deliver writes one message as a new mbox entry. The sender is taken from
// the message's Return-Path header (stripped of <> and interior
// whitespace), falling back to the invoking user's login name when the
// header is absent or empty.
func (s *MboxSink) Deliver(msg Message) error {
	from := senderFromReturnPath(msg.Body)
	mw, err := s.w.CreateMessage(from, msg.InternalDate)
	if err != nil {
		return fmt.Errorf("sink: create mbox entry for uid %d: %w", msg.UID, err)
	}
	if _, err := mw.Write(msg.Body); err != nil {
		return fmt.Errorf("sink: write mbox entry for uid %d: %w", msg.UID, err)
	}
	return nil
}

// Close flushes and closes the underlying mbox file.
func (s *MboxSink) Close() error {
	if err := s.w.Close(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// senderFromReturnPath parses just the header block of body far enough to
// read Return-Path, without touching the MIME structure of the rest of the
// message.
func senderFromReturnPath(body []byte) string {
	entity, err := gomessage.Read(bytes.NewReader(body))
	if err == nil {
		if rp := entity.Header.Get("Return-Path"); rp != "" {
			return cleanReturnPath(rp)
		}
	}
	return loginName()
}

func cleanReturnPath(rp string) string {
	rp = strings.TrimSpace(rp)
	rp = strings.TrimPrefix(rp, "<")
	rp = strings.TrimSuffix(rp, ">")
	var buf strings.Builder
	for _, r := range rp {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		buf.WriteRune(r)
	}
	s := buf.String()
	if s == "" {
		return loginName()
	}
	return s
}

func loginName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}
