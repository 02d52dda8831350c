package syncengine

import (
	"time"

	"github.com/emx-mail/mailsync/pkgs/sink"
)

// statusFromLabels derives a message's Sink status from its X-GM-LABELS
// set. labels is nil when the server didn't return the field at all (a
// non-Gmail server), in which case the status is always Unknown; do not
// fabricate one.
func statusFromLabels(labels []string) sink.Status {
	if labels == nil {
		return sink.StatusUnknown
	}

	has := func(flag string) bool {
		for _, l := range labels {
			if l == flag {
				return true
			}
		}
		return false
	}

	switch {
	case has(`\Sent`) && has(`\Inbox`):
		return sink.StatusSentReceived
	case has(`\Sent`):
		return sink.StatusSent
	case has(`\Draft`):
		return sink.StatusDraft
	default:
		return sink.StatusReceived
	}
}

// internalDateLayout is IMAP's INTERNALDATE format (RFC 3501 §4.1.2),
// locale-insensitive since Go's reference layout spells out the month.
const internalDateLayout = "02-Jan-2006 15:04:05 -0700"

// parseInternalDate parses s per internalDateLayout. On failure it falls
// back to the current local time rather than erroring, preserving the
// original's (arguably buggy — see the design notes) behavior of silently
// substituting "now".
func parseInternalDate(s string) time.Time {
	t, err := time.Parse(internalDateLayout, s)
	if err != nil {
		return time.Now()
	}
	return t
}
