package syncengine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emx-mail/mailsync/pkgs/checkpoint"
	"github.com/emx-mail/mailsync/pkgs/imap"
	"github.com/emx-mail/mailsync/pkgs/sink"
)

// stream runs Phase 2: fetch every message with UID > checkpoint, deliver
// each to snk in order, and advance store after each successful delivery.
// checkpoint is read by value and returned updated; the caller keeps the
// authoritative in-memory copy.
func stream(ch *imap.Channel, store *checkpoint.Store, snk sink.Sink, log *logrus.Logger, w *window, startCheckpoint uint32, hasGmail bool) (uint32, error) {
	current := startCheckpoint
	lastID := w.lastID
	highestID := w.highestID

	fields := "RFC822 INTERNALDATE"
	if hasGmail {
		fields += " X-GM-LABELS"
	}
	var deliverErr error
	err := ch.Do("UID", fmt.Sprintf("FETCH %d:* (%s)", current+1, fields), func(items []imap.Item) error {
		if deliverErr != nil {
			return nil
		}
		row := parseFetchRow(items)
		if row == nil {
			return nil
		}

		uid, ok := row.uid()
		if !ok {
			log.Warn("skipping row: missing or non-integer UID")
			return nil
		}
		body, ok := row.body()
		if !ok {
			log.WithField("uid", uid).Warn("skipping row: missing RFC822 body")
			return nil
		}
		dateStr, ok := row.internalDate()
		if !ok {
			log.WithField("uid", uid).Warn("skipping row: missing INTERNALDATE")
			return nil
		}
		if uid <= current {
			return nil
		}

		msg := sink.Message{
			UID:          uid,
			Body:         body,
			InternalDate: parseInternalDate(dateStr),
			Status:       statusFromLabels(row.gmailLabels()),
		}

		if err := snk.Deliver(msg); err != nil {
			// The open question in the original design notes is resolved
			// here in favor of the safe default: a sink failure is fatal
			// for this row and does not advance the checkpoint.
			deliverErr = fmt.Errorf("syncengine: sink delivery for uid %d: %w", uid, err)
			return deliverErr
		}

		if err := store.Save(uid); err != nil {
			deliverErr = fmt.Errorf("syncengine: checkpoint save for uid %d: %w", uid, err)
			return deliverErr
		}
		current = uid

		log.Infof("Fetching messages %d/%d (new %d/%d)", row.seq, highestID, row.seq-lastID, highestID-lastID)
		return nil
	}, nil)

	if deliverErr != nil {
		return current, deliverErr
	}
	if err != nil {
		return current, err
	}
	return current, nil
}
