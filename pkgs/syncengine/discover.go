package syncengine

import (
	"fmt"

	"github.com/emx-mail/mailsync/pkgs/imap"
)

// window is the outcome of Phase 1 — what the current UID checkpoint
// means in terms of this folder's present sequence numbers.
type window struct {
	lastID     uint32 // seq of the row whose UID equals checkpoint, 0 if none
	highestID  uint32 // max seq observed
	highestUID uint32 // max UID observed
	sawAny     bool   // whether any row was observed at all
}

// discover issues the UID FETCH that tells us what's currently in the
// folder, without pulling any message bodies.
func discover(ch *imap.Channel, checkpoint uint32) (*window, error) {
	var set string
	if checkpoint > 0 {
		set = fmt.Sprintf("%d,*", checkpoint)
	} else {
		set = "*"
	}

	w := &window{}
	err := ch.Do("UID", fmt.Sprintf("FETCH %s (UID)", set), func(items []imap.Item) error {
		row := parseFetchRow(items)
		if row == nil {
			return nil
		}
		uid, ok := row.uid()
		if !ok {
			return nil
		}
		w.sawAny = true
		if uid == checkpoint {
			w.lastID = row.seq
		}
		if row.seq > w.highestID {
			w.highestID = row.seq
		}
		if uid > w.highestUID {
			w.highestUID = uid
		}
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return w, nil
}
