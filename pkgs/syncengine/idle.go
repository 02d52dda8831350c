package syncengine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emx-mail/mailsync/pkgs/imap"
)

// idleCeiling is the default IDLE refresh interval. RFC 2177 recommends
// terminating IDLE well before 30 minutes of inactivity; this stays
// comfortably under that without refreshing so often it's chatty.
const idleCeiling = 10 * time.Minute

// idleResult tells the Engine why Phase 3 returned.
type idleResult int

const (
	idleNewData   idleResult = iota // server pushed EXISTS; go re-run DISCOVER
	idleRefresh                     // timer fired with no push; loop back into IDLE again
	idleCancelled                   // ctx was cancelled between rounds; caller should shut down cleanly
)

// idle runs Phase 3: issue IDLE, wait for either an untagged EXISTS or the
// refresh timer, send DONE exactly once per round, and report why it
// returned. ctx is checked only between rounds, never inside the blocking
// read: a blocked IDLE read is only interrupted by DONE or process exit.
func idle(ctx context.Context, ch *imap.Channel, log *logrus.Logger) (idleResult, error) {
	for {
		if err := ctx.Err(); err != nil {
			return idleCancelled, err
		}

		result, err := idleRound(ch, log)
		if err != nil {
			return idleRefresh, err
		}
		if result == idleNewData {
			return idleNewData, nil
		}
		log.Debug("idle: refresh timer fired, re-entering idle")
	}
}

// idleRound runs exactly one IDLE...DONE cycle.
func idleRound(ch *imap.Channel, log *logrus.Logger) (idleResult, error) {
	var doneSent atomic.Bool
	var newData atomic.Bool

	timer := time.NewTimer(idleCeiling)
	defer timer.Stop()
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		select {
		case <-timer.C:
			if doneSent.CompareAndSwap(false, true) {
				if err := ch.WriteRaw([]byte("DONE\r\n")); err != nil {
					log.WithError(err).Warn("idle: failed writing DONE on timer")
				}
			}
		case <-stop:
		}
	}()

	err := ch.Do("IDLE", "", func(items []imap.Item) error {
		if len(items) >= 3 {
			if a, ok := items[2].(imap.Atom); ok && a == "EXISTS" {
				newData.Store(true)
				if doneSent.CompareAndSwap(false, true) {
					return ch.WriteRaw([]byte("DONE\r\n"))
				}
			}
		}
		return nil
	}, func(line string) ([]byte, error) {
		// The server's "+ idling" prompt needs no immediate reply; DONE is
		// written out of band once this round decides to end.
		return nil, nil
	})
	if err != nil {
		// An untagged BYE or non-OK completion while idling is a
		// transport-level failure, not the fatal protocol error the same
		// BYE would be anywhere else in the session — it triggers
		// reconnect rather than aborting the run. Strip the
		// ProtocolError/CommandError type so the Engine's classifier
		// doesn't treat it as fatal.
		var protoErr *imap.ProtocolError
		var cmdErr *imap.CommandError
		if errors.As(err, &protoErr) || errors.As(err, &cmdErr) {
			return idleRefresh, fmt.Errorf("syncengine: idle terminated: %s", err.Error())
		}
		return idleRefresh, err
	}

	if newData.Load() {
		log.Debug("idle: server pushed new data")
		return idleNewData, nil
	}
	return idleRefresh, nil
}
