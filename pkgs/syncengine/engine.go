package syncengine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emx-mail/mailsync/pkgs/checkpoint"
	"github.com/emx-mail/mailsync/pkgs/config"
	"github.com/emx-mail/mailsync/pkgs/sink"
)

// reconnectDelay is how long the Engine waits before re-dialing after any
// transport-level failure.
const reconnectDelay = 10 * time.Second

// Engine owns one mailbox mirror run: it holds the current session (torn
// down and rebuilt on every reconnect), the durable checkpoint, and the
// sink every delivered message is handed to.
type Engine struct {
	cfg   *config.Config
	store *checkpoint.Store
	snk   sink.Sink
	log   *logrus.Logger
}

// New builds an Engine. snk is opened by the caller (cmd/mailsync) since
// its lifetime — and any close-on-shutdown responsibility — belongs to
// the Runner, not the Engine.
func New(cfg *config.Config, store *checkpoint.Store, snk sink.Sink, log *logrus.Logger) *Engine {
	return &Engine{cfg: cfg, store: store, snk: snk, log: log}
}

// Run drives DISCOVER → STREAM → IDLE forever, reconnecting on any
// transport error, until ctx is cancelled. It returns nil on a clean
// shutdown and a non-nil error only for failures that aren't
// transport-level (auth failure, protocol error), which the Runner treats
// as fatal.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		sess, err := connect(e.cfg, e.log)
		if err != nil {
			if isFatal(err) {
				return err
			}
			e.log.WithError(err).Warn("connect failed, retrying")
			if !sleepOrDone(ctx, reconnectDelay) {
				return nil
			}
			continue
		}

		err = e.runSession(ctx, sess)
		sess.close()

		if err == nil {
			return nil // ctx cancelled cleanly inside runSession
		}
		if isFatal(err) {
			return err
		}

		e.log.WithError(err).Warn("session failed, reconnecting")
		if !sleepOrDone(ctx, reconnectDelay) {
			return nil
		}
	}
}

// runSession drives one connected session through DISCOVER/STREAM/IDLE
// until either ctx is cancelled (returns nil, caller performs clean
// shutdown) or a transport/protocol error forces a reconnect (returns the
// error, caller decides fatal vs retry).
func (e *Engine) runSession(ctx context.Context, sess *session) error {
	current := e.store.Load()

	for {
		if ctx.Err() != nil {
			sess.logout()
			return nil
		}

		w, err := discover(sess.channel, current)
		if err != nil {
			return err
		}

		if w.sawAny && w.highestUID > current {
			current, err = stream(sess.channel, e.store, e.snk, e.log, w, current, sess.caps.HasGmail())
			if err != nil {
				return err
			}
		}

		if ctx.Err() != nil {
			sess.logout()
			return nil
		}

		result, err := idle(ctx, sess.channel, e.log)
		if err != nil {
			if result == idleCancelled {
				sess.logout()
				return nil
			}
			return err
		}
		_ = result // idleNewData loops back to discover; idleRefresh already re-idled internally
	}
}

// isFatal reports whether err belongs to an error category the Runner
// must not retry: auth failures and protocol errors. Transport errors (the
// default) are always retried.
func isFatal(err error) bool {
	return isAuthOrProtocolError(err)
}

// sleepOrDone waits for d or ctx cancellation, whichever comes first. It
// returns false if ctx was cancelled.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
