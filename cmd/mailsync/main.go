package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/emx-mail/mailsync/pkgs/checkpoint"
	"github.com/emx-mail/mailsync/pkgs/config"
	"github.com/emx-mail/mailsync/pkgs/lock"
	"github.com/emx-mail/mailsync/pkgs/runlog"
	"github.com/emx-mail/mailsync/pkgs/sink"
	"github.com/emx-mail/mailsync/pkgs/syncengine"
)

func main() {
	verbose := flag.BoolP("verbose", "v", false, "verbose (debug-level) logging")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		printUsage()
		os.Exit(1)
	}
	dir := args[0]

	log := runlog.New(*verbose)

	l, err := lock.Acquire(dir)
	if err != nil {
		fatal("%v", err)
	}
	defer l.Release()

	cfg, err := config.Load(dir)
	if err != nil {
		l.Release()
		fatal("%v", err)
	}

	var snk sink.Sink
	if cfg.Command != "" {
		snk = sink.NewSubprocess(cfg.Command)
	} else {
		mboxSink, err := sink.OpenMbox(filepath.Join(dir, "mbox"))
		if err != nil {
			l.Release()
			fatal("%v", err)
		}
		defer mboxSink.Close()
		snk = mboxSink
	}

	store := checkpoint.Open(dir)
	engine := syncengine.New(cfg, store, snk, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Run(ctx); err != nil {
		log.WithError(err).Error("fatal error")
		l.Release()
		os.Exit(1)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "mailsync: "+format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `mailsync - one-way incremental IMAP mailbox mirror

Usage:
  mailsync [options] <directory>

The directory holds the run's config file, checkpoint, lock, and (unless
"command" is configured) the destination mbox file.

Options:
`)
	flag.PrintDefaults()
}
