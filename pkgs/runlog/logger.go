// Package runlog configures the single structured logger threaded through
// every mailsync component.
package runlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a *logrus.Logger writing text-formatted lines to stderr.
// verbose raises the level to Debug; otherwise Info is the floor, matching
// what every component in this tree expects to log at minimum (connection
// lifecycle, phase transitions, and per-message progress).
func New(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
