package sink

import (
	"bytes"
	"fmt"
	"os/exec"
)

// SubprocessSink spawns command once per message, passing <date> <uid>
// <status> as distinct argv entries (no shell quoting) and writing the raw
// RFC822 body to its stdin.
type SubprocessSink struct {
	command string
}

// NewSubprocess wraps command (an executable path, not a shell string) as
// a Sink.
func NewSubprocess(command string) *SubprocessSink {
	return &SubprocessSink{command: command}
}

// Deliver runs the configured command for msg. A spawn failure is returned
// to the caller, which treats it as fatal for that row rather than
// advancing the checkpoint past it.
func (s *SubprocessSink) Deliver(msg Message) error {
	date := msg.InternalDate.Format("2006-01-02T15:04:05Z07:00")
	uid := fmt.Sprintf("%d", msg.UID)
	status := string(msg.Status)

	cmd := exec.Command(s.command, date, uid, status)
	cmd.Stdin = bytes.NewReader(msg.Body)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("sink: subprocess %s failed for uid %d: %w (output: %s)", s.command, msg.UID, err, out)
	}
	return nil
}
