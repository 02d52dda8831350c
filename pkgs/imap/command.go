package imap

import (
	"fmt"
	"strconv"
	"strings"
)

// ProtocolError is a fatal session-level failure: an unsolicited BYE, a
// tagged response that doesn't match the outstanding tag, or anything else
// that leaves the Command Channel unable to continue.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string { return "imap protocol error: " + e.Msg }

// CommandError is returned when a tagged command completes with NO or BAD.
type CommandError struct {
	Tag  string
	Verb string
	Text string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("imap: %s failed: %s", e.Verb, e.Text)
}

// Consumer receives the items of each untagged response delivered while a
// command is outstanding. It returns an error to abort the command early:
// Do returns that error at once, without reading the rest of the response
// or its tagged completion, so the Channel is not reusable afterwards.
type Consumer func(items []Item) error

// Channel issues tagged commands over a Transport and dispatches the
// untagged responses that arrive while a command is outstanding. Exactly
// one command is ever in flight; this is not safe for concurrent use from
// multiple goroutines issuing commands, by design: strictly serial.
type Channel struct {
	t   *Transport
	tag int
}

// NewChannel wraps t in a fresh Command Channel with its tag counter at 1.
func NewChannel(t *Transport) *Channel {
	return &Channel{t: t, tag: 1}
}

// WriteRaw writes b directly to the underlying Transport, bypassing tag
// framing entirely. Used for DONE during IDLE, which is not itself a
// tagged command but a terminator for one already outstanding.
func (c *Channel) WriteRaw(b []byte) error {
	return c.t.WriteAll(b)
}

// Continuation is reported to a command's continuation handler for every
// '+' line seen while the command is outstanding (used by AUTHENTICATE).
// The handler returns the bytes to send back (without trailing CRLF), or
// an error to abort.
type Continuation func(line string) ([]byte, error)

// Do issues "<tag> <verb> <args>\r\n", feeds untagged responses to consume,
// and feeds '+' continuation lines (if any arrive) to onContinuation. It
// returns once the tagged completion line arrives: nil on OK, a
// *CommandError on NO/BAD, or a *ProtocolError on BYE or a malformed tag.
func (c *Channel) Do(verb, args string, consume Consumer, onContinuation Continuation) error {
	tag := strconv.Itoa(c.tag)
	c.tag++

	cmd := tag + " " + verb
	if args != "" {
		cmd += " " + args
	}
	if err := c.t.WriteAll([]byte(cmd + "\r\n")); err != nil {
		return err
	}

	for {
		line, err := c.t.ReadLine()
		if err != nil {
			return err
		}

		switch {
		case strings.HasPrefix(line, "* "):
			items, err := ParseResponse(strings.TrimPrefix(line, "* "), c.t)
			if err != nil {
				return err
			}
			items = append([]Item{Atom("*")}, items...)
			if isBye(items) {
				return &ProtocolError{Msg: "unsolicited BYE: " + line}
			}
			if consume != nil {
				if err := consume(items); err != nil {
					return err
				}
			}

		case strings.HasPrefix(line, "+"):
			if onContinuation == nil {
				return &ProtocolError{Msg: "unexpected continuation: " + line}
			}
			resp, err := onContinuation(line)
			if err != nil {
				return err
			}
			// A nil response means the continuation requires no immediate
			// reply (IDLE's "+ idling" prompt: DONE is sent later, out of
			// band, once the caller decides the round is over).
			if resp != nil {
				if err := c.t.WriteAll(append(resp, '\r', '\n')); err != nil {
					return err
				}
			}

		case strings.HasPrefix(line, tag+" "):
			rest := strings.TrimSpace(strings.TrimPrefix(line, tag+" "))
			status, text := splitStatus(rest)
			if status == "OK" {
				return nil
			}
			return &CommandError{Tag: tag, Verb: verb, Text: text}

		default:
			return &ProtocolError{Msg: "unexpected response line: " + line}
		}
	}
}

// isBye reports whether items represent an untagged "* BYE ..." response.
func isBye(items []Item) bool {
	if len(items) < 2 {
		return false
	}
	a, ok := items[1].(Atom)
	return ok && strings.EqualFold(string(a), "BYE")
}

func splitStatus(s string) (status, text string) {
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}
