package imap

import (
	"errors"
	"testing"
)

func TestChannel_Do_SimpleOKCompletion(t *testing.T) {
	addr := newMockIMAPServer(t, mockIMAPOpts{})
	tr := dialMock(t, addr)
	ch := NewChannel(tr)

	if err := Login(ch, "alice", "s3cret", NewCapabilities()); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
}

func TestChannel_Do_NOCompletionReturnsCommandError(t *testing.T) {
	addr := newMockIMAPServer(t, mockIMAPOpts{rejectLogin: true})
	tr := dialMock(t, addr)
	ch := NewChannel(tr)

	err := Login(ch, "alice", "wrong", NewCapabilities())
	if err == nil {
		t.Fatal("expected an error from a rejected LOGIN")
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *CommandError, got %T: %v", err, err)
	}
	if cmdErr.Verb != "LOGIN" {
		t.Fatalf("CommandError.Verb = %q, want LOGIN", cmdErr.Verb)
	}
}

func TestChannel_Do_UnsolicitedBYEIsProtocolError(t *testing.T) {
	addr := newMockIMAPServer(t, mockIMAPOpts{sendByeOnIdle: true})
	tr := dialMock(t, addr)
	ch := NewChannel(tr)

	err := ch.Do("IDLE", "", nil, func(line string) ([]byte, error) {
		return nil, nil
	})
	if err == nil {
		t.Fatal("expected an error from an unsolicited BYE")
	}
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *ProtocolError, got %T: %v", err, err)
	}
}

func TestChannel_Do_IdleDoneRoundTrip(t *testing.T) {
	addr := newMockIMAPServer(t, mockIMAPOpts{})
	tr := dialMock(t, addr)
	ch := NewChannel(tr)

	// The "+ idling" prompt only arrives after the IDLE line has actually
	// been written, so answering it with DONE from inside the
	// continuation handler itself can never race ahead of that write the
	// way a free-running timer goroutine could.
	err := ch.Do("IDLE", "", nil, func(line string) ([]byte, error) {
		if err := ch.WriteRaw([]byte("DONE\r\n")); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
