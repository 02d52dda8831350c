package sink

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMboxSink_Deliver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mbox")

	s, err := OpenMbox(path)
	if err != nil {
		t.Fatalf("OpenMbox() error: %v", err)
	}

	body := []byte("Return-Path: <alice@example.com>\r\nSubject: hi\r\n\r\nbody\r\n")
	err = s.Deliver(Message{
		UID:          10,
		Body:         body,
		InternalDate: time.Date(2020, 1, 1, 10, 20, 30, 0, time.UTC),
		Status:       StatusReceived,
	})
	if err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty mbox file")
	}
}

func TestMboxSink_DeliverMultiple(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mbox")

	s, err := OpenMbox(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, uid := range []uint32{10, 11, 12} {
		err := s.Deliver(Message{
			UID:          uid,
			Body:         []byte("Subject: test\r\n\r\nbody\r\n"),
			InternalDate: time.Now(),
			Status:       StatusReceived,
		})
		if err != nil {
			t.Fatalf("Deliver(%d) error: %v", uid, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestCleanReturnPath(t *testing.T) {
	cases := map[string]string{
		"<alice@example.com>":    "alice@example.com",
		" <bob@example.com> ":    "bob@example.com",
		"<a b@example.com>":      "ab@example.com",
		"":                       loginName(),
	}
	for in, want := range cases {
		if got := cleanReturnPath(in); got != want {
			t.Errorf("cleanReturnPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSubprocessSink_Deliver(t *testing.T) {
	dir := t.TempDir()
	outFile := filepath.Join(dir, "out")

	script := filepath.Join(dir, "handler.sh")
	contents := "#!/bin/sh\ncat > " + outFile + "\necho \"$1 $2 $3\" >> " + outFile + ".args\n"
	if err := os.WriteFile(script, []byte(contents), 0700); err != nil {
		t.Fatal(err)
	}

	s := NewSubprocess(script)
	body := []byte("hello world")
	err := s.Deliver(Message{
		UID:          42,
		Body:         body,
		InternalDate: time.Date(2020, 1, 1, 10, 20, 30, 0, time.UTC),
		Status:       StatusSent,
	})
	if err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}

	got, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("subprocess stdin = %q, want %q", got, "hello world")
	}

	args, err := os.ReadFile(outFile + ".args")
	if err != nil {
		t.Fatal(err)
	}
	want := "2020-01-01T10:20:30Z 42 Sent\n"
	if string(args) != want {
		t.Fatalf("subprocess args = %q, want %q", args, want)
	}
}

func TestSubprocessSink_SpawnFailure(t *testing.T) {
	s := NewSubprocess(filepath.Join(t.TempDir(), "does-not-exist"))
	err := s.Deliver(Message{UID: 1, Body: []byte("x"), InternalDate: time.Now()})
	if err == nil {
		t.Fatal("expected an error for a missing executable")
	}
}
