package imap

import (
	"errors"
	"testing"
)

func TestResolveFolder_ExplicitPassesThrough(t *testing.T) {
	addr := newMockIMAPServer(t, mockIMAPOpts{})
	tr := dialMock(t, addr)
	ch := NewChannel(tr)

	got, err := ResolveFolder(ch, `"My Folder"`, "")
	if err != nil {
		t.Fatalf("ResolveFolder() error: %v", err)
	}
	if got != `"My Folder"` {
		t.Fatalf("ResolveFolder() = %q, want the explicit value unchanged", got)
	}
}

func TestResolveFolder_ByFlag(t *testing.T) {
	addr := newMockIMAPServer(t, mockIMAPOpts{
		listEntries: []string{
			`* LIST (\HasNoChildren) "/" "INBOX"`,
			`* LIST (\All \HasNoChildren) "/" "[Gmail]/All Mail"`,
		},
	})
	tr := dialMock(t, addr)
	ch := NewChannel(tr)

	got, err := ResolveFolder(ch, "", `\All`)
	if err != nil {
		t.Fatalf("ResolveFolder() error: %v", err)
	}
	if got != `"[Gmail]/All Mail"` {
		t.Fatalf("ResolveFolder() = %q, want [Gmail]/All Mail", got)
	}
}

func TestResolveFolder_FlagNotFound(t *testing.T) {
	addr := newMockIMAPServer(t, mockIMAPOpts{
		listEntries: []string{
			`* LIST (\HasNoChildren) "/" "INBOX"`,
		},
	})
	tr := dialMock(t, addr)
	ch := NewChannel(tr)

	_, err := ResolveFolder(ch, "", `\All`)
	if err == nil {
		t.Fatal("expected an error when no LIST entry carries the flag")
	}
	var notFound *FolderNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *FolderNotFoundError, got %T: %v", err, err)
	}
}

func TestExamine_Success(t *testing.T) {
	addr := newMockIMAPServer(t, mockIMAPOpts{})
	tr := dialMock(t, addr)
	ch := NewChannel(tr)

	if err := Examine(ch, `"INBOX"`); err != nil {
		t.Fatalf("Examine() error: %v", err)
	}
}
