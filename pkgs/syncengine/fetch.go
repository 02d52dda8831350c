package syncengine

import (
	"strconv"
	"strings"

	"github.com/emx-mail/mailsync/pkgs/imap"
)

// fetchRow is one untagged "<seq> FETCH (...)" response, decomposed into
// its key/value pairs.
type fetchRow struct {
	seq    uint32
	fields map[string]imap.Item
}

// parseFetchRow recognizes items as "* <seq> FETCH (<k> <v> <k> <v> ...)"
// and returns nil if items isn't shaped that way (any other untagged
// response, e.g. "* OK", arrives on the same channel during DISCOVER and
// STREAM and must be ignored rather than treated as a malformed row).
func parseFetchRow(items []imap.Item) *fetchRow {
	if len(items) != 4 {
		return nil
	}
	if items[0] != imap.Atom("*") {
		return nil
	}
	seqAtom, ok := items[1].(imap.Atom)
	if !ok {
		return nil
	}
	seq, err := strconv.ParseUint(string(seqAtom), 10, 32)
	if err != nil {
		return nil
	}
	if items[2] != imap.Atom("FETCH") {
		return nil
	}
	list, ok := items[3].(imap.List)
	if !ok {
		return nil
	}

	fields := make(map[string]imap.Item)
	for i := 0; i+1 < len(list); i += 2 {
		key, ok := list[i].(imap.Atom)
		if !ok {
			continue
		}
		fields[strings.ToUpper(string(key))] = list[i+1]
	}

	return &fetchRow{seq: uint32(seq), fields: fields}
}

// uid returns the row's UID field, or (0, false) if absent or malformed.
func (r *fetchRow) uid() (uint32, bool) {
	v, ok := r.fields["UID"]
	if !ok {
		return 0, false
	}
	a, ok := v.(imap.Atom)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(string(a), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// body returns the row's RFC822 literal, or (nil, false) if absent.
func (r *fetchRow) body() ([]byte, bool) {
	v, ok := r.fields["RFC822"]
	if !ok {
		return nil, false
	}
	lit, ok := v.(imap.Literal)
	if !ok {
		return nil, false
	}
	return []byte(lit), true
}

// internalDate returns the row's INTERNALDATE quoted string, or ("", false)
// if absent.
func (r *fetchRow) internalDate() (string, bool) {
	v, ok := r.fields["INTERNALDATE"]
	if !ok {
		return "", false
	}
	q, ok := v.(imap.QuotedString)
	if !ok {
		return "", false
	}
	return string(q), true
}

// gmailLabels returns the atoms of the row's X-GM-LABELS list, or nil if
// the field is absent (a non-Gmail server, or this row predates labels).
func (r *fetchRow) gmailLabels() []string {
	v, ok := r.fields["X-GM-LABELS"]
	if !ok {
		return nil
	}
	list, ok := v.(imap.List)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if a, ok := item.(imap.Atom); ok {
			out = append(out, string(a))
		}
	}
	return out
}
