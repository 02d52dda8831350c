package imap

import "fmt"

// FolderNotFoundError is returned when no LIST entry carries the
// configured folder flag.
type FolderNotFoundError struct {
	Flag string
}

func (e *FolderNotFoundError) Error() string {
	return fmt.Sprintf("imap: no folder advertises flag %q", e.Flag)
}

// ResolveFolder returns the quoted folder name to EXAMINE. If explicit is
// non-empty it is used as-is (already quoted or an atom, per the caller).
// Otherwise it issues LIST "" "*" and picks the first entry whose flag set
// contains flag exactly.
func ResolveFolder(ch *Channel, explicit, flag string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	var picked string
	err := ch.Do("LIST", `"" "*"`, func(items []Item) error {
		if picked != "" {
			return nil
		}
		if len(items) < 2 || items[1] != Atom("LIST") {
			return nil
		}
		rest := items[2:]
		if len(rest) < 3 {
			return nil
		}
		flags, ok := rest[0].(List)
		if !ok {
			return nil
		}
		for _, f := range flags {
			if a, ok := f.(Atom); ok && string(a) == flag {
				picked = quotedToken(rest[2])
				return nil
			}
		}
		return nil
	}, nil)
	if err != nil {
		return "", err
	}
	if picked == "" {
		return "", &FolderNotFoundError{Flag: flag}
	}
	return picked, nil
}

// Examine issues EXAMINE <folder> (read-only select) so no server-side
// state is ever mutated.
func Examine(ch *Channel, folder string) error {
	return ch.Do("EXAMINE", folder, nil, nil)
}

// quotedToken renders item back into the wire form EXAMINE expects. An
// atom is passed through unchanged; a quoted string (already unescaped by
// the parser) is re-quoted with quoteString, which re-escapes backslash
// and double quote.
func quotedToken(item Item) string {
	switch v := item.(type) {
	case QuotedString:
		return quoteString(string(v))
	case Atom:
		return string(v)
	default:
		return ""
	}
}
