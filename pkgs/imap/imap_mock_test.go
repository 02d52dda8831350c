package imap

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
)

// mockIMAPOpts configures the scripted behavior of newMockIMAPServer's
// single connection handler. Each field models one server personality this
// package's tests need to drive Channel/Login/AuthenticateXOAuth2/
// ResolveFolder against.
type mockIMAPOpts struct {
	rejectLogin   bool
	capabilities  []string // advertised by "* CAPABILITY ..." (includes SASL-IR/AUTH=XOAUTH2 or not)
	rejectXOAuth2 bool      // continuation reports a 4xx/5xx status
	listEntries   []string  // raw "* LIST (...) ...\"" lines returned for LIST
	sendByeOnIdle bool      // send an unsolicited BYE instead of honoring DONE
}

func newMockIMAPServer(t *testing.T, opts mockIMAPOpts) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handleMockIMAPConn(conn, opts)
	}()
	return ln.Addr().String()
}

func handleMockIMAPConn(conn net.Conn, opts mockIMAPOpts) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	writeLine := func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\r\n", args...)
		w.Flush()
	}

	writeLine("* OK mock IMAP ready")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		tag, verb := fields[0], strings.ToUpper(fields[1])

		switch verb {
		case "LOGIN":
			if opts.rejectLogin {
				writeLine("%s NO LOGIN failed", tag)
			} else {
				writeLine("%s OK LOGIN completed", tag)
			}

		case "CAPABILITY":
			caps := "CAPABILITY IMAP4rev1"
			for _, c := range opts.capabilities {
				caps += " " + c
			}
			writeLine("* %s", caps)
			writeLine("%s OK CAPABILITY completed", tag)

		case "AUTHENTICATE":
			// SASL-IR means the initial response rides along on the
			// AUTHENTICATE line itself (already consumed above as part of
			// fields); no separate "+" round trip is needed to get it.
			if opts.rejectXOAuth2 {
				writeLine("+ eyJzdGF0dXMiOiI0MDEifQ==")
				// AuthenticateXOAuth2 detects the failure from the
				// challenge itself and returns without answering; the
				// connection ends here from the client's side.
				return
			}
			writeLine("%s OK AUTHENTICATE completed", tag)

		case "LIST":
			for _, entry := range opts.listEntries {
				writeLine("%s", entry)
			}
			writeLine("%s OK LIST completed", tag)

		case "EXAMINE":
			writeLine("* 3 EXISTS")
			writeLine("%s OK [READ-ONLY] EXAMINE completed", tag)

		case "IDLE":
			if opts.sendByeOnIdle {
				writeLine("* BYE server shutting down")
				return
			}
			writeLine("+ idling")
			for {
				cmdLine, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if strings.TrimRight(cmdLine, "\r\n") == "DONE" {
					writeLine("%s OK IDLE terminated", tag)
					break
				}
			}

		case "LOGOUT":
			writeLine("* BYE logging out")
			writeLine("%s OK LOGOUT completed", tag)
			return

		default:
			writeLine("%s BAD unrecognized command", tag)
		}
	}
}

func dialMock(t *testing.T, addr string) *Transport {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatal(err)
	}
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	tr, err := Dial(host, port, false)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { tr.Close() })
	return tr
}
