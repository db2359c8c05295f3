package engine

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/go-while/postus/internal/identity"
	"github.com/go-while/postus/internal/policy/patternpolicy"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/store/memstore"
	"github.com/go-while/postus/internal/transport/lineconn"
	"github.com/go-while/postus/internal/wire"
)

// stubIdentity is a minimal identity.Identity for engine tests: every
// subject authenticates with any password, no subject ever requires one.
// The startup-log article (minted with nil headers) gets its own
// Message-ID, so it does not take the id a test POST is expected to get.
type stubIdentity struct{ host string }

func (s *stubIdentity) RequiresPassword(subject string) identity.Tri { return identity.No }
func (s *stubIdentity) Authenticate(subject, password string) (identity.Token, error) {
	return identity.Token("tok-" + subject), nil
}
func (s *stubIdentity) IsValid(tok identity.Token) bool { return true }
func (s *stubIdentity) CreateMessageID(headers map[string][]string) string {
	if headers == nil {
		return "<startup@" + s.host + ">"
	}
	return "<synthetic@" + s.host + ">"
}
func (s *stubIdentity) HostIdentifier() string { return s.host }
func (s *stubIdentity) Close() error           { return nil }

// harness wires one Engine over a net.Pipe and drives it from the test
// goroutine via a bufio.Reader/net.Conn pair, mirroring spec.md §8's
// client-driven scenarios.
type harness struct {
	t      *testing.T
	client net.Conn
	r      *bufio.Reader
	st     store.Store
	done   chan struct{}
}

func newHarness(t *testing.T, pol *patternpolicy.Policy) *harness {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	st := memstore.New()
	id := &stubIdentity{host: "test.example"}
	tr := lineconn.New(serverConn)

	e, err := New(st, id, pol, tr, NewServerStats())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	h := &harness{t: t, client: clientConn, r: bufio.NewReader(clientConn), st: st, done: make(chan struct{})}
	go func() {
		e.Run()
		close(h.done)
	}()
	return h
}

func (h *harness) send(line string) {
	h.t.Helper()
	if _, err := h.client.Write([]byte(line + "\r\n")); err != nil {
		h.t.Fatalf("write: %v", err)
	}
}

func (h *harness) readLine() string {
	h.t.Helper()
	h.client.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := h.r.ReadString('\n')
	if err != nil {
		h.t.Fatalf("readLine: %v", err)
	}
	return strings.TrimRight(line, "\r\n")
}

func (h *harness) readDotTerminated() []string {
	h.t.Helper()
	var lines []string
	for {
		l := h.readLine()
		if l == "." {
			return lines
		}
		lines = append(lines, l)
	}
}

func (h *harness) close() {
	h.client.Close()
	<-h.done
}

func defaultPolicy() *patternpolicy.Policy {
	return patternpolicy.New(patternpolicy.Config{})
}

func TestGreetingAndQuit(t *testing.T) {
	h := newHarness(t, defaultPolicy())
	defer h.close()

	greeting := h.readLine()
	if !strings.HasPrefix(greeting, "200 ") {
		t.Fatalf("expected 200 greeting, got %q", greeting)
	}

	h.send("QUIT")
	resp := h.readLine()
	if !strings.HasPrefix(resp, "205") {
		t.Fatalf("expected 205 on QUIT, got %q", resp)
	}
}

func TestDate(t *testing.T) {
	h := newHarness(t, defaultPolicy())
	defer h.close()
	h.readLine() // greeting

	h.send("DATE")
	resp := h.readLine()
	if !strings.HasPrefix(resp, "111 ") {
		t.Fatalf("expected 111 response, got %q", resp)
	}
	if len(strings.Fields(resp)) != 2 || len(strings.Fields(resp)[1]) != 14 {
		t.Fatalf("expected a 14-digit compact timestamp, got %q", resp)
	}
}

func TestGroupSelectionOfUnknownGroup(t *testing.T) {
	h := newHarness(t, defaultPolicy())
	defer h.close()
	h.readLine() // greeting

	h.send("GROUP nonexistent.group")
	resp := h.readLine()
	if !strings.HasPrefix(resp, "411 ") {
		t.Fatalf("expected 411 for unknown group, got %q", resp)
	}
}

func TestPostCrosspostSynthesizesMessageID(t *testing.T) {
	h := newHarness(t, defaultPolicy())
	defer h.close()
	h.readLine() // greeting

	if err := h.st.AddGroup("misc.test", "test group", store.Allowed, time.Now().UTC(), "system", false); err != nil {
		t.Fatalf("AddGroup misc.test: %v", err)
	}
	if err := h.st.AddGroup("misc.test2", "test group 2", store.Allowed, time.Now().UTC(), "system", false); err != nil {
		t.Fatalf("AddGroup misc.test2: %v", err)
	}

	h.send("POST")
	resp := h.readLine()
	if !strings.HasPrefix(resp, "340 ") {
		t.Fatalf("expected 340 solicit, got %q", resp)
	}

	h.send("From: poster@example.com")
	h.send("Subject: crosspost test")
	h.send("Newsgroups: misc.test,misc.test2")
	h.send("")
	h.send("body line one.")
	h.send(".")

	final := h.readLine()
	if !strings.HasPrefix(final, "240 ") {
		t.Fatalf("expected 240 on successful post, got %q", final)
	}
	if !strings.Contains(final, "<synthetic@test.example>") {
		t.Fatalf("expected synthesized message-id in response, got %q", final)
	}

	for _, name := range []string{"misc.test", "misc.test2"} {
		g, err := h.st.GetGroupByName(wire.NewsgroupName(name))
		if err != nil {
			t.Fatalf("GetGroupByName(%s): %v", name, err)
		}
		_, low, high := g.Metrics()
		if low != 1 || high != 1 {
			t.Fatalf("%s: expected one article (low=high=1), got low=%d high=%d", name, low, high)
		}
	}
}

func TestIhaveDuplicateRejection(t *testing.T) {
	h := newHarness(t, defaultPolicy())
	defer h.close()
	h.readLine() // greeting

	h.st.MarkRejected(wire.MessageId("<dup@example.com>"))

	h.send("IHAVE <dup@example.com>")
	resp := h.readLine()
	if !strings.HasPrefix(resp, "435 ") {
		t.Fatalf("expected 435 for already-rejected id, got %q", resp)
	}
}

func TestListGroupUnknownGroupSingleResponse(t *testing.T) {
	h := newHarness(t, defaultPolicy())
	defer h.close()
	h.readLine() // greeting

	h.send("LISTGROUP nonexistent.group")
	resp := h.readLine()
	if !strings.HasPrefix(resp, "411 ") {
		t.Fatalf("expected 411 for unknown group, got %q", resp)
	}

	// A second, unsolicited response would desync framing: the next
	// command's reply must be the only thing waiting on the wire.
	h.send("DATE")
	resp = h.readLine()
	if !strings.HasPrefix(resp, "111 ") {
		t.Fatalf("expected 111 for DATE right after LISTGROUP, got %q (stray response left over?)", resp)
	}
}

func TestListGroupWithArgumentSingleResponse(t *testing.T) {
	h := newHarness(t, defaultPolicy())
	defer h.close()
	h.readLine() // greeting

	if err := h.st.AddGroup("misc.listgroup", "listgroup test", store.Allowed, time.Now().UTC(), "system", false); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}

	h.send("POST")
	h.readLine() // 340
	h.send("From: poster@example.com")
	h.send("Subject: listgroup test article")
	h.send("Newsgroups: misc.listgroup")
	h.send("")
	h.send("body.")
	h.send(".")
	h.readLine() // 240

	h.send("LISTGROUP misc.listgroup")
	resp := h.readLine()
	if !strings.HasPrefix(resp, "211 ") {
		t.Fatalf("expected 211, got %q", resp)
	}
	lines := h.readDotTerminated()
	if len(lines) != 1 || lines[0] != "1" {
		t.Fatalf("expected one article number line \"1\", got %v", lines)
	}

	// Only one response block should have been written; confirm the
	// wire is clean for the next command.
	h.send("DATE")
	resp = h.readLine()
	if !strings.HasPrefix(resp, "111 ") {
		t.Fatalf("expected 111 for DATE right after LISTGROUP, got %q (stray response left over?)", resp)
	}
}

func TestArticleBodyLeadingDotStuffedExactlyOnce(t *testing.T) {
	h := newHarness(t, defaultPolicy())
	defer h.close()
	h.readLine() // greeting

	if err := h.st.AddGroup("misc.dot", "dot test", store.Allowed, time.Now().UTC(), "system", false); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}

	h.send("POST")
	h.readLine() // 340
	h.send("From: poster@example.com")
	h.send("Subject: dot test article")
	h.send("Newsgroups: misc.dot")
	h.send("")
	h.send("..hidden") // a body line reading ".hidden" arrives dot-stuffed
	h.send(".")
	h.readLine() // 240

	h.send("GROUP misc.dot")
	h.readLine() // 211

	h.send("BODY 1")
	status := h.readLine()
	if !strings.HasPrefix(status, "222 ") {
		t.Fatalf("expected 222, got %q", status)
	}
	// readDotTerminated reads raw wire lines without un-stuffing: the
	// body line ".hidden" must arrive with exactly one extra leading dot,
	// not two or three (spec.md §8).
	lines := h.readDotTerminated()
	if len(lines) != 1 || lines[0] != "..hidden" {
		t.Fatalf("expected exactly one extra leading dot on the wire, got %v", lines)
	}
}

func TestOverRangeWithOneResult(t *testing.T) {
	h := newHarness(t, defaultPolicy())
	defer h.close()
	h.readLine() // greeting

	if err := h.st.AddGroup("misc.over", "overview test", store.Allowed, time.Now().UTC(), "system", false); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}

	h.send("POST")
	h.readLine() // 340
	h.send("From: poster@example.com")
	h.send("Subject: overview test article")
	h.send("Newsgroups: misc.over")
	h.send("")
	h.send("body.")
	h.send(".")
	h.readLine() // 240

	h.send("GROUP misc.over")
	h.readLine() // 211

	h.send("OVER 1-1")
	status := h.readLine()
	if !strings.HasPrefix(status, "224 ") {
		t.Fatalf("expected 224, got %q", status)
	}
	lines := h.readDotTerminated()
	if len(lines) != 1 {
		t.Fatalf("expected exactly one overview line, got %d: %v", len(lines), lines)
	}
	fields := strings.Split(lines[0], "\t")
	if fields[0] != "1" {
		t.Fatalf("expected article number 1, got %q", fields[0])
	}
	if fields[1] != "overview test article" {
		t.Fatalf("expected subject field, got %q", fields[1])
	}
}
