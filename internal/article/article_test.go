package article

import (
	"fmt"
	"strings"
	"testing"
)

// fakeLineReader replays a fixed set of lines, simulating a Transport.
type fakeLineReader struct {
	lines []string
	pos   int
}

func (f *fakeLineReader) ReadLine() (string, error) {
	if f.pos >= len(f.lines) {
		return "", fmt.Errorf("eof")
	}
	l := f.lines[f.pos]
	f.pos++
	return l, nil
}

func TestReadDotTerminatedSplitsHeadersAndBody(t *testing.T) {
	r := &fakeLineReader{lines: []string{
		"Newsgroups: g1,g2",
		"From: a@b",
		"Subject: s",
		"",
		"hello",
		"..already stuffed",
		".",
	}}
	head, body, err := ReadDotTerminated(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(head) != 3 {
		t.Fatalf("expected 3 header lines, got %d: %v", len(head), head)
	}
	if len(body) != 2 || body[1] != ".already stuffed" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestParseHeadersCommaSplitsNewsgroups(t *testing.T) {
	h := ParseHeaders([]string{"Newsgroups: g1, g2 ,g3", "Subject: hi"})
	ngs := h.Values("newsgroups")
	if strings.Join(ngs, ",") != "g1,g2,g3" {
		t.Errorf("unexpected newsgroups split: %v", ngs)
	}
}

func TestValidateRequiresMandatoryHeaders(t *testing.T) {
	h := ParseHeaders([]string{
		"Message-ID: <a@b>",
		"Newsgroups: g1",
		"From: a@b",
		"Subject: s",
		"Date: 20240601120000",
		"Path: host",
	})
	if err := Validate(h); err != nil {
		t.Fatalf("expected valid headers: %v", err)
	}

	missing := ParseHeaders([]string{"Subject: s"})
	if err := Validate(missing); err == nil {
		t.Error("expected validation error for missing headers")
	}
}

func TestValidateRejectsMultipleMessageIds(t *testing.T) {
	h := make(Headers)
	h["message-id"] = []string{"<a@b>", "<c@d>"}
	h["newsgroups"] = []string{"g1"}
	h["from"] = []string{"a@b"}
	h["subject"] = []string{"s"}
	h["date"] = []string{"x"}
	h["path"] = []string{"host"}
	if err := Validate(h); err == nil {
		t.Error("expected error for multiple message-id values")
	}
}

func TestHeaderContinuationLines(t *testing.T) {
	h := ParseHeaders([]string{
		"Subject: long",
		" continued subject",
	})
	if h.Get("subject") != "long continued subject" {
		t.Errorf("unexpected continuation join: %q", h.Get("subject"))
	}
}
