package article

import (
	"fmt"
	"strings"

	"github.com/go-while/postus/internal/wire"
)

// LineReader is the minimal capability ReadDotTerminated needs: read one
// CRLF-stripped line at a time. internal/transport.Transport satisfies
// this.
type LineReader interface {
	ReadLine() (string, error)
}

// MaxArticleLines bounds the number of lines ReadDotTerminated will
// accept before aborting, guarding against unbounded memory growth from a
// misbehaving or malicious peer. Mirrors the teacher's hardcoded article
// size guard in readArticleData.
const MaxArticleLines = 1 << 16

// ReadDotTerminated reads lines from r until a line containing only "."
// is seen (the RFC 3977 multi-line terminator), splitting at the first
// blank line into header lines and body lines. Every line beginning with
// "." is un-dot-stuffed uniformly, per spec.md §9.
func ReadDotTerminated(r LineReader) (headLines, bodyLines []string, err error) {
	inHeaders := true
	count := 0
	for {
		count++
		if count > MaxArticleLines {
			return nil, nil, fmt.Errorf("article: exceeded %d lines without terminator", MaxArticleLines)
		}
		line, err := r.ReadLine()
		if err != nil {
			return nil, nil, fmt.Errorf("article: read line: %w", err)
		}
		if line == wire.DOT {
			return headLines, bodyLines, nil
		}
		line = wire.DotUnstuff(line)
		if inHeaders {
			if line == "" {
				inHeaders = false
				continue
			}
			headLines = append(headLines, line)
		} else {
			bodyLines = append(bodyLines, line)
		}
	}
}

// Parse reads a full article from r and returns the parsed Article
// without validating it (callers validate per the POST/IHAVE rules of
// spec.md §4.9/§4.10, which differ in what they synthesize first).
func Parse(r LineReader) (*Article, error) {
	headLines, bodyLines, err := ReadDotTerminated(r)
	if err != nil {
		return nil, err
	}
	h := ParseHeaders(headLines)
	NormalizeHeaderValues(h)
	a := &Article{
		Headers: h,
		Body:    strings.Join(bodyLines, "\n"),
	}
	if msgID := h.Get("message-id"); msgID != "" {
		a.ID = wire.MessageId(msgID)
	}
	return a, nil
}
