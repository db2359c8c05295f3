package wire

import "strings"

// Protocol framing constants, as used throughout the teacher's nntp package.
const (
	DOT  = "."
	CR   = "\r"
	LF   = "\n"
	CRLF = CR + LF
)

// DotStuff escapes a single outgoing line for transmission inside a
// multi-line payload: a line whose first byte is '.' gets an extra
// leading '.'. The terminator line itself is never passed through here.
func DotStuff(line string) string {
	if strings.HasPrefix(line, DOT) {
		return DOT + line
	}
	return line
}

// DotUnstuff reverses DotStuff for a single incoming line.
func DotUnstuff(line string) string {
	if strings.HasPrefix(line, "..") {
		return line[1:]
	}
	return line
}

// SplitBody splits an article body into raw, unstuffed lines for a
// multi-line response. Splitting is done on "\n" since bodies are stored
// with normalized newlines (see internal/article). Dot-stuffing is the
// transport's job (textproto.DotWriter, via lineconn.MultilineStatus) —
// callers must not stuff these lines themselves.
func SplitBody(body string) []string {
	if body == "" {
		return []string{}
	}
	return strings.Split(body, "\n")
}
