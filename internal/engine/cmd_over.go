package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/wire"
)

// overviewLine renders the eight tab-separated fields spec.md §4.11
// requires: number, Subject, From, Date, Message-ID, References, Bytes,
// Lines. num is 0 for a lookup by MessageId not present in the current
// group.
func overviewLine(num wire.ArticleNumber, a *article.Article) string {
	fields := []string{
		fmt.Sprintf("%d", num),
		a.Headers.Get("subject"),
		a.Headers.Get("from"),
		a.Headers.Get("date"),
		string(a.ID),
		strings.Join(a.Headers.Values("references"), " "),
		a.Headers.Get("bytes"),
		a.Headers.Get("lines"),
	}
	for i, f := range fields {
		fields[i] = article.SanitizeOverviewField(f)
	}
	return strings.Join(fields, "\t")
}

// handleOver implements OVER/XOVER (spec.md §4.11). XOVER is dispatched
// to this same handler (RFC 2980 alias).
func handleOver(e *Engine, args []string) error {
	if len(args) > 1 {
		return e.transport.Status(501, "too many arguments")
	}

	switch {
	case len(args) == 0:
		if !e.sess.HasGroup() {
			return e.transport.Status(412, "No newsgroup selected")
		}
		if !e.sess.HasArticle() {
			return e.transport.Status(420, "Current article number is invalid")
		}
		g, err := e.store.GetGroupByName(*e.sess.CurrentGroup)
		if err != nil {
			return e.transport.Status(412, "No newsgroup selected")
		}
		na, err := g.ArticleByNumber(*e.sess.CurrentArticle)
		if err != nil {
			return e.transport.Status(423, "No such article number in this group")
		}
		return e.transport.MultilineStatus(224, "Overview information follows", []string{overviewLine(na.Number, na.Article)})

	case len(args[0]) > 0 && args[0][0] == '<':
		id, err := wire.ParseMessageId(args[0])
		if err != nil {
			return e.transport.Status(430, "bad message-id")
		}
		a, err := e.store.GetArticle(id)
		if err != nil {
			return e.transport.Status(430, "No such article")
		}
		return e.transport.MultilineStatus(224, "Overview information follows", []string{overviewLine(0, a)})

	default:
		if !e.sess.HasGroup() {
			return e.transport.Status(412, "No newsgroup selected")
		}
		low, high, err := parseOverRange(args[0])
		if err != nil {
			return e.transport.Status(501, "bad range")
		}
		g, err := e.store.GetGroupByName(*e.sess.CurrentGroup)
		if err != nil {
			return e.transport.Status(412, "No newsgroup selected")
		}
		if high == wire.HighestWhenEmpty {
			_, _, groupHigh := g.Metrics()
			high = groupHigh
		}
		articles, err := g.Range(low, high)
		if err != nil {
			return err
		}
		if len(articles) == 0 {
			return e.transport.Status(423, "No articles in range")
		}
		var lines []string
		for _, na := range articles {
			lines = append(lines, overviewLine(na.Number, na.Article))
		}
		return e.transport.MultilineStatus(224, "Overview information follows", lines)
	}
}

// parseOverRange parses "n", "n-m", or "n-" (spec.md §4.11); "-m" is
// rejected.
func parseOverRange(s string) (low, high wire.ArticleNumber, err error) {
	if strings.HasPrefix(s, "-") {
		return 0, 0, fmt.Errorf("bad range %q", s)
	}
	parts := strings.SplitN(s, "-", 2)
	n, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	if len(parts) == 1 {
		return wire.ArticleNumber(n), wire.ArticleNumber(n), nil
	}
	if parts[1] == "" {
		return wire.ArticleNumber(n), wire.HighestWhenEmpty, nil
	}
	m, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return wire.ArticleNumber(n), wire.ArticleNumber(m), nil
}
