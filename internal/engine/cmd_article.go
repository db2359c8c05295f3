package engine

import (
	"fmt"
	"strconv"

	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/wire"
)

type retrievalFlavor int

const (
	flavorArticle retrievalFlavor = iota
	flavorHead
	flavorBody
	flavorStat
)

func (f retrievalFlavor) code() int {
	switch f {
	case flavorArticle:
		return 220
	case flavorHead:
		return 221
	case flavorBody:
		return 222
	default:
		return 223
	}
}

func handleArticle(e *Engine, args []string) error { return e.retrieve(args, flavorArticle) }
func handleHead(e *Engine, args []string) error    { return e.retrieve(args, flavorHead) }
func handleBody(e *Engine, args []string) error     { return e.retrieve(args, flavorBody) }
func handleStat(e *Engine, args []string) error    { return e.retrieve(args, flavorStat) }

// retrieve implements ARTICLE/HEAD/BODY/STAT's three argument forms and
// shared response shape (spec.md §4.4).
func (e *Engine) retrieve(args []string, flavor retrievalFlavor) error {
	if len(args) > 1 {
		return e.transport.Status(501, "too many arguments")
	}

	var a *article.Article
	var num wire.ArticleNumber

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
		a, num = na.Article, na.Number

	case len(args[0]) > 0 && args[0][0] == '<':
		id, err := wire.ParseMessageId(args[0])
		if err != nil {
			return e.transport.Status(430, "bad message-id")
		}
		got, err := e.store.GetArticle(id)
		if err != nil {
			return e.transport.Status(430, "No such article")
		}
		a, num = got, 0

	default:
		if !e.sess.HasGroup() {
			return e.transport.Status(412, "No newsgroup selected")
		}
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return e.transport.Status(501, "bad article number")
		}
		g, err := e.store.GetGroupByName(*e.sess.CurrentGroup)
		if err != nil {
			return e.transport.Status(412, "No newsgroup selected")
		}
		na, err := g.ArticleByNumber(wire.ArticleNumber(n))
		if err != nil {
			return e.transport.Status(423, "No such article number in this group")
		}
		a, num = na.Article, na.Number
		e.sess.SetCurrentArticle(num)
	}

	status := fmt.Sprintf("%d %s", num, a.ID)
	var lines []string
	switch flavor {
	case flavorArticle:
		lines = append(a.Headers.RenderHeaderLines(), "")
		lines = append(lines, wire.SplitBody(a.Body)...)
	case flavorHead:
		lines = a.Headers.RenderHeaderLines()
	case flavorBody:
		lines = wire.SplitBody(a.Body)
	case flavorStat:
		return e.transport.Status(flavor.code(), status)
	}
	return e.transport.MultilineStatus(flavor.code(), status, lines)
}
