package engine

import (
	"fmt"

	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wire"
)

// handleGroup implements GROUP (spec.md §4.5).
func handleGroup(e *Engine, args []string) error {
	if len(args) != 1 {
		return e.transport.Status(501, "GROUP requires exactly one argument")
	}
	name, err := wire.ParseNewsgroupName(args[0])
	if err != nil {
		return e.transport.Status(501, "invalid newsgroup name")
	}
	count, low, high, ok := e.selectGroup(name)
	if !ok {
		return e.transport.Status(411, "No such newsgroup")
	}
	return e.transport.Status(211, fmt.Sprintf("%d %d %d %s", count, low, high, name))
}

// selectGroup implements the GROUP lookup-and-select shared by GROUP and
// LISTGROUP's argument form (spec.md §4.5). It only looks up the group
// and updates session state; callers are responsible for writing the
// response, since LISTGROUP's argument form folds the result into its
// own multiline reply instead of emitting a separate one.
func (e *Engine) selectGroup(name wire.NewsgroupName) (count int64, low, high wire.ArticleNumber, ok bool) {
	g, err := e.store.GetGroupByName(name)
	if err != nil || g.Ignored() {
		e.sess.ClearGroup()
		return 0, 0, 0, false
	}
	count, low, high = g.Metrics()
	var first *wire.ArticleNumber
	if count > 0 {
		fa, err := g.FirstArticle()
		if err == nil && fa != nil {
			n := fa.Number
			first = &n
		}
	}
	e.sess.SelectGroup(name, first)
	return count, low, high, true
}

// handleListGroup implements LISTGROUP (spec.md §4.5).
func handleListGroup(e *Engine, args []string) error {
	if len(args) == 1 {
		name, err := wire.ParseNewsgroupName(args[0])
		if err != nil {
			return e.transport.Status(501, "invalid newsgroup name")
		}
		if _, _, _, ok := e.selectGroup(name); !ok {
			return e.transport.Status(411, "No such newsgroup")
		}
	} else if len(args) > 1 {
		return e.transport.Status(501, "LISTGROUP takes at most one argument")
	}

	if !e.sess.HasGroup() {
		return e.transport.Status(412, "No newsgroup selected")
	}
	name := *e.sess.CurrentGroup
	g, err := e.store.GetGroupByName(name)
	if err != nil {
		return e.transport.Status(411, "No such newsgroup")
	}
	count, low, high := g.Metrics()

	var lines []string
	if count > 0 {
		articles, err := g.Range(low, high)
		if err != nil {
			return err
		}
		for _, a := range articles {
			lines = append(lines, fmt.Sprintf("%d", a.Number))
		}
	}
	return e.transport.MultilineStatus(211, fmt.Sprintf("%d %d %d %s", count, low, high, name), lines)
}

// handleLast implements LAST (spec.md §4.5).
func handleLast(e *Engine, args []string) error {
	return e.stepArticle(args, false)
}

// handleNext implements NEXT (spec.md §4.5).
func handleNext(e *Engine, args []string) error {
	return e.stepArticle(args, true)
}

func (e *Engine) stepArticle(args []string, forward bool) error {
	if len(args) != 0 {
		return e.transport.Status(501, "no arguments expected")
	}
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

	var na *store.NewsgroupArticle
	if forward {
		next, err := g.NextArticle(*e.sess.CurrentArticle)
		if err != nil {
			return err
		}
		if next == nil {
			return e.transport.Status(421, "No next article in this group")
		}
		na = next
	} else {
		prev, err := g.PrevArticle(*e.sess.CurrentArticle)
		if err != nil {
			return err
		}
		if prev == nil {
			return e.transport.Status(422, "No previous article in this group")
		}
		na = prev
	}

	e.sess.SetCurrentArticle(na.Number)
	return e.transport.Status(223, fmt.Sprintf("%d %s", na.Number, na.Article.ID))
}
