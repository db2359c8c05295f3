package engine

import (
	"fmt"

	"github.com/go-while/postus/internal/wildmat"
)

// compileWildmatArg compiles an optional trailing wildmat argument,
// defaulting to match-all per spec.md §4.6.
func compileWildmatArg(args []string) *wildmat.Pattern {
	if len(args) == 0 {
		return wildmat.Compile("")
	}
	return wildmat.Compile(args[0])
}

// handleListActive implements LIST / LIST ACTIVE (spec.md §4.6).
func handleListActive(e *Engine, args []string) error {
	pat := compileWildmatArg(args)
	groups, err := e.store.ListAllGroups(false, false)
	if err != nil {
		return err
	}
	var lines []string
	for _, g := range groups {
		if !pat.Match(string(g.Name())) {
			continue
		}
		_, low, high := g.Metrics()
		lines = append(lines, fmt.Sprintf("%s %d %d %s", g.Name(), high, low, g.PostingMode().WireStatus()))
	}
	return e.transport.MultilineStatus(215, "list of newsgroups follows", lines)
}

// handleListActiveTimes implements LIST ACTIVE.TIMES (spec.md §4.6).
func handleListActiveTimes(e *Engine, args []string) error {
	pat := compileWildmatArg(args)
	groups, err := e.store.ListAllGroups(false, false)
	if err != nil {
		return err
	}
	var lines []string
	for _, g := range groups {
		if !pat.Match(string(g.Name())) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %d %s", g.Name(), g.CreatedAt().UTC().Unix(), g.CreatedBy()))
	}
	return e.transport.MultilineStatus(215, "creation times follow", lines)
}

// handleListNewsgroups implements LIST NEWSGROUPS (spec.md §4.6).
func handleListNewsgroups(e *Engine, args []string) error {
	pat := compileWildmatArg(args)
	groups, err := e.store.ListAllGroups(false, false)
	if err != nil {
		return err
	}
	var lines []string
	for _, g := range groups {
		if !pat.Match(string(g.Name())) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s", g.Name(), g.Description()))
	}
	return e.transport.MultilineStatus(215, "newsgroup descriptions follow", lines)
}

// handleListStub answers the LIST sub-commands spec.md §1 Non-goals
// marks optional (HEADERS, OVERVIEW.FMT, DISTRIB.PATS): recognized, bare
// terminator.
func handleListStub(label string) handlerFunc {
	return func(e *Engine, args []string) error {
		return e.transport.MultilineStatus(215, label, nil)
	}
}
