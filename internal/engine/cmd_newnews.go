package engine

import (
	"fmt"
	"time"

	"github.com/go-while/postus/internal/wildmat"
	"github.com/go-while/postus/internal/wire"
)

// parseNewNewsDateTime parses the trailing date/time[/GMT][/distributions]
// arguments shared by NEWGROUPS and NEWNEWS (spec.md §4.8). distributions
// is recognized and ignored per the Open Question resolution.
func parseNewNewsDateTime(args []string) (time.Time, []string, error) {
	if len(args) < 2 {
		return time.Time{}, nil, fmt.Errorf("too few arguments")
	}
	t, err := wire.ParseCompactDateTime(args[0], args[1], time.Now())
	if err != nil {
		return time.Time{}, nil, err
	}
	rest := args[2:]
	if len(rest) > 0 && rest[0] == "GMT" {
		rest = rest[1:]
	}
	return t, rest, nil // remaining rest, if any, is the ignored [distributions] trailer
}

// handleNewgroups implements NEWGROUPS (spec.md §4.8).
func handleNewgroups(e *Engine, args []string) error {
	since, _, err := parseNewNewsDateTime(args)
	if err != nil {
		return e.transport.Status(501, "bad date/time")
	}
	groups, err := e.store.ListAllGroupsAddedSince(since)
	if err != nil {
		return err
	}
	var lines []string
	for _, g := range groups {
		if g.Ignored() {
			continue
		}
		_, low, high := g.Metrics()
		lines = append(lines, fmt.Sprintf("%s %d %d %s", g.Name(), high, low, g.PostingMode().WireStatus()))
	}
	return e.transport.MultilineStatus(231, "list of new newsgroups follows", lines)
}

// handleNewnews implements NEWNEWS (spec.md §4.8).
func handleNewnews(e *Engine, args []string) error {
	if len(args) < 3 {
		return e.transport.Status(501, "NEWNEWS requires wildmat date time")
	}
	pat := wildmat.Compile(args[0])
	since, _, err := parseNewNewsDateTime(args[1:])
	if err != nil {
		return e.transport.Status(501, "bad date/time")
	}

	groups, err := e.store.ListAllGroups(false, false)
	if err != nil {
		return err
	}

	seen := make(map[wire.MessageId]bool)
	var lines []string
	for _, g := range groups {
		if g.Ignored() || !pat.Match(string(g.Name())) {
			continue
		}
		articles, err := g.Since(since)
		if err != nil {
			return err
		}
		for _, na := range articles {
			if seen[na.Article.ID] {
				continue
			}
			seen[na.Article.ID] = true
			lines = append(lines, string(na.Article.ID))
		}
	}
	return e.transport.MultilineStatus(230, "list of new articles follows", lines)
}
