// Package session implements the per-connection SessionState of
// spec.md §3: current group/article pointers, authentication state, and
// the active command-capability set mutated by MODE READER.
//
// Grounded on the teacher's internal/nntp/nntp-server-cliconns.go
// ClientConnection fields (currentGroup, currentArticle, authenticated,
// user, authUsername, capabilities).
package session

import "github.com/go-while/postus/internal/wire"

// Capability names a labelled bundle of commands advertised via
// CAPABILITIES (spec.md §4.2, §4.7).
type Capability string

const (
	Mandatory Capability = "MANDATORY"
	Reader    Capability = "READER"
	List      Capability = "LIST"
	NewNews   Capability = "NEW_NEWS"
	Over      Capability = "OVER"
	Post      Capability = "POST"
	IHave     Capability = "IHAVE"
	Auth      Capability = "AUTHINFO"
)

// State is the mutable per-connection session the engine owns
// exclusively for the lifetime of one connection.
type State struct {
	CurrentGroup   *wire.NewsgroupName
	CurrentArticle *wire.ArticleNumber
	AuthToken      *string
	Subject        *string // username once authenticated, for policy/identity calls
	PendingUser    *string

	// ActiveCommands is the set of command keywords currently dispatchable.
	// MODE READER replaces it with the reader-mode subset (spec.md §4.2).
	ActiveCommands map[string]bool
}

// New creates a fresh SessionState with the given initial command set.
func New(initialCommands map[string]bool) *State {
	active := make(map[string]bool, len(initialCommands))
	for k, v := range initialCommands {
		active[k] = v
	}
	return &State{ActiveCommands: active}
}

// SelectGroup sets CurrentGroup and resets CurrentArticle to first
// (nullable), per spec.md §3's invariant "setting currentGroup resets
// currentArticle to the group's first article (or null if empty)".
func (s *State) SelectGroup(name wire.NewsgroupName, first *wire.ArticleNumber) {
	g := name
	s.CurrentGroup = &g
	s.CurrentArticle = first
}

// ClearGroup clears both pointers, e.g. on a failed GROUP lookup.
func (s *State) ClearGroup() {
	s.CurrentGroup = nil
	s.CurrentArticle = nil
}

// SetCurrentArticle updates only the article pointer, used by
// ARTICLE/HEAD/BODY/STAT-by-number and LAST/NEXT (spec.md §4.4, §4.5).
func (s *State) SetCurrentArticle(n wire.ArticleNumber) {
	s.CurrentArticle = &n
}

// HasGroup reports whether a group is currently selected.
func (s *State) HasGroup() bool { return s.CurrentGroup != nil }

// HasArticle reports whether a current article pointer is set.
func (s *State) HasArticle() bool { return s.CurrentArticle != nil }
