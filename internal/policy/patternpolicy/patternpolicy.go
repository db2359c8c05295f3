// Package patternpolicy is a glob-pattern admission policy.Policy:
// newsgroup and article admission are decided by matching against
// send/exclude/reject pattern lists, the same inclusion/exclusion/
// rejection algebra INN2-style peer feed files use for outbound
// filtering, repurposed here to answer inbound POST/IHAVE admission
// questions.
//
// Grounded on the teacher's internal/nntp/nntp-peering-pattern.go
// (MatchNewsgroupPatterns, MatchArticleForPeer): same three-list
// send/!exclude/@reject algebra, reused via internal/wildmat instead of
// the teacher's own ad hoc wildcard matcher.
package patternpolicy

import (
	"strings"
	"sync"

	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wildmat"
	"github.com/go-while/postus/internal/wire"
)

// Action is the outcome of matching a newsgroup against a pattern set.
type Action int

const (
	NoMatch Action = iota
	Send
	Excluded
	Rejected
)

// Policy matches newsgroups against compiled send/exclude/reject
// pattern lists, and subjects against an optional poster allow-list.
type Policy struct {
	mu sync.RWMutex

	send    []*wildmat.Pattern
	exclude []*wildmat.Pattern
	reject  []*wildmat.Pattern

	// postingSubjects/ihaveSubjects: empty means "anyone"; non-empty
	// restricts to subjects matching at least one pattern.
	postingSubjects []*wildmat.Pattern
	ihaveSubjects   []*wildmat.Pattern
}

// Config is the declarative source for New, one glob expression per
// entry (spec.md's own wildmat syntax, not raw regex).
type Config struct {
	Send, Exclude, Reject           []string
	PostingSubjects, IHaveSubjects  []string
}

// New compiles cfg into a Policy.
func New(cfg Config) *Policy {
	return &Policy{
		send:            compileAll(cfg.Send),
		exclude:         compileAll(cfg.Exclude),
		reject:          compileAll(cfg.Reject),
		postingSubjects: compileAll(cfg.PostingSubjects),
		ihaveSubjects:   compileAll(cfg.IHaveSubjects),
	}
}

func compileAll(exprs []string) []*wildmat.Pattern {
	out := make([]*wildmat.Pattern, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, wildmat.Compile(strings.TrimSpace(e)))
	}
	return out
}

func matchAny(patterns []*wildmat.Pattern, s string) bool {
	for _, p := range patterns {
		if p.Match(s) {
			return true
		}
	}
	return false
}

// MatchNewsgroup applies reject-overrides-exclude-overrides-send
// precedence (after nntp-peering-pattern.go MatchNewsgroupPatterns):
// a name matching no send pattern is NoMatch, and a name matching both
// send and exclude is Excluded. An empty send list means "send
// everything not otherwise excluded/rejected" (spec.md §9 empty-wildmat
// = match-all).
func (p *Policy) MatchNewsgroup(name wire.NewsgroupName) Action {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := string(name)

	if matchAny(p.reject, s) {
		return Rejected
	}
	sends := len(p.send) == 0 || matchAny(p.send, s)
	if !sends {
		return NoMatch
	}
	if matchAny(p.exclude, s) {
		return Excluded
	}
	return Send
}

// MatchArticle reproduces MatchArticleForPeer's crosspost handling:
// reject wins if any destination newsgroup is rejected, otherwise the
// article is admitted if at least one newsgroup resolves to Send.
func (p *Policy) MatchArticle(newsgroups []wire.NewsgroupName) Action {
	sawSend, sawExcluded := false, false
	for _, ng := range newsgroups {
		switch p.MatchNewsgroup(ng) {
		case Rejected:
			return Rejected
		case Send:
			sawSend = true
		case Excluded:
			sawExcluded = true
		}
	}
	if sawSend {
		return Send
	}
	if sawExcluded {
		return Excluded
	}
	return NoMatch
}

func (p *Policy) PostingAllowedBy(subject string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.postingSubjects) == 0 {
		return true
	}
	return matchAny(p.postingSubjects, subject)
}

func (p *Policy) IHaveAllowedBy(subject string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.ihaveSubjects) == 0 {
		return true
	}
	return matchAny(p.ihaveSubjects, subject)
}

func (p *Policy) NewsgroupAllowed(name wire.NewsgroupName, mode store.PostingMode, estArticles int64, advertiser string) bool {
	return p.MatchNewsgroup(name) == Send
}

func (p *Policy) ArticleAllowed(id wire.MessageId, headers article.Headers, body string, destinationGroup wire.NewsgroupName, mode store.PostingMode, submitter string) bool {
	if mode == store.Prohibited {
		return false
	}
	return p.MatchNewsgroup(destinationGroup) == Send
}

func (p *Policy) Close() error { return nil }
