// Package store defines the persistence contract of spec.md §6.2: the
// durable newsgroup/article database the engine treats as an external
// collaborator. Only the contract is specified here; concrete
// implementations live in the memstore and sqlitestore subpackages.
package store

import (
	"time"

	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/wire"
)

// PostingMode governs whether clients may inject articles into a group
// (spec.md §3).
type PostingMode int

const (
	Allowed PostingMode = iota
	Moderated
	Prohibited
)

func (m PostingMode) String() string {
	switch m {
	case Allowed:
		return "Allowed"
	case Moderated:
		return "Moderated"
	case Prohibited:
		return "Prohibited"
	default:
		return "Unknown"
	}
}

// WireStatus renders the LIST ACTIVE posting-status letter (spec.md §4.6):
// 'y' Allowed, 'm' Moderated, 'n' otherwise.
func (m PostingMode) WireStatus() string {
	switch m {
	case Allowed:
		return "y"
	case Moderated:
		return "m"
	default:
		return "n"
	}
}

// NewsgroupArticle is an Article plus the ArticleNumber it holds within a
// particular Newsgroup (spec.md §3). The same Article may be
// cross-posted and so appear as multiple NewsgroupArticles sharing one
// MessageId.
type NewsgroupArticle struct {
	Article    *article.Article
	Number     wire.ArticleNumber
	Group      wire.NewsgroupName
	InsertedAt time.Time
	Rejected   bool // true if a policy check disapproved but the copy was persisted anyway
}

// Group is the per-newsgroup contract of spec.md §6.2.
type Group interface {
	Name() wire.NewsgroupName
	Description() string
	PostingMode() PostingMode
	SetPostingMode(PostingMode) error
	CreatedAt() time.Time
	CreatedBy() string
	Ignored() bool

	// Metrics returns (count, lowest, highest); empty groups report the
	// sentinel values of spec.md §3.
	Metrics() (count int64, lowest, highest wire.ArticleNumber)

	FirstArticle() (*NewsgroupArticle, error) // nil, nil if empty
	ArticleByNumber(n wire.ArticleNumber) (*NewsgroupArticle, error)
	ArticleNumberOf(id wire.MessageId) (wire.ArticleNumber, error)
	NextArticle(after wire.ArticleNumber) (*NewsgroupArticle, error)
	PrevArticle(before wire.ArticleNumber) (*NewsgroupArticle, error)
	Range(low, high wire.ArticleNumber) ([]*NewsgroupArticle, error)
	Since(t time.Time) ([]*NewsgroupArticle, error)

	// AddArticle persists a brand new Article in this group, assigning it
	// the next ArticleNumber. Called exactly once per MessageId per
	// ingest (spec.md §9); subsequent cross-posted groups call
	// IncludeArticle instead.
	AddArticle(a *article.Article, rejected bool) (*NewsgroupArticle, error)

	// IncludeArticle records an already-persisted Article (added to a
	// different group by AddArticle) as also present in this group,
	// under a freshly assigned ArticleNumber.
	IncludeArticle(existing *NewsgroupArticle) (*NewsgroupArticle, error)
}

// Store is the top-level persistence contract of spec.md §6.2.
type Store interface {
	Init() error
	Checkpoint() error
	Commit() error
	Rollback() error
	Close() error

	HasArticle(id wire.MessageId) (bool, error)
	IsRejected(id wire.MessageId) (bool, error)
	// MarkRejected records id as permanently rejected, so later POST/IHAVE
	// attempts for the same id are refused without re-parsing the article.
	MarkRejected(id wire.MessageId) error
	GetArticle(id wire.MessageId) (*article.Article, error)

	GetGroupByName(name wire.NewsgroupName) (Group, error)
	AddGroup(name wire.NewsgroupName, description string, mode PostingMode, createdAt time.Time, createdBy string, ignored bool) error

	ListAllGroups(subscribedOnly, includeIgnored bool) ([]Group, error)
	ListAllGroupsAddedSince(t time.Time) ([]Group, error)
}

// ErrNotFound is returned by lookups that find nothing, distinguishing
// "no such group/article" from a genuine backend failure.
type ErrNotFound struct{ What string }

func (e ErrNotFound) Error() string { return "store: not found: " + e.What }
