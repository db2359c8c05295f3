// Package policy defines the admission-control contract of spec.md
// §6.4: who may POST/IHAVE, whether a newsgroup is allowed to exist at
// all, and whether a specific incoming article is allowed into a
// specific destination group.
package policy

import (
	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wire"
)

// Policy is the admission-control contract of spec.md §6.4.
type Policy interface {
	PostingAllowedBy(subject string) bool
	IHaveAllowedBy(subject string) bool

	// NewsgroupAllowed reports whether name may be advertised/created,
	// given its posting mode, an estimated article count, and whoever is
	// advertising it (e.g. an AUTHINFO subject or a peer identifier).
	NewsgroupAllowed(name wire.NewsgroupName, mode store.PostingMode, estArticles int64, advertiser string) bool

	// ArticleAllowed reports whether id may be admitted into
	// destinationGroup, given the full parsed article, the group's
	// current posting mode, and the submitting subject.
	ArticleAllowed(id wire.MessageId, headers article.Headers, body string, destinationGroup wire.NewsgroupName, mode store.PostingMode, submitter string) bool

	Close() error
}
