package engine

import (
	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wire"
)

// readIncomingArticle reads and parses a dot-terminated article off the
// wire, shared by POST and IHAVE (spec.md §4.9/§4.10's "read the article
// stream" step).
func (e *Engine) readIncomingArticle() (*article.Article, error) {
	return article.Parse(e.transport)
}

// ingestIntoGroups implements the transactional multi-group ingest
// bracket of spec.md §4.9 step 7-9 / §4.10: checkpoint, one addArticle
// for the first admitted group and includeArticle for the rest (sharing
// one MessageId across cross-posted copies), commit if at least one
// group accepted, else rollback.
//
// allowGroup decides, per destination newsgroup, whether this ingest
// path considers the group a candidate at all (POST additionally
// requires PostingMode==Allowed; IHAVE additionally excludes "local."
// groups) -- existence and the ignored flag are already checked here.
func (e *Engine) ingestIntoGroups(a *article.Article, submitter string, allowGroup func(wire.NewsgroupName, store.Group) bool) (accepted bool, err error) {
	if err := e.store.Checkpoint(); err != nil {
		return false, err
	}

	var first *store.NewsgroupArticle
	for _, ngName := range a.Newsgroups() {
		g, err := e.store.GetGroupByName(ngName)
		if err != nil || g.Ignored() {
			continue
		}
		if !allowGroup(ngName, g) {
			continue
		}

		approved := e.policy.ArticleAllowed(a.ID, a.Headers, a.Body, ngName, g.PostingMode(), submitter)

		if first == nil {
			na, err := g.AddArticle(a, !approved)
			if err != nil {
				e.store.Rollback()
				return false, err
			}
			first = na
			accepted = true
			continue
		}

		ref := *first
		ref.Rejected = !approved
		if _, err := g.IncludeArticle(&ref); err != nil {
			e.store.Rollback()
			return false, err
		}
		accepted = true
	}

	if accepted {
		return true, e.store.Commit()
	}
	return false, e.store.Rollback()
}
