package engine

import (
	"fmt"
	"time"

	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wire"
)

// handlePost implements POST (spec.md §4.9). The POST admission check
// resolves the spec's named Open Question as PostingMode == Allowed
// exactly (see DESIGN.md).
func handlePost(e *Engine, args []string) error {
	if len(args) != 0 {
		return e.transport.Status(501, "POST takes no arguments")
	}
	submitter := e.currentSubject()
	if !e.policy.PostingAllowedBy(submitter) {
		return e.transport.Status(440, "Posting not permitted")
	}
	if err := e.transport.Status(340, "Send article"); err != nil {
		return err
	}

	a, err := e.readIncomingArticle()
	if err != nil {
		return err
	}

	ids := a.Headers.Values("message-id")
	switch len(ids) {
	case 0:
		synth := e.identity.CreateMessageID(a.Headers)
		a.Headers.Set("message-id", synth)
		a.ID = wire.MessageId(synth)
	case 1:
		a.ID = wire.MessageId(ids[0])
	default:
		return e.transport.Status(441, "Posting failed: multiple Message-ID headers")
	}

	if _, err := wire.ParseMessageId(string(a.ID)); err != nil {
		return e.transport.Status(441, "Posting failed: invalid Message-ID")
	}
	has, _ := e.store.HasArticle(a.ID)
	rejected, _ := e.store.IsRejected(a.ID)
	if has || rejected {
		return e.transport.Status(441, "Posting failed: duplicate Message-ID")
	}

	if !a.Headers.Has("date") {
		a.Headers.Set("date", wire.FormatCompactDateTime(time.Now()))
	}
	if !a.Headers.Has("path") {
		a.Headers.Set("path", e.identity.HostIdentifier())
	}
	if err := article.Validate(a.Headers); err != nil {
		return e.transport.Status(441, fmt.Sprintf("Posting failed: %v", err))
	}

	accepted, err := e.ingestIntoGroups(a, submitter, func(name wire.NewsgroupName, g store.Group) bool {
		return g.PostingMode() == store.Allowed
	})
	if err != nil {
		e.store.MarkRejected(a.ID)
		return e.transport.Status(441, "Posting failed")
	}
	if !accepted {
		e.store.MarkRejected(a.ID)
		return e.transport.Status(441, "Posting failed: no newsgroup accepted the article")
	}
	return e.transport.Status(240, fmt.Sprintf("Article %s posted", a.ID))
}
