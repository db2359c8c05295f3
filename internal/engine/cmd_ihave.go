package engine

import (
	"fmt"
	"log"

	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wire"
)

// handleIhave implements IHAVE (spec.md §4.10). The 235 response is
// emitted once, after the article has been fully read and parsed,
// regardless of per-group persistence outcome (the spec's named
// resolution of that Open Question).
func handleIhave(e *Engine, args []string) error {
	if len(args) != 1 {
		return e.transport.Status(501, "IHAVE requires exactly one argument")
	}
	submitter := e.currentSubject()
	if !e.policy.IHaveAllowedBy(submitter) {
		return e.transport.Status(500, "Permission denied")
	}
	offeredID, err := wire.ParseMessageId(args[0])
	if err != nil {
		return e.transport.Status(501, "bad message-id")
	}

	has, _ := e.store.HasArticle(offeredID)
	rejected, _ := e.store.IsRejected(offeredID)
	if has || rejected {
		return e.transport.Status(435, "Article not wanted")
	}

	if err := e.transport.Status(335, "Send article"); err != nil {
		return err
	}

	a, err := e.readIncomingArticle()
	if err != nil {
		return e.transport.Status(437, "Transfer rejected, do not retry")
	}
	if a.ID == "" {
		a.Headers.Set("message-id", string(offeredID))
		a.ID = offeredID
	} else if a.ID != offeredID {
		log.Printf("ihave: message-id mismatch, command=%s headers=%s", offeredID, a.ID)
	}

	if err := e.transport.Status(235, fmt.Sprintf("Article %s transferred", offeredID)); err != nil {
		return err
	}

	accepted, err := e.ingestIntoGroups(a, submitter, func(name wire.NewsgroupName, g store.Group) bool {
		return !name.IsLocal()
	})
	if err != nil || !accepted {
		e.store.MarkRejected(a.ID)
	}
	return nil
}
