package engine

import (
	"time"

	"github.com/go-while/postus/internal/wire"
)

// handleDate implements DATE (spec.md §4.7).
func handleDate(e *Engine, args []string) error {
	if len(args) != 0 {
		return e.transport.Status(501, "DATE takes no arguments")
	}
	return e.transport.Status(111, wire.FormatCompactDateTime(time.Now()))
}

// handleHelp implements HELP (spec.md §4.7).
func handleHelp(e *Engine, args []string) error {
	lines := []string{
		"ARTICLE [message-id|number]",
		"HEAD [message-id|number]",
		"BODY [message-id|number]",
		"STAT [message-id|number]",
		"GROUP group",
		"LISTGROUP [group]",
		"LAST",
		"NEXT",
		"LIST [ACTIVE|ACTIVE.TIMES|NEWSGROUPS] [wildmat]",
		"NEWGROUPS date time [GMT]",
		"NEWNEWS wildmat date time [GMT]",
		"POST",
		"IHAVE message-id",
		"OVER|XOVER [range|message-id]",
		"AUTHINFO USER|PASS value",
		"DATE",
		"CAPABILITIES",
		"MODE READER",
		"QUIT",
	}
	return e.transport.MultilineStatus(100, "Help text follows", lines)
}

// handleCapabilities implements CAPABILITIES (spec.md §4.2/§4.7): VERSION
// 2 always first, then one line per derived capability label.
func handleCapabilities(e *Engine, args []string) error {
	lines := append([]string{"VERSION 2"}, e.activeCapabilities()...)
	return e.transport.MultilineStatus(101, "Capability list", lines)
}

// handleQuit implements QUIT (spec.md §4.7): respond, commit the store,
// and return errQuit so Run's loop exits without reading another line.
func handleQuit(e *Engine, args []string) error {
	e.transport.Status(205, "Connection closing")
	e.store.Commit()
	return errQuit
}

// handleModeReader implements MODE READER (spec.md §4.2/§4.7).
func handleModeReader(e *Engine, args []string) error {
	e.applyModeReader()
	if e.policy.PostingAllowedBy(e.currentSubject()) {
		return e.transport.Status(200, "Reader mode, posting permitted")
	}
	return e.transport.Status(201, "Reader mode, posting prohibited")
}
