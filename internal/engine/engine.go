// Package engine implements the per-connection NNTP Protocol Engine:
// the state machine that reads command lines, dispatches them against
// Store/Identity/Policy, and writes RFC 3977 responses.
//
// Grounded on the teacher's internal/nntp package shape (ClientConnection
// plus its nntp-cmd-*.go handler files), but the dispatcher itself is a
// keyword->handler map with a mutable capability set rather than the
// teacher's switch statement, per the generalization this system's
// design explicitly calls for (tagged mapping, not an inheritance
// hierarchy, for the same reason the teacher avoids one: one handler
// per command, easy to enumerate for CAPABILITIES/MODE READER).
package engine

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/identity"
	"github.com/go-while/postus/internal/policy"
	"github.com/go-while/postus/internal/session"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/transport"
	"github.com/go-while/postus/internal/wire"
)

// ServerName and Version are advertised in the greeting.
const (
	ServerName = "Postus"
	Version    = "0.8"
)

// StartupLogGroup is the always-present local log newsgroup spec.md
// §4.1/§4.14 describes.
const StartupLogGroup = wire.NewsgroupName("local.nntp.postus.log")

// errQuit signals the read-dispatch loop to exit cleanly after QUIT,
// distinct from a transport/internal fault (spec.md §4.7/§4.13).
var errQuit = errors.New("engine: quit")

type handlerFunc func(e *Engine, args []string) error

type handlerInfo struct {
	capability session.Capability
	fn         handlerFunc
}

// Engine is the per-connection protocol engine. One Engine is
// constructed per accepted connection and owns that connection's
// SessionState exclusively (spec.md §5).
type Engine struct {
	store     store.Store
	identity  identity.Identity
	policy    policy.Policy
	transport transport.Transport
	sess      *session.State
	stats     *ServerStats

	handlers map[string]handlerInfo
}

// New constructs an Engine over already-open collaborators. The caller
// retains ownership of nothing after calling New: Close() closes
// transport, identity, policy, and store in that order.
func New(st store.Store, id identity.Identity, pol policy.Policy, tr transport.Transport, stats *ServerStats) (*Engine, error) {
	e := &Engine{
		store:     st,
		identity:  id,
		policy:    pol,
		transport: tr,
		stats:     stats,
	}
	e.handlers = e.buildHandlers()

	initial := make(map[string]bool, len(e.handlers))
	for k := range e.handlers {
		initial[k] = true
	}
	e.sess = session.New(initial)

	if err := e.store.Init(); err != nil {
		return nil, fmt.Errorf("engine: store init: %w", err)
	}
	if err := e.ensureStartupLog(); err != nil {
		log.Printf("engine: startup log newsgroup: %v", err)
	}
	return e, nil
}

// ensureStartupLog implements spec.md §4.14: make sure the local log
// newsgroup exists (Prohibited by default) and append a startup-event
// article through the same ingest path POST uses, flipping PostingMode
// to Allowed just for the duration of the injection.
func (e *Engine) ensureStartupLog() error {
	g, err := e.store.GetGroupByName(StartupLogGroup)
	if err != nil {
		var notFound store.ErrNotFound
		if !errors.As(err, &notFound) {
			return err
		}
		if err := e.store.AddGroup(StartupLogGroup, "Postus server event log", store.Prohibited, time.Now().UTC(), "system", false); err != nil {
			return err
		}
		g, err = e.store.GetGroupByName(StartupLogGroup)
		if err != nil {
			return err
		}
	}

	prevMode := g.PostingMode()
	g.SetPostingMode(store.Allowed)
	defer g.SetPostingMode(prevMode)

	id := e.identity.CreateMessageID(nil)
	headers := article.Headers{}
	headers.Set("message-id", id)
	headers.Set("newsgroups", string(StartupLogGroup))
	headers.Set("from", "postus@"+e.identity.HostIdentifier())
	headers.Set("subject", "server startup")
	headers.Set("date", wire.FormatCompactDateTime(time.Now()))
	headers.Set("path", e.identity.HostIdentifier())

	a := &article.Article{ID: wire.MessageId(id), Headers: headers, Body: "Postus " + Version + " starting up.\n"}
	_, err = e.ingestIntoGroups(a, "", func(_ wire.NewsgroupName, lg store.Group) bool {
		return lg.PostingMode() == store.Allowed
	})
	return err
}

// Run sends the greeting and processes commands until end-of-stream or
// an unrecoverable error, per spec.md §4.1.
func (e *Engine) Run() {
	defer e.Close()

	subject := e.currentSubject()
	if e.policy.PostingAllowedBy(subject) {
		e.transport.Status(200, fmt.Sprintf("%s %s server ready", ServerName, Version))
	} else {
		e.transport.Status(201, fmt.Sprintf("%s %s server ready (no posting)", ServerName, Version))
	}

	for {
		e.transport.SetDeadlines()
		line, err := e.transport.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("engine: read error: %v", err)
			}
			return
		}

		if err := e.dispatch(line); err != nil {
			if errors.Is(err, errQuit) {
				return
			}
			log.Printf("engine: unrecoverable error: %v", err)
			e.transport.Status(500, "Internal server error")
			return
		}
	}
}

// Close releases collaborators in the defined order (spec.md §4.1/§7),
// swallowing errors since this is a best-effort shutdown path.
func (e *Engine) Close() {
	e.transport.Close()
	e.identity.Close()
	e.policy.Close()
	e.store.Close()
}

func (e *Engine) currentSubject() string {
	if e.sess.Subject != nil {
		return *e.sess.Subject
	}
	return ""
}
