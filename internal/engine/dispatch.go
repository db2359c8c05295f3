package engine

import (
	"sort"
	"strings"

	"github.com/go-while/postus/internal/session"
)

// readerModeCapabilities is the union MODE READER reduces the active
// set to (spec.md §4.2): MANDATORY, READER, LIST, NEW_NEWS, OVER, POST.
// AUTHINFO and IHAVE fall outside it, matching the testable property in
// spec.md §8.
var readerModeCapabilities = map[session.Capability]bool{
	session.Mandatory: true,
	session.Reader:    true,
	session.List:      true,
	session.NewNews:   true,
	session.Over:      true,
	session.Post:      true,
}

func (e *Engine) buildHandlers() map[string]handlerInfo {
	return map[string]handlerInfo{
		"ARTICLE": {session.Reader, handleArticle},
		"HEAD":    {session.Reader, handleHead},
		"BODY":    {session.Reader, handleBody},
		"STAT":    {session.Reader, handleStat},

		"GROUP":     {session.Reader, handleGroup},
		"LISTGROUP": {session.Reader, handleListGroup},
		"LAST":      {session.Reader, handleLast},
		"NEXT":      {session.Reader, handleNext},

		"LIST ACTIVE":       {session.List, handleListActive},
		"LIST ACTIVE.TIMES": {session.List, handleListActiveTimes},
		"LIST NEWSGROUPS":   {session.List, handleListNewsgroups},
		"LIST HEADERS":      {session.List, handleListStub("HEADERS")},
		"LIST OVERVIEW.FMT": {session.List, handleListStub("OVERVIEW.FMT")},
		"LIST DISTRIB.PATS": {session.List, handleListStub("DISTRIB.PATS")},

		"DATE":         {session.Mandatory, handleDate},
		"HELP":         {session.Mandatory, handleHelp},
		"CAPABILITIES": {session.Mandatory, handleCapabilities},
		"QUIT":         {session.Mandatory, handleQuit},
		"MODE READER":  {session.Mandatory, handleModeReader},

		"NEWGROUPS": {session.NewNews, handleNewgroups},
		"NEWNEWS":   {session.NewNews, handleNewnews},

		"POST":  {session.Post, handlePost},
		"IHAVE": {session.IHave, handleIhave},

		"OVER":  {session.Over, handleOver},
		"XOVER": {session.Over, handleOver},

		"AUTHINFO": {session.Auth, handleAuthinfo},
	}
}

// dispatch tokenizes one request line and routes it to its handler, per
// spec.md §4.2/§4.3. It returns a non-nil error only when the session
// should end: errQuit after QUIT, or a transport or store fault;
// protocol-level refusals are written as responses and return nil.
func (e *Engine) dispatch(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return e.transport.Status(500, "empty command line")
	}

	cmd := strings.ToUpper(fields[0])
	args := fields[1:]
	key := cmd

	switch cmd {
	case "LIST":
		sub := "ACTIVE"
		if len(args) > 0 {
			sub = strings.ToUpper(args[0])
			args = args[1:]
		}
		key = "LIST " + sub
	case "MODE":
		if len(args) > 0 {
			key = "MODE " + strings.ToUpper(args[0])
			args = args[1:]
		}
	}

	e.stats.CommandExecuted(cmd)

	if !e.sess.ActiveCommands[key] {
		return e.transport.Status(502, "Command not recognized")
	}
	h, ok := e.handlers[key]
	if !ok {
		return e.transport.Status(502, "Command not recognized")
	}
	return h.fn(e, args)
}

// applyModeReader prunes ActiveCommands to the reader-mode capability
// union (spec.md §4.2).
func (e *Engine) applyModeReader() {
	for key, info := range e.handlers {
		e.sess.ActiveCommands[key] = readerModeCapabilities[info.capability]
	}
}

// activeCapabilities returns the distinct, non-internal capability
// labels currently reachable through ActiveCommands, used by
// CAPABILITIES (spec.md §4.2/§4.7).
func (e *Engine) activeCapabilities() []string {
	seen := make(map[session.Capability]bool)
	for key, active := range e.sess.ActiveCommands {
		if !active {
			continue
		}
		info, ok := e.handlers[key]
		if !ok || info.capability == session.Mandatory {
			continue
		}
		seen[info.capability] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}
