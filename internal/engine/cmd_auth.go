package engine

import (
	"strings"

	"github.com/go-while/postus/internal/identity"
)

// handleAuthinfo implements AUTHINFO USER/PASS (spec.md §4.12, RFC 4643).
func handleAuthinfo(e *Engine, args []string) error {
	if len(args) != 2 {
		return e.transport.Status(501, "AUTHINFO requires a sub-command and argument")
	}
	sub := strings.ToUpper(args[0])
	value := args[1]

	switch sub {
	case "USER":
		return e.authinfoUser(value)
	case "PASS":
		return e.authinfoPass(value)
	default:
		return e.transport.Status(501, "unknown AUTHINFO sub-command")
	}
}

func (e *Engine) authinfoUser(user string) error {
	e.sess.PendingUser = nil
	if user == "" {
		return e.transport.Status(501, "AUTHINFO USER requires a username")
	}

	switch e.identity.RequiresPassword(user) {
	case identity.Unknown:
		e.stats.AuthFailed()
		return e.transport.Status(481, "Authentication failed")
	case identity.Yes:
		u := user
		e.sess.PendingUser = &u
		return e.transport.Status(381, "Password required")
	default: // identity.No
		tok, err := e.identity.Authenticate(user, "")
		if err != nil {
			e.stats.AuthFailed()
			return e.transport.Status(481, "Authentication failed")
		}
		e.completeAuth(user, tok)
		return e.transport.Status(281, "Authentication accepted")
	}
}

func (e *Engine) authinfoPass(password string) error {
	if e.sess.PendingUser == nil {
		return e.transport.Status(482, "AUTHINFO PASS out of sequence")
	}
	user := *e.sess.PendingUser
	e.sess.PendingUser = nil

	tok, err := e.identity.Authenticate(user, password)
	if err != nil {
		e.stats.AuthFailed()
		return e.transport.Status(481, "Authentication failed")
	}
	e.completeAuth(user, tok)
	return e.transport.Status(281, "Authentication accepted")
}

func (e *Engine) completeAuth(user string, tok identity.Token) {
	u := user
	t := string(tok)
	e.sess.Subject = &u
	e.sess.AuthToken = &t
	e.stats.AuthSucceeded()
}
