package bcryptidentity

import (
	"path/filepath"
	"testing"

	"github.com/go-while/postus/internal/identity"
)

func openTest(t *testing.T) *Identity {
	t.Helper()
	id, err := Open(filepath.Join(t.TempDir(), "users.db"), "news.example.test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { id.Close() })
	return id
}

func TestAuthenticateRoundTrip(t *testing.T) {
	id := openTest(t)
	if err := id.CreateUser("alice", "hunter2"); err != nil {
		t.Fatal(err)
	}
	if got := id.RequiresPassword("alice"); got != identity.Yes {
		t.Errorf("expected Yes, got %v", got)
	}
	if got := id.RequiresPassword("nobody"); got != identity.Unknown {
		t.Errorf("expected Unknown for unregistered user, got %v", got)
	}

	tok, err := id.Authenticate("alice", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if !id.IsValid(tok) {
		t.Error("expected token valid after successful auth")
	}

	if _, err := id.Authenticate("alice", "wrong"); err != identity.ErrAuthFailed {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
}

func TestDeactivatedAccountCannotAuthenticate(t *testing.T) {
	id := openTest(t)
	id.CreateUser("bob", "pw")
	id.SetActive("bob", false)
	if _, err := id.Authenticate("bob", "pw"); err != identity.ErrAuthFailed {
		t.Errorf("expected ErrAuthFailed for deactivated account, got %v", err)
	}
}

func TestCreateMessageIDIsUniqueAndHosted(t *testing.T) {
	id := openTest(t)
	a := id.CreateMessageID(nil)
	b := id.CreateMessageID(nil)
	if a == b {
		t.Error("expected distinct Message-IDs")
	}
	if a[len(a)-len("news.example.test>"):] != "news.example.test>" {
		t.Errorf("expected Message-ID hosted on identifier, got %q", a)
	}
}
