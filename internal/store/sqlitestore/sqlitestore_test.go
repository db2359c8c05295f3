package sqlitestore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wire"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "postus-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddGroupAndArticleRoundTrip(t *testing.T) {
	s := openTest(t)
	if err := s.AddGroup("misc.test", "desc", store.Allowed, time.Now(), "admin", false); err != nil {
		t.Fatal(err)
	}
	g, err := s.GetGroupByName("misc.test")
	if err != nil {
		t.Fatal(err)
	}
	a := &article.Article{ID: "<a@b>", Headers: article.Headers{"subject": {"hi"}}, Body: "body\n"}
	na, err := g.AddArticle(a, false)
	if err != nil {
		t.Fatal(err)
	}
	if na.Number != 1 {
		t.Errorf("expected article number 1, got %d", na.Number)
	}
	has, err := s.HasArticle("<a@b>")
	if err != nil || !has {
		t.Fatalf("expected article present, has=%v err=%v", has, err)
	}
	got, err := s.GetArticle("<a@b>")
	if err != nil {
		t.Fatal(err)
	}
	if got.Body != a.Body {
		t.Errorf("body mismatch: %q", got.Body)
	}
}

func TestCheckpointRollbackDiscardsArticle(t *testing.T) {
	s := openTest(t)
	s.AddGroup("g1", "", store.Allowed, time.Now(), "t", false)
	g1, _ := s.GetGroupByName("g1")

	if err := s.Checkpoint(); err != nil {
		t.Fatal(err)
	}
	if _, err := g1.AddArticle(&article.Article{ID: "<rb@y>", Body: "x"}, false); err != nil {
		t.Fatal(err)
	}
	if err := s.Rollback(); err != nil {
		t.Fatal(err)
	}
	has, _ := s.HasArticle("<rb@y>")
	if has {
		t.Error("expected article gone after rollback")
	}
}

func TestIncludeArticleCrossPost(t *testing.T) {
	s := openTest(t)
	s.AddGroup("g1", "", store.Allowed, time.Now(), "t", false)
	s.AddGroup("g2", "", store.Allowed, time.Now(), "t", false)
	g1, _ := s.GetGroupByName("g1")
	g2, _ := s.GetGroupByName("g2")

	a := &article.Article{ID: "<cross@y>", Body: "x"}
	na1, err := g1.AddArticle(a, false)
	if err != nil {
		t.Fatal(err)
	}
	na2, err := g2.IncludeArticle(na1)
	if err != nil {
		t.Fatal(err)
	}
	if na1.Number != na2.Number {
		t.Errorf("expected same article number across groups for independent counters, got %d %d", na1.Number, na2.Number)
	}
}

func TestMarkAndCheckRejected(t *testing.T) {
	s := openTest(t)
	id := wire.MessageId("<rej@y>")
	rejected, err := s.IsRejected(id)
	if err != nil || rejected {
		t.Fatalf("expected not rejected initially, got %v err %v", rejected, err)
	}
	if err := s.MarkRejected(id); err != nil {
		t.Fatal(err)
	}
	rejected, err = s.IsRejected(id)
	if err != nil || !rejected {
		t.Fatalf("expected rejected after MarkRejected, got %v err %v", rejected, err)
	}
}
