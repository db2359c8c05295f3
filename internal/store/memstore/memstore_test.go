package memstore

import (
	"testing"
	"time"

	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wire"
)

func TestEmptyGroupMetrics(t *testing.T) {
	s := New()
	if err := s.AddGroup("misc.empty", "", store.Allowed, time.Now(), "test", false); err != nil {
		t.Fatal(err)
	}
	g, err := s.GetGroupByName("misc.empty")
	if err != nil {
		t.Fatal(err)
	}
	count, low, high := g.Metrics()
	if count != 0 || low != wire.LowestWhenEmpty || high != wire.HighestWhenEmpty {
		t.Errorf("unexpected empty metrics: %d %d %d", count, low, high)
	}
	first, err := g.FirstArticle()
	if err != nil || first != nil {
		t.Errorf("expected nil first article for empty group, got %v err %v", first, err)
	}
}

func TestCrossPostAddThenInclude(t *testing.T) {
	s := New()
	now := time.Now()
	s.AddGroup("g1", "", store.Allowed, now, "t", false)
	s.AddGroup("g2", "", store.Allowed, now, "t", false)

	g1, _ := s.GetGroupByName("g1")
	g2, _ := s.GetGroupByName("g2")

	a := &article.Article{ID: "<x@y>", Headers: article.Headers{}, Body: "hi"}
	na1, err := g1.AddArticle(a, false)
	if err != nil {
		t.Fatal(err)
	}
	na2, err := g2.IncludeArticle(na1)
	if err != nil {
		t.Fatal(err)
	}
	if na1.Number != 1 || na2.Number != 1 {
		t.Errorf("expected both groups to assign article number 1, got %d %d", na1.Number, na2.Number)
	}
	has, _ := s.HasArticle("<x@y>")
	if !has {
		t.Error("expected article to be registered store-wide")
	}
}

func TestCheckpointRollback(t *testing.T) {
	s := New()
	s.AddGroup("g1", "", store.Allowed, time.Now(), "t", false)
	g1, _ := s.GetGroupByName("g1")

	if err := s.Checkpoint(); err != nil {
		t.Fatal(err)
	}
	a := &article.Article{ID: "<rb@y>", Headers: article.Headers{}, Body: "body"}
	if _, err := g1.AddArticle(a, false); err != nil {
		t.Fatal(err)
	}
	has, _ := s.HasArticle("<rb@y>")
	if !has {
		t.Fatal("expected article present before rollback")
	}
	if err := s.Rollback(); err != nil {
		t.Fatal(err)
	}
	has, _ = s.HasArticle("<rb@y>")
	if has {
		t.Error("expected article to be gone after rollback")
	}
	g1After, _ := s.GetGroupByName("g1")
	count, _, _ := g1After.Metrics()
	if count != 0 {
		t.Errorf("expected group article count 0 after rollback, got %d", count)
	}
}

func TestNextPrevArticle(t *testing.T) {
	s := New()
	s.AddGroup("g1", "", store.Allowed, time.Now(), "t", false)
	g1, _ := s.GetGroupByName("g1")
	for i := 0; i < 3; i++ {
		g1.AddArticle(&article.Article{ID: wire.MessageId(string(rune('a' + i)))}, false)
	}
	next, err := g1.NextArticle(1)
	if err != nil || next == nil || next.Number != 2 {
		t.Fatalf("expected next article 2, got %v err %v", next, err)
	}
	prev, err := g1.PrevArticle(2)
	if err != nil || prev == nil || prev.Number != 1 {
		t.Fatalf("expected prev article 1, got %v err %v", prev, err)
	}
	last, err := g1.NextArticle(3)
	if err != nil || last != nil {
		t.Fatalf("expected no next after last article, got %v", last)
	}
}
