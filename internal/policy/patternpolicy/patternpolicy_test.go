package patternpolicy

import (
	"testing"

	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wire"
)

func TestRejectOverridesSend(t *testing.T) {
	p := New(Config{
		Send:   []string{"comp.*"},
		Reject: []string{"comp.spam*"},
	})
	if got := p.MatchNewsgroup("comp.lang.go"); got != Send {
		t.Errorf("expected Send, got %v", got)
	}
	if got := p.MatchNewsgroup("comp.spam.ads"); got != Rejected {
		t.Errorf("expected Rejected, got %v", got)
	}
}

func TestExcludeWithoutReject(t *testing.T) {
	p := New(Config{
		Send:    []string{"comp.*"},
		Exclude: []string{"comp.test*"},
	})
	if got := p.MatchNewsgroup("comp.test.moderated"); got != Excluded {
		t.Errorf("expected Excluded, got %v", got)
	}
}

func TestEmptySendMatchesAll(t *testing.T) {
	p := New(Config{Reject: []string{"junk.*"}})
	if got := p.MatchNewsgroup("misc.random"); got != Send {
		t.Errorf("expected Send for empty send list, got %v", got)
	}
	if got := p.MatchNewsgroup("junk.mail"); got != Rejected {
		t.Errorf("expected Rejected, got %v", got)
	}
}

func TestMatchArticleCrosspostRejectWins(t *testing.T) {
	p := New(Config{
		Send:   []string{"comp.*", "misc.*"},
		Reject: []string{"misc.spam"},
	})
	groups := []wire.NewsgroupName{"comp.lang.go", "misc.spam"}
	if got := p.MatchArticle(groups); got != Rejected {
		t.Errorf("expected Rejected when any crossposted group is rejected, got %v", got)
	}
}

func TestPostingAllowedBySubjectList(t *testing.T) {
	p := New(Config{PostingSubjects: []string{"trusted*"}})
	if !p.PostingAllowedBy("trusted-user") {
		t.Error("expected trusted-user allowed to post")
	}
	if p.PostingAllowedBy("anon") {
		t.Error("expected anon denied when subject list restricts posting")
	}
}

func TestArticleAllowedRespectsProhibitedMode(t *testing.T) {
	p := New(Config{Send: []string{"comp.*"}})
	if p.ArticleAllowed("<a@b>", nil, "", "comp.lang.go", store.Prohibited, "anyone") {
		t.Error("expected article refused into a Prohibited group")
	}
	if !p.ArticleAllowed("<a@b>", nil, "", "comp.lang.go", store.Allowed, "anyone") {
		t.Error("expected article admitted into an Allowed group")
	}
}
