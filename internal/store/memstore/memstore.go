// Package memstore is an in-memory reference implementation of the
// store.Store contract (spec.md §6.2), used by engine tests and by
// deployments that don't need durability across restarts.
//
// No existing teacher example ships a pure in-process store for this
// shape of data; this package is a from-scratch mirror of the contract
// protected by a store-wide sync.RWMutex plus one sync.RWMutex per group
// (see group.go), in the spirit of the teacher's own
// in-process caches (internal/nntp/nntp-cache-local.go's Local430,
// internal/database/article_cache.go) — see DESIGN.md.
package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wire"
)

// Store is an in-memory store.Store.
type Store struct {
	mu       sync.RWMutex
	groups   map[wire.NewsgroupName]*group
	articles map[wire.MessageId]*article.Article
	rejected map[wire.MessageId]bool

	snapshot *snapshot // non-nil between Checkpoint and Commit/Rollback
}

type snapshot struct {
	groups   map[wire.NewsgroupName]*group
	articles map[wire.MessageId]*article.Article
	rejected map[wire.MessageId]bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		groups:   make(map[wire.NewsgroupName]*group),
		articles: make(map[wire.MessageId]*article.Article),
		rejected: make(map[wire.MessageId]bool),
	}
}

func (s *Store) Init() error { return nil }

// Checkpoint snapshots current state so a subsequent Rollback can
// restore it; used to bracket the multi-group ingest of spec.md §4.9/§4.10.
func (s *Store) Checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &snapshot{
		groups:   cloneGroups(s.groups),
		articles: cloneArticles(s.articles),
		rejected: cloneRejected(s.rejected),
	}
	return nil
}

func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	return nil
}

func (s *Store) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot != nil {
		s.groups = s.snapshot.groups
		s.articles = s.snapshot.articles
		s.rejected = s.snapshot.rejected
		s.snapshot = nil
	}
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) HasArticle(id wire.MessageId) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.articles[id]
	return ok, nil
}

func (s *Store) IsRejected(id wire.MessageId) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rejected[id], nil
}

// MarkRejected records a MessageId as permanently rejected (e.g. an
// ingest where every destination group was skipped), so future
// POST/IHAVE attempts for the same id are refused per spec.md §3's
// "never re-ingested" invariant.
func (s *Store) MarkRejected(id wire.MessageId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected[id] = true
	return nil
}

func (s *Store) GetArticle(id wire.MessageId) (*article.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, store.ErrNotFound{What: string(id)}
	}
	return a, nil
}

func (s *Store) GetGroupByName(name wire.NewsgroupName) (store.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[name]
	if !ok {
		return nil, store.ErrNotFound{What: string(name)}
	}
	return g, nil
}

func (s *Store) AddGroup(name wire.NewsgroupName, description string, mode store.PostingMode, createdAt time.Time, createdBy string, ignored bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[name] = &group{
		name:          name,
		description:   description,
		mode:          mode,
		createdAt:     createdAt,
		createdBy:     createdBy,
		ignored:       ignored,
		articlesByNum: make(map[wire.ArticleNumber]*store.NewsgroupArticle),
		parent:        s,
	}
	return nil
}

func (s *Store) ListAllGroups(subscribedOnly, includeIgnored bool) ([]store.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []store.Group
	for _, g := range s.groups {
		if g.ignored && !includeIgnored {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (s *Store) ListAllGroupsAddedSince(t time.Time) ([]store.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []store.Group
	for _, g := range s.groups {
		if g.createdAt.After(t) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// registerArticle records a (possibly new) canonical article in the
// store-wide article index, used by AddArticle on first insertion.
func (s *Store) registerArticle(a *article.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[a.ID] = a
}

func cloneGroups(in map[wire.NewsgroupName]*group) map[wire.NewsgroupName]*group {
	out := make(map[wire.NewsgroupName]*group, len(in))
	for k, v := range in {
		out[k] = v.clone()
	}
	return out
}

func cloneArticles(in map[wire.MessageId]*article.Article) map[wire.MessageId]*article.Article {
	out := make(map[wire.MessageId]*article.Article, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneRejected(in map[wire.MessageId]bool) map[wire.MessageId]bool {
	out := make(map[wire.MessageId]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
