package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wire"
)

// group is the in-memory store.Group implementation. Each group owns its
// own mutex so concurrent engines (one per connection) can operate on
// different groups without contending on the store-wide lock, matching
// spec.md §5's "store implementations must be safe for concurrent use by
// independent engines".
type group struct {
	mu            sync.RWMutex
	name          wire.NewsgroupName
	description   string
	mode          store.PostingMode
	createdAt     time.Time
	createdBy     string
	ignored       bool
	articlesByNum map[wire.ArticleNumber]*store.NewsgroupArticle
	order         []wire.ArticleNumber // ascending
	nextNum       wire.ArticleNumber

	parent *Store
}

func (g *group) clone() *group {
	g.mu.RLock()
	defer g.mu.RUnlock()
	byNum := make(map[wire.ArticleNumber]*store.NewsgroupArticle, len(g.articlesByNum))
	for k, v := range g.articlesByNum {
		byNum[k] = v
	}
	order := make([]wire.ArticleNumber, len(g.order))
	copy(order, g.order)
	return &group{
		name:          g.name,
		description:   g.description,
		mode:          g.mode,
		createdAt:     g.createdAt,
		createdBy:     g.createdBy,
		ignored:       g.ignored,
		articlesByNum: byNum,
		order:         order,
		nextNum:       g.nextNum,
		parent:        g.parent,
	}
}

func (g *group) Name() wire.NewsgroupName { return g.name }
func (g *group) Description() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.description
}
func (g *group) PostingMode() store.PostingMode {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mode
}
func (g *group) SetPostingMode(m store.PostingMode) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = m
	return nil
}
func (g *group) CreatedAt() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.createdAt
}
func (g *group) CreatedBy() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.createdBy
}
func (g *group) Ignored() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ignored
}

func (g *group) Metrics() (count int64, lowest, highest wire.ArticleNumber) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.order) == 0 {
		return 0, wire.LowestWhenEmpty, wire.HighestWhenEmpty
	}
	return int64(len(g.order)), g.order[0], g.order[len(g.order)-1]
}

func (g *group) FirstArticle() (*store.NewsgroupArticle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.order) == 0 {
		return nil, nil
	}
	return g.articlesByNum[g.order[0]], nil
}

func (g *group) ArticleByNumber(n wire.ArticleNumber) (*store.NewsgroupArticle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	a, ok := g.articlesByNum[n]
	if !ok {
		return nil, store.ErrNotFound{What: "article number"}
	}
	return a, nil
}

func (g *group) ArticleNumberOf(id wire.MessageId) (wire.ArticleNumber, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, n := range g.order {
		if g.articlesByNum[n].Article.ID == id {
			return n, nil
		}
	}
	return 0, store.ErrNotFound{What: string(id)}
}

func (g *group) NextArticle(after wire.ArticleNumber) (*store.NewsgroupArticle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i := sort.Search(len(g.order), func(i int) bool { return g.order[i] > after })
	if i >= len(g.order) {
		return nil, nil
	}
	return g.articlesByNum[g.order[i]], nil
}

func (g *group) PrevArticle(before wire.ArticleNumber) (*store.NewsgroupArticle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i := sort.Search(len(g.order), func(i int) bool { return g.order[i] >= before })
	if i == 0 {
		return nil, nil
	}
	return g.articlesByNum[g.order[i-1]], nil
}

func (g *group) Range(low, high wire.ArticleNumber) ([]*store.NewsgroupArticle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*store.NewsgroupArticle
	for _, n := range g.order {
		if n >= low && n <= high {
			out = append(out, g.articlesByNum[n])
		}
	}
	return out, nil
}

func (g *group) Since(t time.Time) ([]*store.NewsgroupArticle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*store.NewsgroupArticle
	for _, n := range g.order {
		na := g.articlesByNum[n]
		if na.InsertedAt.After(t) {
			out = append(out, na)
		}
	}
	return out, nil
}

func (g *group) insert(a *article.Article, rejected bool) *store.NewsgroupArticle {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.nextNum == 0 {
		g.nextNum = 1
	}
	num := g.nextNum
	g.nextNum++
	na := &store.NewsgroupArticle{
		Article:    a,
		Number:     num,
		Group:      g.name,
		InsertedAt: time.Now().UTC(),
		Rejected:   rejected,
	}
	g.articlesByNum[num] = na
	g.order = append(g.order, num)
	return na
}

func (g *group) AddArticle(a *article.Article, rejected bool) (*store.NewsgroupArticle, error) {
	na := g.insert(a, rejected)
	g.parent.registerArticle(a)
	return na, nil
}

func (g *group) IncludeArticle(existing *store.NewsgroupArticle) (*store.NewsgroupArticle, error) {
	return g.insert(existing.Article, existing.Rejected), nil
}
