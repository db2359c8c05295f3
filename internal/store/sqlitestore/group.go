package sqlitestore

import (
	"database/sql"
	"time"

	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wire"
)

// group is the SQLite-backed store.Group. It holds no state of its own
// beyond its name; every call re-queries through store.conn() so it
// observes whichever transaction (if any) is currently checkpointed.
type group struct {
	store *Store
	name  wire.NewsgroupName
}

func (g *group) Name() wire.NewsgroupName { return g.name }

func (g *group) row() *sql.Row {
	return g.store.conn().QueryRow(`SELECT description, posting_mode, created_at, created_by, ignored FROM groups WHERE name = ?`, string(g.name))
}

func (g *group) Description() string {
	var description, createdBy string
	var mode, ignored int
	var createdAt time.Time
	g.row().Scan(&description, &mode, &createdAt, &createdBy, &ignored)
	return description
}

func (g *group) PostingMode() store.PostingMode {
	var description, createdBy string
	var mode, ignored int
	var createdAt time.Time
	g.row().Scan(&description, &mode, &createdAt, &createdBy, &ignored)
	return store.PostingMode(mode)
}

func (g *group) SetPostingMode(m store.PostingMode) error {
	_, err := g.store.conn().Exec(`UPDATE groups SET posting_mode = ? WHERE name = ?`, int(m), string(g.name))
	return err
}

func (g *group) CreatedAt() time.Time {
	var description, createdBy string
	var mode, ignored int
	var createdAt time.Time
	g.row().Scan(&description, &mode, &createdAt, &createdBy, &ignored)
	return createdAt
}

func (g *group) CreatedBy() string {
	var description, createdBy string
	var mode, ignored int
	var createdAt time.Time
	g.row().Scan(&description, &mode, &createdAt, &createdBy, &ignored)
	return createdBy
}

func (g *group) Ignored() bool {
	var description, createdBy string
	var mode, ignored int
	var createdAt time.Time
	g.row().Scan(&description, &mode, &createdAt, &createdBy, &ignored)
	return ignored != 0
}

func (g *group) Metrics() (count int64, lowest, highest wire.ArticleNumber) {
	var n sql.NullInt64
	var lo, hi sql.NullInt64
	err := g.store.conn().QueryRow(
		`SELECT COUNT(1), MIN(article_num), MAX(article_num) FROM group_articles WHERE group_name = ?`,
		string(g.name),
	).Scan(&n, &lo, &hi)
	if err != nil || n.Int64 == 0 {
		return 0, wire.LowestWhenEmpty, wire.HighestWhenEmpty
	}
	return n.Int64, wire.ArticleNumber(lo.Int64), wire.ArticleNumber(hi.Int64)
}

func (g *group) articleFromRow(num int64, messageID string, insertedAt time.Time, rejected int) (*store.NewsgroupArticle, error) {
	a, err := g.store.GetArticle(wire.MessageId(messageID))
	if err != nil {
		return nil, err
	}
	return &store.NewsgroupArticle{
		Article:    a,
		Number:     wire.ArticleNumber(num),
		Group:      g.name,
		InsertedAt: insertedAt,
		Rejected:   rejected != 0,
	}, nil
}

func (g *group) FirstArticle() (*store.NewsgroupArticle, error) {
	var num int64
	var messageID string
	var insertedAt time.Time
	var rejected int
	err := g.store.conn().QueryRow(
		`SELECT article_num, message_id, inserted_at, rejected FROM group_articles WHERE group_name = ? ORDER BY article_num ASC LIMIT 1`,
		string(g.name),
	).Scan(&num, &messageID, &insertedAt, &rejected)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g.articleFromRow(num, messageID, insertedAt, rejected)
}

func (g *group) ArticleByNumber(n wire.ArticleNumber) (*store.NewsgroupArticle, error) {
	var messageID string
	var insertedAt time.Time
	var rejected int
	err := g.store.conn().QueryRow(
		`SELECT message_id, inserted_at, rejected FROM group_articles WHERE group_name = ? AND article_num = ?`,
		string(g.name), int64(n),
	).Scan(&messageID, &insertedAt, &rejected)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound{What: "article number"}
	}
	if err != nil {
		return nil, err
	}
	return g.articleFromRow(int64(n), messageID, insertedAt, rejected)
}

func (g *group) ArticleNumberOf(id wire.MessageId) (wire.ArticleNumber, error) {
	var num int64
	err := g.store.conn().QueryRow(
		`SELECT article_num FROM group_articles WHERE group_name = ? AND message_id = ?`,
		string(g.name), string(id),
	).Scan(&num)
	if err == sql.ErrNoRows {
		return 0, store.ErrNotFound{What: string(id)}
	}
	if err != nil {
		return 0, err
	}
	return wire.ArticleNumber(num), nil
}

func (g *group) NextArticle(after wire.ArticleNumber) (*store.NewsgroupArticle, error) {
	var num int64
	var messageID string
	var insertedAt time.Time
	var rejected int
	err := g.store.conn().QueryRow(
		`SELECT article_num, message_id, inserted_at, rejected FROM group_articles WHERE group_name = ? AND article_num > ? ORDER BY article_num ASC LIMIT 1`,
		string(g.name), int64(after),
	).Scan(&num, &messageID, &insertedAt, &rejected)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g.articleFromRow(num, messageID, insertedAt, rejected)
}

func (g *group) PrevArticle(before wire.ArticleNumber) (*store.NewsgroupArticle, error) {
	var num int64
	var messageID string
	var insertedAt time.Time
	var rejected int
	err := g.store.conn().QueryRow(
		`SELECT article_num, message_id, inserted_at, rejected FROM group_articles WHERE group_name = ? AND article_num < ? ORDER BY article_num DESC LIMIT 1`,
		string(g.name), int64(before),
	).Scan(&num, &messageID, &insertedAt, &rejected)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g.articleFromRow(num, messageID, insertedAt, rejected)
}

func (g *group) Range(low, high wire.ArticleNumber) ([]*store.NewsgroupArticle, error) {
	rows, err := g.store.conn().Query(
		`SELECT article_num, message_id, inserted_at, rejected FROM group_articles WHERE group_name = ? AND article_num BETWEEN ? AND ? ORDER BY article_num ASC`,
		string(g.name), int64(low), int64(high),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return g.scanAll(rows)
}

func (g *group) Since(t time.Time) ([]*store.NewsgroupArticle, error) {
	rows, err := g.store.conn().Query(
		`SELECT article_num, message_id, inserted_at, rejected FROM group_articles WHERE group_name = ? AND inserted_at > ? ORDER BY article_num ASC`,
		string(g.name), t.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return g.scanAll(rows)
}

func (g *group) scanAll(rows *sql.Rows) ([]*store.NewsgroupArticle, error) {
	var out []*store.NewsgroupArticle
	for rows.Next() {
		var num int64
		var messageID string
		var insertedAt time.Time
		var rejected int
		if err := rows.Scan(&num, &messageID, &insertedAt, &rejected); err != nil {
			return nil, err
		}
		na, err := g.articleFromRow(num, messageID, insertedAt, rejected)
		if err != nil {
			return nil, err
		}
		out = append(out, na)
	}
	return out, rows.Err()
}

func (g *group) nextNum() (int64, error) {
	var max sql.NullInt64
	err := g.store.conn().QueryRow(`SELECT MAX(article_num) FROM group_articles WHERE group_name = ?`, string(g.name)).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return max.Int64 + 1, nil
}

func (g *group) insert(a *article.Article, rejected bool) (*store.NewsgroupArticle, error) {
	num, err := g.nextNum()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	_, err = g.store.conn().Exec(
		`INSERT INTO group_articles(group_name, article_num, message_id, inserted_at, rejected) VALUES (?, ?, ?, ?, ?)`,
		string(g.name), num, string(a.ID), now, boolToInt(rejected),
	)
	if err != nil {
		return nil, err
	}
	return &store.NewsgroupArticle{
		Article:    a,
		Number:     wire.ArticleNumber(num),
		Group:      g.name,
		InsertedAt: now,
		Rejected:   rejected,
	}, nil
}

func (g *group) AddArticle(a *article.Article, rejected bool) (*store.NewsgroupArticle, error) {
	headersJSON, err := marshalHeaders(a.Headers)
	if err != nil {
		return nil, err
	}
	_, err = g.store.conn().Exec(
		`INSERT OR IGNORE INTO articles(message_id, headers_json, body) VALUES (?, ?, ?)`,
		string(a.ID), headersJSON, a.Body,
	)
	if err != nil {
		return nil, err
	}
	return g.insert(a, rejected)
}

func (g *group) IncludeArticle(existing *store.NewsgroupArticle) (*store.NewsgroupArticle, error) {
	return g.insert(existing.Article, existing.Rejected)
}
