package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdf-chat/internal/config"
	"pdf-chat/internal/models"
)

// Document is one chunk row. The table name is set per query so it can be
// configured.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            string            `bun:"id,pk"`
	Content       string            `bun:"content,notnull"`
	Embedding     pgvector.Vector   `bun:"embedding,notnull"`
	Metadata      map[string]string `bun:"metadata,type:jsonb"`
	Score         float32           `bun:"score,scanonly"`
}

// Store is a pgvector-backed vector index.
type Store struct {
	db        *bun.DB
	table     string
	dimension int
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ConnectDB opens a connection pool with the configured driver. Nothing is
// dialed until the first query.
func ConnectDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case config.DriverPq:
		dsn, err := withPassword(cfg.DSN, cfg.Password)
		if err != nil {
			return nil, err
		}
		return sql.Open("postgres", dsn)
	default:
		opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
		if cfg.Password != "" {
			opts = append(opts, pgdriver.WithPassword(cfg.Password))
		}
		return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
	}
}

func withPassword(dsn, password string) (string, error) {
	if password == "" {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("%w: parse dsn: %v", models.ErrConfig, err)
	}
	user := ""
	if u.User != nil {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, password)
	return u.String(), nil
}

// NewStore connects, enables the vector extension and creates the table.
func NewStore(ctx context.Context, cfg config.DatabaseConfig, dimension int) (*Store, error) {
	sqldb, err := ConnectDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", models.ErrVectorStore, err)
	}
	s := &Store{db: NewDB(sqldb, cfg.Debug), table: cfg.Table, dimension: dimension}
	if err := s.InitDB(ctx); err != nil {
		_ = s.db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) InitDB(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("%w: create extension: %v", models.ErrVectorStore, err)
	}
	_, err := s.db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS ? (id text PRIMARY KEY, content text NOT NULL, embedding vector(?) NOT NULL, metadata jsonb)",
		bun.Ident(s.table), s.dimension)
	if err != nil {
		return fmt.Errorf("%w: create table %s: %v", models.ErrVectorStore, s.table, err)
	}
	log.Debug().Str("table", s.table).Int("dimension", s.dimension).Msg("Vector table ready")
	return nil
}

func (s *Store) Upsert(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}
	docs := toDocuments(records)
	if _, err := s.upsertQuery(&docs).Exec(ctx); err != nil {
		return fmt.Errorf("%w: upsert: %v", models.ErrVectorStore, err)
	}
	return nil
}

func (s *Store) upsertQuery(docs *[]Document) *bun.InsertQuery {
	return s.db.NewInsert().
		Model(docs).
		ModelTableExpr("?", bun.Ident(s.table)).
		On("CONFLICT (id) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("embedding = EXCLUDED.embedding").
		Set("metadata = EXCLUDED.metadata")
}

// Query ranks rows by cosine distance; score is cosine similarity.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]models.Match, error) {
	if topK <= 0 {
		return []models.Match{}, nil
	}
	var docs []Document
	if err := s.searchQuery(&docs, vector, topK).Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: search: %v", models.ErrVectorStore, err)
	}
	return toMatches(docs), nil
}

func (s *Store) searchQuery(docs *[]Document, vector []float32, limit int) *bun.SelectQuery {
	v := pgvector.NewVector(vector)
	return s.db.NewSelect().
		Model(docs).
		ModelTableExpr("? AS d", bun.Ident(s.table)).
		Column("id", "content", "metadata").
		ColumnExpr("1 - (embedding <=> ?) AS score", v).
		OrderExpr("embedding <=> ?", v).
		Limit(limit)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.NewSelect().
		TableExpr("?", bun.Ident(s.table)).
		ColumnExpr("count(*)").
		Scan(ctx, &n)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %v", models.ErrVectorStore, err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DropDocuments removes the table and every stored chunk.
func (s *Store) DropDocuments(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS ?", bun.Ident(s.table)); err != nil {
		return fmt.Errorf("%w: drop table: %v", models.ErrVectorStore, err)
	}
	return nil
}

func toDocuments(records []models.Record) []Document {
	docs := make([]Document, len(records))
	for i, r := range records {
		docs[i] = Document{
			ID:        r.ID,
			Content:   r.Content,
			Embedding: pgvector.NewVector(r.Embedding),
			Metadata:  r.Metadata,
		}
	}
	return docs
}

func toMatches(docs []Document) []models.Match {
	matches := make([]models.Match, len(docs))
	for i, d := range docs {
		matches[i] = models.Match{
			ID:       d.ID,
			Score:    d.Score,
			Content:  d.Content,
			Metadata: d.Metadata,
		}
	}
	return matches
}
