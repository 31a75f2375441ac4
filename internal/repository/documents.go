package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexora-chat/internal/domain"
)

const (
	documentTextByIDSQL = `SELECT coalesce(ocr_text, '') FROM documents WHERE id = $1`

	// Latest document of the case that actually has OCR text.
	documentTextByCaseSQL = `SELECT ocr_text FROM documents
		WHERE case_id = $1 AND coalesce(btrim(ocr_text), '') <> ''
		ORDER BY created_at DESC LIMIT 1`
)

// rowQuerier is the slice of *pgxpool.Pool used by DocumentStore.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DocumentStore reads OCR text persisted by the upload pipeline.
type DocumentStore struct {
	db rowQuerier
}

// NewDocumentStore creates a DocumentStore on db.
func NewDocumentStore(db rowQuerier) (*DocumentStore, error) {
	if db == nil {
		return nil, errors.New("repository: db must not be nil")
	}
	return &DocumentStore{db: db}, nil
}

// OpenPool connects to Postgres with a pool sized for a single Lambda
// instance and verifies the connection.
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: parse database url: %w", err)
	}
	cfg.MaxConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("repository: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository: ping database: %w", err)
	}
	return pool, nil
}

// GetDocumentText returns the OCR text for doc. The document id wins over the
// case id, and the pratica id is used when no case id is given. A missing row
// is not an error: the result is "" and the guardrail decides.
func (s *DocumentStore) GetDocumentText(ctx context.Context, doc domain.DocumentContext) (string, error) {
	var (
		query string
		arg   string
	)
	switch {
	case strings.TrimSpace(doc.DocumentID) != "":
		query, arg = documentTextByIDSQL, strings.TrimSpace(doc.DocumentID)
	case strings.TrimSpace(doc.CaseID) != "":
		query, arg = documentTextByCaseSQL, strings.TrimSpace(doc.CaseID)
	case strings.TrimSpace(doc.PraticaID) != "":
		query, arg = documentTextByCaseSQL, strings.TrimSpace(doc.PraticaID)
	default:
		return "", nil
	}

	var text string
	if err := s.db.QueryRow(ctx, query, arg).Scan(&text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("repository: GetDocumentText: %w", err)
	}
	return text, nil
}
