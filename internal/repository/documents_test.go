package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"lexora-chat/internal/domain"
)

type fakeRow struct {
	val string
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.val
	return nil
}

type fakeQuerier struct {
	row      fakeRow
	calls    int
	lastSQL  string
	lastArgs []any
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.calls++
	f.lastSQL = sql
	f.lastArgs = args
	return f.row
}

func mustNewDocumentStore(t *testing.T, q *fakeQuerier) *DocumentStore {
	t.Helper()
	s, err := NewDocumentStore(q)
	require.NoError(t, err)
	return s
}

func TestGetDocumentText_ByDocumentID(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{val: "Finanzamt München, Bescheid"}}
	s := mustNewDocumentStore(t, q)
	text, err := s.GetDocumentText(context.Background(), domain.DocumentContext{DocumentID: " doc-1 ", CaseID: "case-1"})
	require.NoError(t, err)
	require.Equal(t, "Finanzamt München, Bescheid", text)
	require.Equal(t, documentTextByIDSQL, q.lastSQL)
	require.Equal(t, []any{"doc-1"}, q.lastArgs)
}

func TestGetDocumentText_ByCaseID(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{val: "Agenzia delle Entrate"}}
	s := mustNewDocumentStore(t, q)
	_, err := s.GetDocumentText(context.Background(), domain.DocumentContext{CaseID: "case-1"})
	require.NoError(t, err)
	require.Equal(t, documentTextByCaseSQL, q.lastSQL)
	require.Equal(t, []any{"case-1"}, q.lastArgs)
}

func TestGetDocumentText_ByPraticaID(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{val: "x"}}
	s := mustNewDocumentStore(t, q)
	_, err := s.GetDocumentText(context.Background(), domain.DocumentContext{PraticaID: "pr-9"})
	require.NoError(t, err)
	require.Equal(t, []any{"pr-9"}, q.lastArgs)
}

func TestGetDocumentText_NoIdentifierSkipsQuery(t *testing.T) {
	q := &fakeQuerier{}
	s := mustNewDocumentStore(t, q)
	text, err := s.GetDocumentText(context.Background(), domain.DocumentContext{CaseID: "  "})
	require.NoError(t, err)
	require.Empty(t, text)
	require.Zero(t, q.calls)
}

func TestGetDocumentText_NoRowsIsEmpty(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
	s := mustNewDocumentStore(t, q)
	text, err := s.GetDocumentText(context.Background(), domain.DocumentContext{DocumentID: "doc-1"})
	require.NoError(t, err)
	require.Empty(t, text)
}

func TestGetDocumentText_QueryError(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: errors.New("connection reset")}}
	s := mustNewDocumentStore(t, q)
	_, err := s.GetDocumentText(context.Background(), domain.DocumentContext{DocumentID: "doc-1"})
	require.ErrorContains(t, err, "GetDocumentText")
	require.ErrorContains(t, err, "connection reset")
}

func TestNewDocumentStore_NilDB(t *testing.T) {
	_, err := NewDocumentStore(nil)
	require.ErrorContains(t, err, "must not be nil")
}
