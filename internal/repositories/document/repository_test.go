package document

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZETA-AI-ORG/onboard/pkg/database"
	"github.com/ZETA-AI-ORG/onboard/pkg/engine"
	"github.com/ZETA-AI-ORG/onboard/pkg/models"
)

type txOwnerKey string

// marker the stub GetTx stamps on the context it returns, standing in for
// the transaction-open status the real GetTx sets
const txOwnedMarker = txOwnerKey("tx-owned")

type execCall struct {
	query string
	args  []any
}

type stubTx struct {
	calls      []execCall
	failAtCall int // 1-based call index that errors, 0 never
	committed  bool
	rolledBack bool
	// context the rollback was invoked with carried the GetTx marker
	rolledBackOwnedCtx bool
}

func (t *stubTx) IsOpen() bool { return !t.committed && !t.rolledBack }

func (t *stubTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	if t.committed {
		return nil
	}
	t.rolledBack = true
	t.rolledBackOwnedCtx, _ = ctx.Value(txOwnedMarker).(bool)
	return nil
}

func (t *stubTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	t.calls = append(t.calls, execCall{query: query, args: args})
	if t.failAtCall == len(t.calls) {
		return nil, errors.New("exec failed")
	}
	return nil, nil
}

func (t *stubTx) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}

func (t *stubTx) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}

func (t *stubTx) QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	return nil, nil
}

func (t *stubTx) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	return nil, nil
}

func (t *stubTx) Rebind(query string) string { return query }

type stubDB struct {
	tx *stubTx
}

func (d *stubDB) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error) {
	return context.WithValue(ctx, txOwnedMarker, true), d.tx, nil
}

func (d *stubDB) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, nil
}

func (d *stubDB) Close() error { return nil }

func (d *stubDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, nil
}

func (d *stubDB) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}

func (d *stubDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}

func (d *stubDB) QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	return nil, nil
}

func (d *stubDB) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	return nil, nil
}

func (d *stubDB) PingContext(ctx context.Context) error { return nil }

func (d *stubDB) Rebind(query string) string { return query }

func newStubRepository(tx *stubTx) *Repository {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewRepository(&stubDB{tx: tx}, logger)
}

func testDoc(id, content string) models.DerivedDocument {
	return models.DerivedDocument{
		Content:  content,
		FileName: id + ".txt",
		Metadata: map[string]any{"id": id, "type": models.DocTypeCompany},
	}
}

func TestDedupeByDocID(t *testing.T) {
	docs := []models.DerivedDocument{
		testDoc("widget", "first"),
		testDoc("faq", "questions"),
		testDoc("widget", "second"),
	}

	out := dedupeByDocID(docs)
	require.Len(t, out, 2)
	assert.Equal(t, "widget", out[0].ID())
	assert.Equal(t, "second", out[0].Content, "later document wins")
	assert.Equal(t, "faq", out[1].ID())

	unique := []models.DerivedDocument{testDoc("a", "1"), testDoc("b", "2")}
	assert.Equal(t, unique, dedupeByDocID(unique))
}

func TestReplaceBatch_DeduplicatesDocIDs(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	e := engine.NewEngine(logger, "")

	// two catalogue entries with the same name and variant derive the same
	// document id; the batch must still store cleanly
	record := &models.OnboardingRecord{
		CompanyID: "acme",
		Catalogue: []models.Product{
			{Name: "Widget", Variants: []models.Variant{{Name: "Small", Price: 1000}}},
			{Name: "Widget", Variants: []models.Variant{{Name: "Small", Price: 1000}}},
		},
	}

	batch, err := e.Derive(context.Background(), record)
	require.NoError(t, err)
	require.Len(t, batch.Documents, 2)
	require.Equal(t, batch.Documents[0].ID(), batch.Documents[1].ID())

	tx := &stubTx{}
	repo := newStubRepository(tx)
	require.NoError(t, repo.ReplaceBatch(context.Background(), batch))

	// purge, then a single insert carrying one row
	require.Len(t, tx.calls, 2)
	assert.Contains(t, tx.calls[0].query, "DELETE FROM derived_documents")
	assert.Contains(t, tx.calls[1].query, "INSERT INTO derived_documents")
	assert.Len(t, tx.calls[1].args, 9, "one row of column values")
	assert.True(t, tx.committed)
}

func TestReplaceBatch_RollsBackOnInsertFailure(t *testing.T) {
	batch := &models.DeriveResult{
		CompanyID:      "acme",
		Documents:      []models.DerivedDocument{testDoc("widget", "doc")},
		PurgeBefore:    true,
		ProcessedCount: 1,
	}

	tx := &stubTx{failAtCall: 2}
	repo := newStubRepository(tx)
	require.Error(t, repo.ReplaceBatch(context.Background(), batch))

	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack, "a failed batch must release its transaction")
	assert.False(t, tx.rolledBackOwnedCtx, "rollback must use the caller's context, not the one marking the transaction open")
}

func TestReplaceBatch_CommitSurvivesDeferredRollback(t *testing.T) {
	batch := &models.DeriveResult{
		CompanyID:      "acme",
		Documents:      []models.DerivedDocument{testDoc("widget", "doc")},
		PurgeBefore:    true,
		ProcessedCount: 1,
	}

	tx := &stubTx{}
	repo := newStubRepository(tx)
	require.NoError(t, repo.ReplaceBatch(context.Background(), batch))

	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}
