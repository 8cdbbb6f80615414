package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type openTx struct{}

func (openTx) IsOpen() bool                   { return true }
func (openTx) Commit(context.Context) error   { return nil }
func (openTx) Rollback(context.Context) error { return nil }
func (openTx) Rebind(query string) string     { return query }
func (openTx) ExecContext(context.Context, string, ...any) (sql.Result, error) { return nil, nil }
func (openTx) GetContext(context.Context, any, string, ...any) error           { return nil }
func (openTx) SelectContext(context.Context, any, string, ...any) error        { return nil }
func (openTx) QueryxContext(context.Context, string, ...any) (*sqlx.Rows, error) {
	return nil, nil
}
func (openTx) NamedExecContext(context.Context, string, any) (sql.Result, error) {
	return nil, nil
}

// unreachableDB fails any attempt to begin a transaction, so a test passes
// only when GetTx takes the context-reuse path
type unreachableDB struct{}

func (d *unreachableDB) BeginTxx(context.Context, *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, errors.New("no database")
}
func (d *unreachableDB) Close() error                        { return nil }
func (d *unreachableDB) PingContext(context.Context) error   { return nil }
func (d *unreachableDB) Rebind(query string) string          { return query }
func (d *unreachableDB) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, nil
}
func (d *unreachableDB) GetContext(context.Context, any, string, ...any) error    { return nil }
func (d *unreachableDB) SelectContext(context.Context, any, string, ...any) error { return nil }
func (d *unreachableDB) QueryxContext(context.Context, string, ...any) (*sqlx.Rows, error) {
	return nil, nil
}
func (d *unreachableDB) NamedExecContext(context.Context, string, any) (sql.Result, error) {
	return nil, nil
}
func (d *unreachableDB) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Tx, error) {
	return GetTx(ctx, nopLogger(), d, opts)
}

func TestGetTx_ReusesOpenContextTransaction(t *testing.T) {
	tx := openTx{}
	ctx := context.WithValue(context.Background(), txStatusKey, "open")
	ctx = context.WithValue(ctx, txKey, Tx(tx))

	gotCtx, got, err := GetTx(ctx, nopLogger(), &unreachableDB{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Tx(tx), got)
	assert.Equal(t, ctx, gotCtx)
}

func TestTransactionRollback_LeftForContextOwner(t *testing.T) {
	tx := &Transaction{logger: nopLogger()}

	// a context carrying the open status belongs to whoever began the
	// transaction; Rollback must not close it from underneath them
	ctx := context.WithValue(context.Background(), txStatusKey, "open")
	require.NoError(t, tx.Rollback(ctx))
	assert.True(t, tx.IsOpen())
}

func TestTransactionRollback_NoopWhenClosed(t *testing.T) {
	tx := &Transaction{logger: nopLogger(), isClosed: true}
	require.NoError(t, tx.Rollback(context.Background()))
	require.NoError(t, tx.Commit(context.Background()))
}
