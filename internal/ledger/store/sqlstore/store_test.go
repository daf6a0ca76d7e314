package sqlstore_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/ledger/store/sqlstore"
)

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	s := sqlstore.New(db, sqlstore.SQLite)
	require.NoError(t, s.Migrate(context.Background()))

	return s
}

func TestStore_EmptyLoad(t *testing.T) {
	book, err := newStore(t).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, book.Records)
	assert.Empty(t, book.Customers)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	poster := ledger.NewPoster()
	book := &ledger.Book{Customers: []ledger.Customer{{ID: "cust-c", Name: "Carlos"}}}

	recs, err := poster.Post(book, ledger.PostParams{
		Type:       ledger.TypeIncome,
		CustomerID: "cust-c",
		CurrencyID: "usd",
		Amount:     decimal.RequireFromString("12.30"),
	})
	require.NoError(t, err)

	book.Records = recs
	require.NoError(t, s.Save(ctx, book))

	book.Customers = append(book.Customers, ledger.Customer{ID: "cust-d"})
	require.NoError(t, s.Save(ctx, book))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	assert.Equal(t, recs[0].ID, got.Records[0].ID)
	assert.Equal(t, "12.3", got.Records[0].Amount.String())
	assert.Len(t, got.Customers, 2)
}

func TestStore_MigrateIsRepeatable(t *testing.T) {
	s := newStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}
