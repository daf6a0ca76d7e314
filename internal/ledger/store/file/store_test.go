package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/ledger/store/file"
)

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s := file.New(filepath.Join(t.TempDir(), "book.json"))

	book, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, book.Records)
}

func TestStore_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "book.json")
	s := file.New(path)
	ctx := context.Background()

	mainID := uuid.New()
	book := &ledger.Book{
		Records: []ledger.Record{
			{
				ID:             mainID,
				DocumentNumber: "2024-0001",
				Type:           ledger.TypeCashIn,
				CustomerID:     "cust-c",
				Amount:         decimal.RequireFromString("-500"),
				Date:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				IsMainDocument: true,
			},
			{
				ID:               uuid.New(),
				DocumentNumber:   "2024-0001-1",
				Type:             ledger.TypeCashIn,
				Weight:           decimal.NewNullDecimal(decimal.RequireFromString("1.25")),
				WeightUnit:       ledger.UnitKilogram,
				ParentDocumentID: &mainID,
				Role:             ledger.RoleCustomerLeg,
			},
		},
		Customers: []ledger.Customer{{ID: "cust-c", Name: "Carlos"}},
	}

	require.NoError(t, s.Save(ctx, book))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Records, 2)
	assert.Equal(t, "2024-0001", got.Records[0].DocumentNumber)
	assert.True(t, got.Records[0].Amount.Equal(decimal.RequireFromString("-500")))
	assert.Equal(t, mainID, *got.Records[1].ParentDocumentID)
	assert.Equal(t, ledger.RoleCustomerLeg, got.Records[1].Role)
	assert.True(t, got.Records[1].Weight.Valid)
	assert.False(t, got.Records[1].Quantity.Valid)
	assert.Equal(t, book.Customers, got.Customers)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestStore_SaveReplaces(t *testing.T) {
	s := file.New(filepath.Join(t.TempDir(), "book.json"))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &ledger.Book{Customers: []ledger.Customer{{ID: "a"}, {ID: "b"}}}))
	require.NoError(t, s.Save(ctx, &ledger.Book{Customers: []ledger.Customer{{ID: "c"}}}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Customers, 1)
	assert.Equal(t, "c", got.Customers[0].ID)
}

func TestStore_RejectsUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"records":[{"type":"barter"}]}`), 0o600))

	_, err := file.New(path).Load(context.Background())
	assert.ErrorIs(t, err, ledger.ErrUnknownType)
}
