package statement_test

import (
	"context"
	"encoding/csv"
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
	"github.com/MrJamesThe3rd/tally/internal/statement"
)

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func seededLedger(t *testing.T) *ledger.Service {
	t.Helper()

	ctx := context.Background()
	repo := file.New(filepath.Join(t.TempDir(), "book.json"))

	require.NoError(t, repo.Save(ctx, &ledger.Book{
		Customers:    []ledger.Customer{{ID: "cust-c", Name: "Carlos Silva"}},
		Currencies:   []ledger.Currency{{ID: "usd", Code: "USD"}},
		ProductTypes: []ledger.ProductType{{ID: "copper", Name: "Copper", Measure: ledger.MeasureWeight}},
	}))

	poster := ledger.Poster{Now: func() time.Time { return day(10) }, NewID: uuid.New}
	svc := ledger.NewService(repo, ledger.WithPoster(poster))

	for _, p := range []ledger.PostParams{
		{Type: ledger.TypeProductSale, CustomerID: "cust-c", CurrencyID: "usd", Amount: decimal.NewFromInt(100), Date: day(1)},
		{Type: ledger.TypeProductPurchase, CustomerID: "cust-c", CurrencyID: "usd", ProductTypeID: "copper",
			Weight: decimal.NewNullDecimal(decimal.NewFromInt(10)), WeightUnit: ledger.UnitKilogram,
			Amount: decimal.NewFromInt(30), Date: day(5)},
	} {
		_, err := svc.Post(ctx, p)
		require.NoError(t, err)
	}

	return svc
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()
	l := seededLedger(t)
	svc := statement.NewService(l)
	dir := t.TempDir()

	items, err := svc.Export(ctx, statement.Request{StartDate: new(day(3))}, dir)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "cust-c", item.Account.ID)
	assert.Equal(t, "100", item.Opening.Cash["usd"].String())
	assert.Equal(t, "70", item.Closing.Cash["usd"].String())
	assert.Equal(t, "10", item.Closing.Products["copper"].String())
	require.Len(t, item.Lines, 1)

	assert.Equal(t, filepath.Join(dir, "customer_carlos_silva.csv"), item.FilePath)

	f, err := os.Open(item.FilePath)
	require.NoError(t, err)

	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, []string{"2024-06-05", "2024-0002", "product_purchase", "", "USD", "-30", "70", "Copper", "10", "10"}, rows[1])

	book, err := l.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, "* Carlos Silva | $70.00 | Copper 10 kg\n", statement.Summary(items, book, ledger.UnitKilogram))
}

func TestService_BuildUnknownAccount(t *testing.T) {
	svc := statement.NewService(seededLedger(t))

	_, err := svc.Build(context.Background(), statement.Request{AccountIDs: []string{"nobody"}})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_BuildExplicitEmptyAccount(t *testing.T) {
	svc := statement.NewService(seededLedger(t))

	items, err := svc.Build(context.Background(), statement.Request{AccountIDs: []string{ledger.CashBox}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Lines)
}

func TestFormatAmount(t *testing.T) {
	type testCase struct {
		name   string
		amount string
		code   string
		want   string
	}

	tests := []testCase{
		{name: "USD", amount: "1234.5", code: "USD", want: "$1,234.50"},
		{name: "Negative", amount: "-500", code: "usd", want: "-$500.00"},
		{name: "ZeroFractionCurrency", amount: "1500", code: "JPY", want: "¥1,500"},
		{name: "UnknownCode", amount: "12.345", code: "XYZ1", want: "12.35 XYZ1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statement.FormatAmount(decimal.RequireFromString(tt.amount), tt.code))
		})
	}
}
