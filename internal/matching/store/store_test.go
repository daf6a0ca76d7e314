package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	"github.com/MrJamesThe3rd/tally/internal/matching/store"
)

type fakeRules struct {
	rules []ledger.CounterpartyRule
	err   error
}

func (f *fakeRules) CounterpartyRules(context.Context) ([]ledger.CounterpartyRule, error) {
	return f.rules, f.err
}

func (f *fakeRules) SaveCounterpartyRule(_ context.Context, pattern, customerID string) error {
	if f.err != nil {
		return f.err
	}

	f.rules = append(f.rules, ledger.CounterpartyRule{Pattern: pattern, CustomerID: customerID, CreatedAt: time.Now()})

	return nil
}

func TestStore_FindMatch(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 1, 0)

	rules := &fakeRules{rules: []ledger.CounterpartyRule{
		{Pattern: "wise", CustomerID: "cust-wise", CreatedAt: older},
		{Pattern: "TFI Wise", CustomerID: "cust-tfi", CreatedAt: older},
		{Pattern: "UBER", CustomerID: "cust-uber-old", CreatedAt: older},
		{Pattern: "uber", CustomerID: "cust-uber-new", CreatedAt: newer},
	}}

	type testCase struct {
		name string
		raw  string
		want string
	}

	tests := []testCase{
		{name: "LongestWins", raw: "TRF TFI WISE 0042", want: "cust-tfi"},
		{name: "ShortPattern", raw: "wise europe", want: "cust-wise"},
		{name: "NewestOnTie", raw: "UBER *TRIP", want: "cust-uber-new"},
		{name: "NoMatch", raw: "PAGAMENTO TSU", want: ""},
	}

	s := store.New(rules)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindMatch(context.Background(), tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_LearnThenSuggest(t *testing.T) {
	svc := matching.NewService(store.New(&fakeRules{}))
	ctx := context.Background()

	require.NoError(t, svc.Learn(ctx, "SUPERMERCADO", "cust-food"))
	assert.ErrorIs(t, svc.Learn(ctx, "  ", "cust-food"), matching.ErrEmptyPattern)

	got, err := svc.Suggest(ctx, "COMPRA supermercado LDA")
	require.NoError(t, err)
	assert.Equal(t, "cust-food", got)

	all := svc.SuggestAll(ctx, []string{"SUPERMERCADO X", "OTHER", "SUPERMERCADO X"})
	assert.Equal(t, map[string]string{"SUPERMERCADO X": "cust-food", "OTHER": ""}, all)
}

func TestStore_Errors(t *testing.T) {
	s := store.New(&fakeRules{err: errors.New("disk gone")})

	_, err := s.FindMatch(context.Background(), "x")
	assert.ErrorContains(t, err, "finding match")

	assert.ErrorContains(t, s.CreateMapping(context.Background(), "x", "y"), "creating mapping")
}
