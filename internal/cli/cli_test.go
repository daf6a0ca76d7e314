package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/cli"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

const seedTOML = `
[[currencies]]
code = "usd"
name = "US Dollar"

[[currencies]]
code = "EUR"
name = "Euro"

[[customers]]
name = "Carlos"

[[bank_accounts]]
name = "Main EUR"
currency = "EUR"
iban = "PT50 0000 0000"

[[product_types]]
name = "Copper"
measure = "weight"
`

func opener(t *testing.T) cli.Opener {
	t.Helper()

	cfg := &config.Config{}
	cfg.Store.Driver = config.DriverFile
	cfg.Store.Path = filepath.Join(t.TempDir(), "book.json")
	cfg.Ledger.BaseWeightUnit = "kg"

	return func(ctx context.Context) (*app.App, error) {
		return app.New(ctx, cfg)
	}
}

func execute(t *testing.T, open cli.Opener, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := cli.NewRootCmd(open)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func TestSeed(t *testing.T) {
	open := opener(t)
	ctx := context.Background()

	a, err := open(ctx)
	require.NoError(t, err)

	res, err := cli.Seed(ctx, a.Ledger, strings.NewReader(seedTOML))
	require.NoError(t, err)
	assert.Equal(t, cli.SeedResult{Currencies: 2, Customers: 1, BankAccounts: 1, ProductTypes: 1}, res)

	banks, err := a.Ledger.ListBankAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, banks, 1)
	assert.Equal(t, "PT5000000000", banks[0].IBAN)

	products, err := a.Ledger.ListProductTypes(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, ledger.UnitKilogram, products[0].BaseUnit)

	res, err = cli.Seed(ctx, a.Ledger, strings.NewReader(seedTOML))
	require.NoError(t, err)
	assert.Equal(t, cli.SeedResult{Skipped: 5}, res)
}

func TestSeed_Errors(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		wantErr string
	}

	tests := []testCase{
		{
			name:    "unknown key",
			input:   "[[customers]]\nname = \"A\"\nemail = \"a@b\"\n",
			wantErr: "unknown keys",
		},
		{
			name:    "bank with unknown currency",
			input:   "[[bank_accounts]]\nname = \"X\"\ncurrency = \"GBP\"\n",
			wantErr: "not found",
		},
		{
			name:    "bad measure",
			input:   "[[product_types]]\nname = \"Iron\"\nmeasure = \"volume\"\n",
			wantErr: "measure must be weight or count",
		},
		{
			name:    "not toml",
			input:   "[[customers",
			wantErr: "decoding seed file",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := opener(t)(context.Background())
			require.NoError(t, err)

			_, err = cli.Seed(context.Background(), a.Ledger, strings.NewReader(tc.input))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestCommands(t *testing.T) {
	open := opener(t)
	ctx := context.Background()

	seedPath := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedTOML), 0o644))

	out, err := execute(t, open, "seed", seedPath)
	require.NoError(t, err)
	assert.Contains(t, out, "added 2 currencies, 1 customers, 1 bank accounts, 1 product types")

	a, err := open(ctx)
	require.NoError(t, err)

	customers, err := a.Ledger.ListCustomers(ctx)
	require.NoError(t, err)

	currencies, err := a.Ledger.ListCurrencies(ctx)
	require.NoError(t, err)

	usd := currencies[0].ID

	_, err = a.Ledger.Post(ctx, ledger.PostParams{
		Type:        ledger.TypeCashIn,
		CustomerID:  customers[0].ID,
		CurrencyID:  usd,
		Amount:      decimal.NewFromInt(500),
		Description: "deposit",
	})
	require.NoError(t, err)

	out, err = execute(t, open, "balances", ledger.CashBox)
	require.NoError(t, err)
	assert.Contains(t, out, "$500.00")

	out, err = execute(t, open, "balances", customers[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "-$500.00")

	out, err = execute(t, open, "documents")
	require.NoError(t, err)
	assert.Contains(t, out, "cash_in")
	assert.Contains(t, out, "deposit")

	out, err = execute(t, open, "repair", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "0 orphaned records")

	_, err = execute(t, open, "balances", "nobody")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = execute(t, open, "balances", ledger.CashBox, "--unit", "stone")
	assert.Error(t, err)
}
