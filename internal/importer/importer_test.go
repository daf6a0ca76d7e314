package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

func TestDrafts(t *testing.T) {
	date := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)

	lines := []importer.Line{
		{Date: date, Description: " TFI Wise ", Amount: decimal.RequireFromString("8608.52")},
		{Date: date, Description: "PAGAMENTO TSU", Amount: decimal.RequireFromString("-608.13")},
	}

	drafts := importer.Drafts(lines, importer.DraftOptions{
		AccountID:  "bank-eur",
		CurrencyID: "eur",
		Suggest: func(desc string) string {
			if strings.Contains(desc, "Wise") {
				return "cust-wise"
			}

			return ""
		},
	})
	require.Len(t, drafts, 2)

	assert.Equal(t, ledger.TypeCashIn, drafts[0].Type)
	assert.Equal(t, "8608.52", drafts[0].Amount.String())
	assert.Equal(t, "TFI Wise", drafts[0].Description)
	assert.Equal(t, "cust-wise", drafts[0].CustomerID)
	assert.Equal(t, "bank-eur", drafts[0].AccountID)
	assert.Equal(t, "eur", drafts[0].CurrencyID)

	assert.Equal(t, ledger.TypeCashOut, drafts[1].Type)
	assert.Equal(t, "608.13", drafts[1].Amount.String())
	assert.Empty(t, drafts[1].CustomerID)
	assert.Equal(t, date, drafts[1].Date)
}

func TestService_Import(t *testing.T) {
	csv := "Data mov.;Descrição;Montante\n30-01-2026;CAFE;-10,50\n"

	svc := importer.NewService()

	lines, err := svc.Import(importer.BankCGD, strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "CAFE", lines[0].Description)
	assert.Equal(t, "-10.5", lines[0].Amount.String())

	_, err = svc.Import("bpi", strings.NewReader(csv))
	assert.ErrorContains(t, err, "unknown bank")
}
