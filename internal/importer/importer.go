// Package importer reads bank statement exports into ledger cash movements.
package importer

import (
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type Bank string

const (
	BankCGD Bank = "cgd"
)

// Line is one movement read from a bank export. Amount is positive for
// credits and negative for debits.
type Line struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}

type Importer interface {
	Parse(r io.Reader) ([]Line, error)
}

// DraftOptions are applied to every draft built from a statement.
type DraftOptions struct {
	AccountID  string
	CurrencyID string
	// Suggest returns a customer id for a raw description, or "".
	Suggest func(description string) string
}

// Drafts turns statement lines into cash movement params: credits become
// cash_in and debits cash_out, both against the given account.
func Drafts(lines []Line, opts DraftOptions) []ledger.PostParams {
	drafts := make([]ledger.PostParams, 0, len(lines))

	for _, l := range lines {
		typ := ledger.TypeCashIn
		if l.Amount.IsNegative() {
			typ = ledger.TypeCashOut
		}

		d := ledger.PostParams{
			Type:        typ,
			AccountID:   opts.AccountID,
			CurrencyID:  opts.CurrencyID,
			Amount:      l.Amount.Abs(),
			Date:        l.Date,
			Description: strings.TrimSpace(l.Description),
		}

		if opts.Suggest != nil {
			d.CustomerID = opts.Suggest(l.Description)
		}

		drafts = append(drafts, d)
	}

	return drafts
}
