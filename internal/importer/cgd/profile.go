package cgd

import "github.com/shopspring/decimal"

// Profile is one CGD export layout: the header columns that identify it and
// the reader that turns its amount columns into a signed movement.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountCols []string

	read amountReader
}

// amountReader gets the cells of AmountCols in order. Zero and unreadable
// amounts report false so the row is skipped.
type amountReader func(cells []string) (decimal.Decimal, bool)

var profiles = []Profile{
	// Card statements split debits and credits.
	{Name: "cartão", DateCol: "Data", DescCol: "Descrição", AmountCols: []string{"Débito", "Crédito"}, read: debitCredit},
	{Name: "extrato", DateCol: "Data mov.", DescCol: "Descrição", AmountCols: []string{"Movimento"}, read: signedAmount},
	{Name: "conta", DateCol: "Data mov.", DescCol: "Descrição", AmountCols: []string{"Montante"}, read: signedAmount},
}

func (p *Profile) requiredCols() []string {
	return append([]string{p.DateCol, p.DescCol}, p.AmountCols...)
}

func (p *Profile) amount(cols colIndex, row []string) (decimal.Decimal, bool) {
	cells := make([]string, len(p.AmountCols))
	for i, name := range p.AmountCols {
		cells[i] = cellValue(row, cols[name])
	}

	return p.read(cells)
}

func signedAmount(cells []string) (decimal.Decimal, bool) {
	return nonZero(cells[0])
}

// debitCredit makes debits negative whatever sign the bank wrote.
func debitCredit(cells []string) (decimal.Decimal, bool) {
	if amount, ok := nonZero(cells[0]); ok {
		return amount.Abs().Neg(), true
	}

	if amount, ok := nonZero(cells[1]); ok {
		return amount.Abs(), true
	}

	return decimal.Zero, false
}

func nonZero(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}

	amount, err := parseEuropeanAmount(s)
	if err != nil || amount.IsZero() {
		return decimal.Zero, false
	}

	return amount, true
}
