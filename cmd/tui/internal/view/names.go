package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/statement"
)

// names resolves the ids stored on records to what users recognise.
type names struct {
	book *ledger.Book
}

func newNames(book *ledger.Book) names {
	if book == nil {
		book = &ledger.Book{}
	}

	return names{book: book}
}

func (n names) customer(id string) string {
	switch id {
	case ledger.CashBox:
		return "Cash box"
	case ledger.Warehouse:
		return "Warehouse"
	}

	if c, ok := n.book.Customer(id); ok {
		return c.Name
	}

	if a, ok := n.book.BankAccount(id); ok {
		return a.Name
	}

	return id
}

func (n names) currency(id string) string {
	if c, ok := n.book.Currency(id); ok {
		return c.Code
	}

	return id
}

func (n names) product(id string) string {
	if p, ok := n.book.ProductType(id); ok {
		return p.Name
	}

	return id
}

func (n names) amount(r ledger.Record) string {
	if r.Amount.IsZero() && r.CurrencyID == "" {
		return ""
	}

	return statement.FormatAmount(r.Amount, n.currency(r.CurrencyID))
}

// goods renders the measure of a record, e.g. "Copper 10 ton".
func (n names) goods(r ledger.Record) string {
	switch {
	case r.Weight.Valid:
		return n.product(r.ProductTypeID) + " " + statement.FormatMeasure(r.Weight.Decimal, string(r.WeightUnit))
	case r.Quantity.Valid:
		return n.product(r.ProductTypeID) + " " + statement.FormatMeasure(r.Quantity.Decimal, "")
	}

	return ""
}

func (n names) balance(currencyID string, v decimal.Decimal) string {
	return statement.FormatAmount(v, n.currency(currencyID))
}

func (n names) customerOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(n.book.Customers))
	for _, c := range n.book.Customers {
		opts = append(opts, huh.NewOption(c.Name, c.ID))
	}

	return opts
}

func (n names) currencyOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(n.book.Currencies))
	for _, c := range n.book.Currencies {
		opts = append(opts, huh.NewOption(c.Code, c.ID))
	}

	return opts
}

// treasuryOptions lists the cash box followed by every bank account.
func (n names) treasuryOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("Cash box", ledger.CashBox)}
	for _, a := range n.book.BankAccounts {
		opts = append(opts, huh.NewOption(a.Name+" ("+n.currency(a.CurrencyID)+")", a.ID))
	}

	return opts
}

func (n names) productOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, p := range n.book.ProductTypes {
		opts = append(opts, huh.NewOption(p.Name, p.ID))
	}

	return opts
}

func (n names) accountOptions() []huh.Option[string] {
	accounts := n.book.Accounts()

	opts := make([]huh.Option[string], 0, len(accounts))
	for _, a := range accounts {
		opts = append(opts, huh.NewOption(a.Name+" ["+string(a.Kind)+"]", a.ID))
	}

	return opts
}

func unitOptions() []huh.Option[string] {
	units := []ledger.WeightUnit{ledger.UnitKilogram, ledger.UnitTon, ledger.UnitGram, ledger.UnitPound, ledger.UnitMilligram}

	opts := make([]huh.Option[string], 0, len(units))
	for _, u := range units {
		opts = append(opts, huh.NewOption(string(u), string(u)))
	}

	return opts
}

func typeOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(ledger.Types))
	for _, t := range ledger.Types {
		opts = append(opts, huh.NewOption(string(t), string(t)))
	}

	return opts
}

type snapshotMsg struct {
	book *ledger.Book
	err  error
}

func snapshotCmd(svc *ledger.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		book, err := svc.Snapshot(ctx)

		return snapshotMsg{book: book, err: err}
	}
}
