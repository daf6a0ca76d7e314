// Package statement writes per-account statements: one CSV per account with
// running balances, plus a plain-text summary.
package statement

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

// Ledger is the part of *ledger.Service statements are built from.
type Ledger interface {
	Accounts(ctx context.Context) ([]ledger.Account, error)
	Statement(ctx context.Context, accountID string, unit ledger.WeightUnit) ([]ledger.StatementLine, error)
	Snapshot(ctx context.Context) (*ledger.Book, error)
}

type Request struct {
	// AccountIDs limits the export; empty means every account that moved.
	AccountIDs []string
	StartDate  *time.Time
	EndDate    *time.Time
	Unit       ledger.WeightUnit
}

// Item is the statement of one account.
type Item struct {
	Account ledger.Account
	// Opening holds the balances before StartDate.
	Opening  ledger.Balances
	Lines    []ledger.StatementLine
	Closing  ledger.Balances
	FilePath string
}

type Service struct {
	ledger Ledger
}

func NewService(l Ledger) *Service {
	return &Service{ledger: l}
}

// Build derives the statements without writing anything.
func (s *Service) Build(ctx context.Context, req Request) ([]Item, error) {
	accounts, err := s.ledger.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	if len(req.AccountIDs) > 0 {
		accounts = slices.DeleteFunc(accounts, func(a ledger.Account) bool {
			return !slices.Contains(req.AccountIDs, a.ID)
		})

		if len(accounts) != len(req.AccountIDs) {
			return nil, fmt.Errorf("some of the requested accounts: %w", ledger.ErrNotFound)
		}
	}

	items := make([]Item, 0, len(accounts))

	for _, a := range accounts {
		lines, err := s.ledger.Statement(ctx, a.ID, req.Unit)
		if err != nil {
			return nil, fmt.Errorf("statement for %s: %w", a.ID, err)
		}

		item := window(a, lines, req.StartDate, req.EndDate)
		if len(req.AccountIDs) == 0 && len(item.Lines) == 0 {
			continue
		}

		items = append(items, item)
	}

	return items, nil
}

// window keeps the lines inside the date range. Balances before the range
// become the opening balances.
func window(a ledger.Account, lines []ledger.StatementLine, start, end *time.Time) Item {
	item := Item{
		Account: a,
		Opening: emptyBalances(),
		Lines:   []ledger.StatementLine{},
		Closing: emptyBalances(),
	}

	for _, l := range lines {
		r := l.Record

		if end != nil && r.Date.After(*end) {
			break
		}

		before := start != nil && r.Date.Before(*start)

		track(item.Closing.Cash, r.CurrencyID, l.Cash, l.CashDelta)
		track(item.Closing.Products, r.ProductTypeID, l.Goods, l.GoodsDelta)

		if before {
			track(item.Opening.Cash, r.CurrencyID, l.Cash, l.CashDelta)
			track(item.Opening.Products, r.ProductTypeID, l.Goods, l.GoodsDelta)

			continue
		}

		item.Lines = append(item.Lines, l)
	}

	return item
}

// track records the running value of key once it has moved at least once.
func track(m map[string]decimal.Decimal, key string, running, delta decimal.Decimal) {
	if key == "" {
		return
	}

	if _, ok := m[key]; ok || !delta.IsZero() {
		m[key] = running
	}
}

func emptyBalances() ledger.Balances {
	return ledger.Balances{
		Cash:     make(map[string]decimal.Decimal),
		Products: make(map[string]decimal.Decimal),
	}
}

// Export builds the statements and writes one CSV per account into outputDir.
func (s *Service) Export(ctx context.Context, req Request, outputDir string) ([]Item, error) {
	items, err := s.Build(ctx, req)
	if err != nil {
		return nil, err
	}

	book, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading reference data: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	for i := range items {
		path := filepath.Join(outputDir, fileName(items[i].Account))

		if err := writeCSV(path, items[i], book); err != nil {
			return nil, fmt.Errorf("writing statement for %s: %w", items[i].Account.ID, err)
		}

		items[i].FilePath = path
	}

	return items, nil
}

var csvHeader = []string{
	"date", "document", "type", "description",
	"currency", "cash_delta", "cash_balance",
	"product", "goods_delta", "goods_balance",
}

func writeCSV(path string, item Item, book *ledger.Book) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, l := range item.Lines {
		r := l.Record

		row := []string{
			r.Date.Format(time.DateOnly),
			r.DocumentNumber,
			string(r.Type),
			r.Description,
			currencyCode(book, r.CurrencyID),
			l.CashDelta.String(),
			l.Cash.String(),
			productName(book, r.ProductTypeID),
			l.GoodsDelta.String(),
			l.Goods.String(),
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

// fileName is e.g. customer_carlos_silva.csv.
func fileName(a ledger.Account) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, strings.ToLower(a.Name))

	return fmt.Sprintf("%s_%s.csv", a.Kind, safe)
}

func currencyCode(book *ledger.Book, id string) string {
	if c, ok := book.Currency(id); ok {
		return c.Code
	}

	return id
}

func productName(book *ledger.Book, id string) string {
	if p, ok := book.ProductType(id); ok {
		return p.Name
	}

	return id
}

// Summary renders the closing balances of every item, one account per line:
//
//	* Carlos | -$500.00 | Copper 10 kg
func Summary(items []Item, book *ledger.Book, unit ledger.WeightUnit) string {
	var sb strings.Builder

	for _, item := range items {
		parts := []string{item.Account.Name}

		for _, id := range sortedKeys(item.Closing.Cash) {
			parts = append(parts, FormatAmount(item.Closing.Cash[id], currencyCode(book, id)))
		}

		for _, id := range sortedKeys(item.Closing.Products) {
			u := ""
			if p, ok := book.ProductType(id); ok && p.Measure == ledger.MeasureWeight {
				u = string(unit)
			}

			parts = append(parts, productName(book, id)+" "+FormatMeasure(item.Closing.Products[id], u))
		}

		if len(parts) == 1 {
			parts = append(parts, "no movements")
		}

		fmt.Fprintf(&sb, "* %s\n", strings.Join(parts, " | "))
	}

	return sb.String()
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
