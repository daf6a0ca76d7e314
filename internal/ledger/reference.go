package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type CreateCustomerParams struct {
	Name  string
	Phone string
	Notes string
}

type CreateCurrencyParams struct {
	Code string
	Name string
}

type CreateBankAccountParams struct {
	Name       string
	CurrencyID string
	IBAN       string
}

type CreateProductTypeParams struct {
	Name     string
	Measure  Measure
	BaseUnit WeightUnit
}

// update loads the book, lets fn change it and saves it. Nothing is written
// when fn fails.
func (s *Service) update(ctx context.Context, fn func(*Book) error) error {
	book, err := s.load(ctx)
	if err != nil {
		return err
	}

	if err := fn(book); err != nil {
		return err
	}

	return s.save(ctx, book)
}

func (s *Service) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error) {
	c := Customer{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(params.Name),
		Phone:     params.Phone,
		Notes:     params.Notes,
		CreatedAt: s.poster.Now(),
	}

	err := s.update(ctx, func(b *Book) error {
		b.Customers = append(b.Customers, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return book.Customers, nil
}

func (s *Service) CreateCurrency(ctx context.Context, params CreateCurrencyParams) (*Currency, error) {
	c := Currency{
		ID:        uuid.NewString(),
		Code:      strings.ToUpper(strings.TrimSpace(params.Code)),
		Name:      params.Name,
		CreatedAt: s.poster.Now(),
	}

	err := s.update(ctx, func(b *Book) error {
		for _, existing := range b.Currencies {
			if existing.Code == c.Code {
				return fmt.Errorf("currency %s: %w", c.Code, ErrDuplicate)
			}
		}

		b.Currencies = append(b.Currencies, c)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Service) ListCurrencies(ctx context.Context) ([]Currency, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return book.Currencies, nil
}

// CreateBankAccount adds a treasury account. The currency must already be in
// the book.
func (s *Service) CreateBankAccount(ctx context.Context, params CreateBankAccountParams) (*BankAccount, error) {
	a := BankAccount{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(params.Name),
		CurrencyID: params.CurrencyID,
		IBAN:       strings.ReplaceAll(params.IBAN, " ", ""),
		CreatedAt:  s.poster.Now(),
	}

	err := s.update(ctx, func(b *Book) error {
		if _, ok := b.Currency(a.CurrencyID); !ok {
			return fmt.Errorf("currency %q: %w", a.CurrencyID, ErrNotFound)
		}

		b.BankAccounts = append(b.BankAccounts, a)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (s *Service) ListBankAccounts(ctx context.Context) ([]BankAccount, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return book.BankAccounts, nil
}

func (s *Service) CreateProductType(ctx context.Context, params CreateProductTypeParams) (*ProductType, error) {
	p := ProductType{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(params.Name),
		Measure:   params.Measure,
		CreatedAt: s.poster.Now(),
	}

	if p.Measure == MeasureWeight {
		p.BaseUnit = params.BaseUnit
		if p.BaseUnit == "" {
			p.BaseUnit = s.baseUnit
		}
	}

	err := s.update(ctx, func(b *Book) error {
		b.ProductTypes = append(b.ProductTypes, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Service) ListProductTypes(ctx context.Context) ([]ProductType, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return book.ProductTypes, nil
}

// SaveCounterpartyRule stores a pattern for a customer, replacing an earlier
// rule with the same pattern.
func (s *Service) SaveCounterpartyRule(ctx context.Context, pattern, customerID string) error {
	pattern = strings.TrimSpace(pattern)

	return s.update(ctx, func(b *Book) error {
		rules := b.CounterpartyRules[:0]

		for _, r := range b.CounterpartyRules {
			if !strings.EqualFold(r.Pattern, pattern) {
				rules = append(rules, r)
			}
		}

		b.CounterpartyRules = append(rules, CounterpartyRule{
			Pattern:    pattern,
			CustomerID: customerID,
			CreatedAt:  s.poster.Now(),
		})

		return nil
	})
}

func (s *Service) CounterpartyRules(ctx context.Context) ([]CounterpartyRule, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return book.CounterpartyRules, nil
}
