package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

// SeedFile is the TOML layout accepted by "ledgerctl seed":
//
//	[[currencies]]
//	code = "EUR"
//	name = "Euro"
//
//	[[customers]]
//	name = "Carlos Silva"
//
//	[[bank_accounts]]
//	name = "Main EUR"
//	currency = "EUR"
//
//	[[product_types]]
//	name = "Copper"
//	measure = "weight"
type SeedFile struct {
	Currencies []struct {
		Code string `toml:"code"`
		Name string `toml:"name"`
	} `toml:"currencies"`

	Customers []struct {
		Name  string `toml:"name"`
		Phone string `toml:"phone"`
		Notes string `toml:"notes"`
	} `toml:"customers"`

	BankAccounts []struct {
		Name string `toml:"name"`
		// Currency is an ISO code from the currencies table.
		Currency string `toml:"currency"`
		IBAN     string `toml:"iban"`
	} `toml:"bank_accounts"`

	ProductTypes []struct {
		Name     string `toml:"name"`
		Measure  string `toml:"measure"`
		BaseUnit string `toml:"base_unit"`
	} `toml:"product_types"`
}

type SeedResult struct {
	Currencies   int
	Customers    int
	BankAccounts int
	ProductTypes int
	// Skipped counts entries that already existed.
	Skipped int
}

// Seeder is the part of *ledger.Service seeding writes through.
type Seeder interface {
	ListCurrencies(ctx context.Context) ([]ledger.Currency, error)
	ListCustomers(ctx context.Context) ([]ledger.Customer, error)
	ListBankAccounts(ctx context.Context) ([]ledger.BankAccount, error)
	ListProductTypes(ctx context.Context) ([]ledger.ProductType, error)
	CreateCurrency(ctx context.Context, params ledger.CreateCurrencyParams) (*ledger.Currency, error)
	CreateCustomer(ctx context.Context, params ledger.CreateCustomerParams) (*ledger.Customer, error)
	CreateBankAccount(ctx context.Context, params ledger.CreateBankAccountParams) (*ledger.BankAccount, error)
	CreateProductType(ctx context.Context, params ledger.CreateProductTypeParams) (*ledger.ProductType, error)
}

// Seed decodes a SeedFile from r and creates what is missing. Entries are
// matched by currency code or by name, so running it twice adds nothing.
func Seed(ctx context.Context, svc Seeder, r io.Reader) (SeedResult, error) {
	var (
		file SeedFile
		res  SeedResult
	)

	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return res, fmt.Errorf("decoding seed file: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return res, fmt.Errorf("unknown keys in seed file: %v", undecoded)
	}

	currencies, err := svc.ListCurrencies(ctx)
	if err != nil {
		return res, err
	}

	byCode := make(map[string]string, len(currencies))
	for _, c := range currencies {
		byCode[c.Code] = c.ID
	}

	for _, c := range file.Currencies {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if _, ok := byCode[code]; ok {
			res.Skipped++
			continue
		}

		created, err := svc.CreateCurrency(ctx, ledger.CreateCurrencyParams{Code: code, Name: c.Name})
		if err != nil {
			return res, err
		}

		byCode[created.Code] = created.ID
		res.Currencies++
	}

	customers, err := svc.ListCustomers(ctx)
	if err != nil {
		return res, err
	}

	known := names(customers, func(c ledger.Customer) string { return c.Name })

	for _, c := range file.Customers {
		if known[strings.ToLower(strings.TrimSpace(c.Name))] {
			res.Skipped++
			continue
		}

		if _, err := svc.CreateCustomer(ctx, ledger.CreateCustomerParams{Name: c.Name, Phone: c.Phone, Notes: c.Notes}); err != nil {
			return res, err
		}

		res.Customers++
	}

	banks, err := svc.ListBankAccounts(ctx)
	if err != nil {
		return res, err
	}

	known = names(banks, func(a ledger.BankAccount) string { return a.Name })

	for _, a := range file.BankAccounts {
		if known[strings.ToLower(strings.TrimSpace(a.Name))] {
			res.Skipped++
			continue
		}

		currencyID, ok := byCode[strings.ToUpper(a.Currency)]
		if !ok {
			return res, fmt.Errorf("bank account %q: currency %q: %w", a.Name, a.Currency, ledger.ErrNotFound)
		}

		if _, err := svc.CreateBankAccount(ctx, ledger.CreateBankAccountParams{
			Name:       a.Name,
			CurrencyID: currencyID,
			IBAN:       a.IBAN,
		}); err != nil {
			return res, err
		}

		res.BankAccounts++
	}

	products, err := svc.ListProductTypes(ctx)
	if err != nil {
		return res, err
	}

	known = names(products, func(p ledger.ProductType) string { return p.Name })

	for _, p := range file.ProductTypes {
		if known[strings.ToLower(strings.TrimSpace(p.Name))] {
			res.Skipped++
			continue
		}

		measure := ledger.Measure(p.Measure)
		if measure != ledger.MeasureWeight && measure != ledger.MeasureCount {
			return res, fmt.Errorf("product type %q: measure must be weight or count", p.Name)
		}

		params := ledger.CreateProductTypeParams{Name: p.Name, Measure: measure}

		if p.BaseUnit != "" {
			u, err := ledger.ParseWeightUnit(p.BaseUnit)
			if err != nil {
				return res, fmt.Errorf("product type %q: %w", p.Name, err)
			}

			params.BaseUnit = u
		}

		if _, err := svc.CreateProductType(ctx, params); err != nil {
			return res, err
		}

		res.ProductTypes++
	}

	return res, nil
}

func names[T any](items []T, name func(T) string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[strings.ToLower(strings.TrimSpace(name(it)))] = true
	}

	return out
}

func newSeedCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE.toml",
		Short: "Create currencies, customers, bank accounts and product types from a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: run(open, func(cmd *cobra.Command, a *app.App, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := Seed(cmd.Context(), a.Ledger, f)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"added %d currencies, %d customers, %d bank accounts, %d product types (%d already present)\n",
				res.Currencies, res.Customers, res.BankAccounts, res.ProductTypes, res.Skipped)

			return nil
		}),
	}
}
