package ledger

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Customer is a counterparty records are posted against.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Measure says how a product is counted.
type Measure string

const (
	MeasureWeight Measure = "weight"
	MeasureCount  Measure = "count"
)

// ProductType is a kind of goods moved through the warehouse.
type ProductType struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Measure   Measure    `json:"measure"`
	BaseUnit  WeightUnit `json:"baseUnit,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Currency is a currency amounts are recorded in. Code is ISO 4217.
type Currency struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// BankAccount is a treasury account holding a single currency.
type BankAccount struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CurrencyID string    `json:"currencyId"`
	IBAN       string    `json:"iban,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CounterpartyRule maps a raw bank description pattern to a customer.
type CounterpartyRule struct {
	Pattern    string    `json:"pattern"`
	CustomerID string    `json:"customerId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Book is the whole persisted dataset: the records plus the reference
// tables they point to. It is loaded and saved as one unit.
type Book struct {
	Records           []Record           `json:"records"`
	Customers         []Customer         `json:"customers"`
	ProductTypes      []ProductType      `json:"productTypes"`
	Currencies        []Currency         `json:"currencies"`
	BankAccounts      []BankAccount      `json:"bankAccounts"`
	CounterpartyRules []CounterpartyRule `json:"counterpartyRules"`
}

// Clone copies every table so callers can change the copy freely.
func (b *Book) Clone() *Book {
	if b == nil {
		return &Book{}
	}

	return &Book{
		Records:           slices.Clone(b.Records),
		Customers:         slices.Clone(b.Customers),
		ProductTypes:      slices.Clone(b.ProductTypes),
		Currencies:        slices.Clone(b.Currencies),
		BankAccounts:      slices.Clone(b.BankAccounts),
		CounterpartyRules: slices.Clone(b.CounterpartyRules),
	}
}

func (b *Book) Record(id uuid.UUID) (Record, bool) {
	for _, r := range b.Records {
		if r.ID == id {
			return r, true
		}
	}

	return Record{}, false
}

// Children returns the records posted under the given main document in
// document-number order.
func (b *Book) Children(parentID uuid.UUID) []Record {
	var out []Record

	for _, r := range b.Records {
		if r.ParentDocumentID != nil && *r.ParentDocumentID == parentID {
			out = append(out, r)
		}
	}

	slices.SortStableFunc(out, func(a, b Record) int {
		return compareDocumentNumbers(a.DocumentNumber, b.DocumentNumber)
	})

	return out
}

func (b *Book) BankAccount(id string) (BankAccount, bool) {
	for _, a := range b.BankAccounts {
		if a.ID == id {
			return a, true
		}
	}

	return BankAccount{}, false
}

func (b *Book) Customer(id string) (Customer, bool) {
	for _, c := range b.Customers {
		if c.ID == id {
			return c, true
		}
	}

	return Customer{}, false
}

func (b *Book) Currency(id string) (Currency, bool) {
	for _, c := range b.Currencies {
		if c.ID == id {
			return c, true
		}
	}

	return Currency{}, false
}

func (b *Book) ProductType(id string) (ProductType, bool) {
	for _, p := range b.ProductTypes {
		if p.ID == id {
			return p, true
		}
	}

	return ProductType{}, false
}

// AccountKind distinguishes the places balances can be derived for.
type AccountKind string

const (
	AccountCustomer  AccountKind = "customer"
	AccountCashBox   AccountKind = "cash_box"
	AccountWarehouse AccountKind = "warehouse"
	AccountBank      AccountKind = "bank"
)

// Account is anything a balance can be derived for.
type Account struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Kind AccountKind `json:"kind"`
}

// Accounts lists the cash box, the warehouse, every bank account and every
// customer, in that order.
func (b *Book) Accounts() []Account {
	accounts := []Account{
		{ID: CashBox, Name: "Cash box", Kind: AccountCashBox},
		{ID: Warehouse, Name: "Warehouse", Kind: AccountWarehouse},
	}

	for _, a := range b.BankAccounts {
		accounts = append(accounts, Account{ID: a.ID, Name: a.Name, Kind: AccountBank})
	}

	for _, c := range b.Customers {
		accounts = append(accounts, Account{ID: c.ID, Name: c.Name, Kind: AccountCustomer})
	}

	return accounts
}
