package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type is the kind of movement a record represents.
type Type string

const (
	TypeProductIn       Type = "product_in"
	TypeProductOut      Type = "product_out"
	TypeProductPurchase Type = "product_purchase"
	TypeProductSale     Type = "product_sale"
	TypeCashIn          Type = "cash_in"
	TypeCashOut         Type = "cash_out"
	TypeExpense         Type = "expense"
	TypeIncome          Type = "income"
	TypeReceivable      Type = "receivable"
	TypePayable         Type = "payable"
)

// Types lists every known record type in display order.
var Types = []Type{
	TypeProductIn,
	TypeProductOut,
	TypeProductPurchase,
	TypeProductSale,
	TypeCashIn,
	TypeCashOut,
	TypeExpense,
	TypeIncome,
	TypeReceivable,
	TypePayable,
}

func (t Type) Valid() bool {
	switch t {
	case TypeProductIn, TypeProductOut, TypeProductPurchase, TypeProductSale,
		TypeCashIn, TypeCashOut, TypeExpense, TypeIncome,
		TypeReceivable, TypePayable:
		return true
	}

	return false
}

// UnmarshalText rejects unknown types when decoding. An empty value is kept
// as the zero Type so that records without a type still load.
func (t *Type) UnmarshalText(b []byte) error {
	v := Type(b)
	if v != "" && !v.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, string(b))
	}

	*t = v

	return nil
}

// Family groups types by how a posting expands.
type Family int

const (
	FamilySimple Family = iota
	FamilyCash
	FamilyGoods
)

func (t Type) Family() Family {
	switch t {
	case TypeCashIn, TypeCashOut:
		return FamilyCash
	case TypeProductIn, TypeProductOut:
		return FamilyGoods
	}

	return FamilySimple
}

// requiresMeasure reports whether the type moves goods and must carry
// exactly one of weight or quantity.
func (t Type) requiresMeasure() bool {
	switch t {
	case TypeProductIn, TypeProductOut, TypeProductPurchase, TypeProductSale:
		return true
	}

	return false
}

func (t Type) isAdjustment() bool {
	return t == TypeReceivable || t == TypePayable
}

// Role tells which side of a posting group a child record stands for.
type Role string

const (
	RoleNone Role = ""
	// RoleCustomerLeg is the customer-facing leg of a cash or goods movement.
	RoleCustomerLeg Role = "customer"
	// RoleCounterpartyLeg is the treasury or warehouse leg of a movement.
	RoleCounterpartyLeg Role = "counterparty"
	// RoleLine is one pending item committed under a batch main document.
	RoleLine Role = "line"
)

// IsLeg reports whether the record value is already signed for the account
// it is posted to.
func (r Role) IsLeg() bool {
	return r == RoleCustomerLeg || r == RoleCounterpartyLeg
}

// Reserved account ids that are not customers.
const (
	CashBox   = "cash_box"
	Warehouse = "warehouse"
)

// Record is a single ledger entry.
type Record struct {
	ID                  uuid.UUID           `json:"id"`
	DocumentNumber      string              `json:"documentNumber"`
	Type                Type                `json:"type"`
	CustomerID          string              `json:"customerId,omitempty"`
	AccountID           string              `json:"accountId,omitempty"`
	Amount              decimal.Decimal     `json:"amount"`
	Weight              decimal.NullDecimal `json:"weight"`
	WeightUnit          WeightUnit          `json:"weightUnit,omitempty"`
	Quantity            decimal.NullDecimal `json:"quantity"`
	UnitPrice           decimal.NullDecimal `json:"unitPrice"`
	ProductTypeID       string              `json:"productTypeId,omitempty"`
	CurrencyID          string              `json:"currencyId,omitempty"`
	Description         string              `json:"description,omitempty"`
	Date                time.Time           `json:"date"`
	CreatedAt           time.Time           `json:"createdAt"`
	IsMainDocument      bool                `json:"isMainDocument"`
	ParentDocumentID    *uuid.UUID          `json:"parentDocumentId,omitempty"`
	LinkedTransactionID *uuid.UUID          `json:"linkedTransactionId,omitempty"`
	Role                Role                `json:"role,omitempty"`
}

// HasMeasure reports whether the record moves goods.
func (r Record) HasMeasure() bool {
	return r.Weight.Valid || r.Quantity.Valid
}

// IsChild reports whether the record belongs to a posting group.
func (r Record) IsChild() bool {
	return r.ParentDocumentID != nil
}
