package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostParams is one logical action entered by a user.
type PostParams struct {
	Type          Type
	CustomerID    string
	AccountID     string
	CurrencyID    string
	ProductTypeID string
	Amount        decimal.Decimal
	Weight        decimal.NullDecimal
	WeightUnit    WeightUnit
	Quantity      decimal.NullDecimal
	UnitPrice     decimal.NullDecimal
	Date          time.Time
	Description   string
}

// ParamsOf returns the parameters that would post r again. Edits start from
// it and change what the user touched.
func ParamsOf(r Record) PostParams {
	return PostParams{
		Type:          r.Type,
		CustomerID:    r.CustomerID,
		AccountID:     r.AccountID,
		CurrencyID:    r.CurrencyID,
		ProductTypeID: r.ProductTypeID,
		Amount:        r.Amount,
		Weight:        r.Weight,
		WeightUnit:    r.WeightUnit,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		Date:          r.Date,
		Description:   r.Description,
	}
}

// BatchParams is a set of pending items committed under one customer.
type BatchParams struct {
	CustomerID  string
	Date        time.Time
	Description string
	Items       []PostParams
}

// Poster expands user actions into records. It never touches the book it is
// given; callers store what it returns.
type Poster struct {
	Now   func() time.Time
	NewID func() uuid.UUID
}

func NewPoster() Poster {
	return Poster{Now: time.Now, NewID: uuid.New}
}

// group carries the identity of a posting group, fresh for new documents and
// reused when a document is edited.
type group struct {
	mainID            uuid.UUID
	customerLegID     uuid.UUID
	counterpartyLegID uuid.UUID
	number            string
	createdAt         time.Time
}

// Post validates p and returns the records it expands into: a main document
// with a customer leg and a counterparty leg for cash and goods movements,
// or a single standalone record for everything else.
func (ps Poster) Post(b *Book, p PostParams) ([]Record, error) {
	now := ps.Now()
	p = withDefaults(p, now)

	if err := validate(b, p); err != nil {
		return nil, err
	}

	g := group{
		mainID:            ps.NewID(),
		customerLegID:     ps.NewID(),
		counterpartyLegID: ps.NewID(),
		number:            NextDocumentNumber(b.Records, now.Year()),
		createdAt:         now,
	}

	return expand(p, g), nil
}

// PostBatch commits pending items as children of a new main document,
// numbered {main}-1, {main}-2 and so on. Receivable and payable items are
// sign-normalized here, not when they were entered.
func (ps Poster) PostBatch(b *Book, bp BatchParams) ([]Record, error) {
	if strings.TrimSpace(bp.CustomerID) == "" {
		return nil, invalid(KindMissingCustomer, "a customer must be selected")
	}

	if len(bp.Items) == 0 {
		return nil, invalid(KindNothingToPost, "the batch has no items")
	}

	now := ps.Now()
	if bp.Date.IsZero() {
		bp.Date = now
	}

	items := make([]PostParams, len(bp.Items))

	for i, item := range bp.Items {
		item.CustomerID = bp.CustomerID
		if item.Date.IsZero() {
			item.Date = bp.Date
		}

		item = withDefaults(item, now)
		if err := validate(b, item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}

		items[i] = item
	}

	main := Record{
		ID:             ps.NewID(),
		DocumentNumber: NextDocumentNumber(b.Records, now.Year()),
		Type:           items[0].Type,
		CustomerID:     bp.CustomerID,
		CurrencyID:     items[0].CurrencyID,
		Description:    bp.Description,
		Date:           bp.Date,
		CreatedAt:      now,
		IsMainDocument: true,
	}

	out := []Record{main}

	for i, item := range items {
		line := standalone(item, group{
			mainID:    ps.NewID(),
			number:    ChildDocumentNumber(main.DocumentNumber, i+1),
			createdAt: now,
		})
		line.ParentDocumentID = &main.ID
		line.Role = RoleLine
		out = append(out, line)
	}

	return out, nil
}

// Edit returns the records that replace document id after applying p. A
// movement keeps its ids and numbers and has both legs regenerated by role. A
// batch main only takes the customer, date and description, and passes them
// on to its lines.
func (ps Poster) Edit(b *Book, id uuid.UUID, p PostParams) ([]Record, error) {
	current, ok := b.Record(id)
	if !ok {
		return nil, ErrNotFound
	}

	if current.Role.IsLeg() {
		return nil, ErrEditLeg
	}

	children := b.Children(id)
	if current.IsMainDocument && isBatch(children) {
		return editBatch(current, children, p)
	}

	if p.Date.IsZero() {
		p.Date = current.Date
	}

	p = withDefaults(p, ps.Now())

	if err := validate(b, p); err != nil {
		return nil, err
	}

	g := group{
		mainID:    current.ID,
		number:    current.DocumentNumber,
		createdAt: current.CreatedAt,
	}

	if !current.IsMainDocument {
		if p.Type.Family() != FamilySimple {
			return nil, invalid(KindTypeChange, "a standalone %s cannot become a %s movement", current.Type, p.Type)
		}

		rec := standalone(p, g)
		rec.ParentDocumentID = current.ParentDocumentID
		rec.LinkedTransactionID = current.LinkedTransactionID
		rec.Role = current.Role

		return []Record{rec}, nil
	}

	if p.Type.Family() != current.Type.Family() {
		return nil, invalid(KindTypeChange, "a %s document cannot become a %s document", current.Type, p.Type)
	}

	for _, c := range children {
		switch c.Role {
		case RoleCustomerLeg:
			g.customerLegID = c.ID
		case RoleCounterpartyLeg:
			g.counterpartyLegID = c.ID
		}
	}

	if g.customerLegID == uuid.Nil {
		g.customerLegID = ps.NewID()
	}

	if g.counterpartyLegID == uuid.Nil {
		g.counterpartyLegID = ps.NewID()
	}

	return expand(p, g), nil
}

func isBatch(children []Record) bool {
	for _, c := range children {
		if c.Role == RoleLine {
			return true
		}
	}

	return false
}

func editBatch(main Record, lines []Record, p PostParams) ([]Record, error) {
	if strings.TrimSpace(p.CustomerID) == "" {
		return nil, invalid(KindMissingCustomer, "a customer must be selected")
	}

	if !p.Date.IsZero() {
		main.Date = p.Date
	}

	main.CustomerID = p.CustomerID
	main.Description = p.Description

	out := []Record{main}

	for _, l := range lines {
		l.CustomerID = main.CustomerID
		l.Date = main.Date
		out = append(out, l)
	}

	return out, nil
}

func withDefaults(p PostParams, now time.Time) PostParams {
	if p.Date.IsZero() {
		p.Date = now
	}

	if p.Type.Family() == FamilyCash && p.AccountID == "" {
		p.AccountID = CashBox
	}

	p.CustomerID = strings.TrimSpace(p.CustomerID)

	return p
}

func validate(b *Book, p PostParams) error {
	if !p.Type.Valid() {
		return invalid(KindUnknownType, "unknown type %q", p.Type)
	}

	if p.CustomerID == "" {
		return invalid(KindMissingCustomer, "a customer must be selected")
	}

	if p.Weight.Valid && p.Quantity.Valid {
		return invalid(KindAmbiguousMeasure, "set either weight or quantity, not both")
	}

	if p.Type.requiresMeasure() && !p.Weight.Valid && !p.Quantity.Valid {
		return invalid(KindAmbiguousMeasure, "%s needs a weight or a quantity", p.Type)
	}

	if p.Weight.Valid && p.WeightUnit != "" && !p.WeightUnit.Valid() {
		return invalid(KindAmbiguousMeasure, "unknown weight unit %q", p.WeightUnit)
	}

	if p.AccountID != "" && p.AccountID != CashBox {
		if err := validateBankAccount(b, p); err != nil {
			return err
		}
	}

	amount := derivedAmount(p)

	switch {
	case p.Type.isAdjustment():
		if !p.Weight.Valid && !p.Quantity.Valid && amount.IsZero() {
			return invalid(KindNothingToPost, "%s needs an amount or a product measure", p.Type)
		}
	case p.Type.Family() == FamilyCash, p.Type == TypeExpense, p.Type == TypeIncome:
		if amount.IsZero() {
			return invalid(KindNothingToPost, "%s needs a non-zero amount", p.Type)
		}
	}

	return nil
}

func validateBankAccount(b *Book, p PostParams) error {
	acct, ok := b.BankAccount(p.AccountID)
	if !ok {
		return invalid(KindUnknownAccount, "bank account %q does not exist", p.AccountID)
	}

	if acct.CurrencyID != p.CurrencyID {
		return invalid(KindCurrencyMismatch,
			"bank account %q holds %q, the document is in %q", acct.Name, acct.CurrencyID, p.CurrencyID)
	}

	return nil
}

// derivedAmount is unit price times the entered measure when both are
// present, the entered amount otherwise.
func derivedAmount(p PostParams) decimal.Decimal {
	if !p.UnitPrice.Valid {
		return p.Amount
	}

	switch {
	case p.Weight.Valid:
		return p.Weight.Decimal.Mul(p.UnitPrice.Decimal)
	case p.Quantity.Valid:
		return p.Quantity.Decimal.Mul(p.UnitPrice.Decimal)
	}

	return p.Amount
}

func expand(p PostParams, g group) []Record {
	switch p.Type.Family() {
	case FamilyCash:
		return cashMovement(p, g)
	case FamilyGoods:
		return goodsMovement(p, g)
	}

	return []Record{standalone(p, g)}
}

func record(p PostParams, id uuid.UUID, number string, createdAt time.Time) Record {
	return Record{
		ID:             id,
		DocumentNumber: number,
		Type:           p.Type,
		CustomerID:     p.CustomerID,
		AccountID:      p.AccountID,
		Amount:         derivedAmount(p),
		Weight:         p.Weight,
		WeightUnit:     p.WeightUnit,
		Quantity:       p.Quantity,
		UnitPrice:      p.UnitPrice,
		ProductTypeID:  p.ProductTypeID,
		CurrencyID:     p.CurrencyID,
		Description:    p.Description,
		Date:           p.Date,
		CreatedAt:      createdAt,
	}
}

// cashMovement posts the amount against the customer with the sign of the
// direction and the opposite against the treasury account.
func cashMovement(p PostParams, g group) []Record {
	customerSide := derivedAmount(p).Abs()
	if p.Type == TypeCashIn {
		customerSide = customerSide.Neg()
	}

	main := record(p, g.mainID, g.number, g.createdAt)
	main.IsMainDocument = true
	main.Amount = customerSide

	customer := record(p, g.customerLegID, ChildDocumentNumber(g.number, 1), g.createdAt)
	customer.ParentDocumentID = &main.ID
	customer.Role = RoleCustomerLeg
	customer.Amount = customerSide

	account := record(p, g.counterpartyLegID, ChildDocumentNumber(g.number, 2), g.createdAt)
	account.ParentDocumentID = &main.ID
	account.Role = RoleCounterpartyLeg
	account.CustomerID = p.AccountID
	account.Amount = customerSide.Neg()

	return []Record{main, customer, account}
}

// goodsMovement moves goods between the customer and the warehouse. The main
// document is a summary with a zero amount.
func goodsMovement(p PostParams, g group) []Record {
	// Goods coming in leave the customer and enter the warehouse.
	customerNeg := p.Type == TypeProductIn

	main := record(p, g.mainID, g.number, g.createdAt)
	main.IsMainDocument = true
	main.Amount = decimal.Zero

	customer := record(p, g.customerLegID, ChildDocumentNumber(g.number, 1), g.createdAt)
	customer.ParentDocumentID = &main.ID
	customer.Role = RoleCustomerLeg
	customer.Amount = decimal.Zero
	customer.Weight = signed(p.Weight, customerNeg)
	customer.Quantity = signed(p.Quantity, customerNeg)

	warehouse := record(p, g.counterpartyLegID, ChildDocumentNumber(g.number, 2), g.createdAt)
	warehouse.ParentDocumentID = &main.ID
	warehouse.Role = RoleCounterpartyLeg
	warehouse.CustomerID = Warehouse
	warehouse.AccountID = ""
	warehouse.Amount = decimal.Zero
	warehouse.Weight = signed(p.Weight, !customerNeg)
	warehouse.Quantity = signed(p.Quantity, !customerNeg)

	return []Record{main, customer, warehouse}
}

func standalone(p PostParams, g group) Record {
	r := record(p, g.mainID, g.number, g.createdAt)

	switch r.Type {
	case TypeReceivable:
		r.Amount = r.Amount.Abs()
		r.Weight = signed(r.Weight, false)
		r.Quantity = signed(r.Quantity, false)
	case TypePayable:
		r.Amount = r.Amount.Abs().Neg()
		r.Weight = signed(r.Weight, true)
		r.Quantity = signed(r.Quantity, true)
	}

	return r
}

// signed returns |n| or -|n|, leaving an unset value unset.
func signed(n decimal.NullDecimal, negative bool) decimal.NullDecimal {
	if !n.Valid {
		return n
	}

	v := n.Decimal.Abs()
	if negative {
		v = v.Neg()
	}

	return decimal.NewNullDecimal(v)
}
