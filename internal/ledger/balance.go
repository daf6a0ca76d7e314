package ledger

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Balances is the net position of one account.
type Balances struct {
	// Cash is keyed by currency id.
	Cash map[string]decimal.Decimal `json:"cashBalances"`
	// Products is keyed by product type id, weights expressed in the base unit.
	Products map[string]decimal.Decimal `json:"productBalances"`
}

// StatementLine is one record that moved the account, with the running
// totals right after it.
type StatementLine struct {
	Record     Record          `json:"record"`
	CashDelta  decimal.Decimal `json:"cashDelta"`
	GoodsDelta decimal.Decimal `json:"goodsDelta"`
	// Cash is the running balance in the record's currency.
	Cash decimal.Decimal `json:"cash"`
	// Goods is the running balance of the record's product type.
	Goods decimal.Decimal `json:"goods"`
}

// DeriveBalances folds records into the cash and goods balances of
// accountID. Input order does not matter: records are sorted by date first.
// Main documents are summaries and never counted.
func DeriveBalances(records []Record, accountID string, base WeightUnit) Balances {
	b := Balances{
		Cash:     make(map[string]decimal.Decimal),
		Products: make(map[string]decimal.Decimal),
	}

	fold(records, accountID, base, func(r Record, e effect) {
		if e.hasCash {
			b.Cash[r.CurrencyID] = b.Cash[r.CurrencyID].Add(e.cash)
		}

		if e.hasGoods {
			b.Products[r.ProductTypeID] = b.Products[r.ProductTypeID].Add(e.goods)
		}
	})

	return b
}

// DeriveStatement returns the records that moved accountID in date order,
// each with its effect and the running totals it leaves behind.
func DeriveStatement(records []Record, accountID string, base WeightUnit) []StatementLine {
	var (
		lines = []StatementLine{}
		cash  = make(map[string]decimal.Decimal)
		goods = make(map[string]decimal.Decimal)
	)

	fold(records, accountID, base, func(r Record, e effect) {
		if e.hasCash {
			cash[r.CurrencyID] = cash[r.CurrencyID].Add(e.cash)
		}

		if e.hasGoods {
			goods[r.ProductTypeID] = goods[r.ProductTypeID].Add(e.goods)
		}

		lines = append(lines, StatementLine{
			Record:     r,
			CashDelta:  e.cash,
			GoodsDelta: e.goods,
			Cash:       cash[r.CurrencyID],
			Goods:      goods[r.ProductTypeID],
		})
	})

	return lines
}

type effect struct {
	cash     decimal.Decimal
	hasCash  bool
	goods    decimal.Decimal
	hasGoods bool
}

func (e *effect) addCash(v decimal.Decimal) {
	e.cash = e.cash.Add(v)
	e.hasCash = true
}

func (e *effect) addGoods(v decimal.Decimal) {
	e.goods = e.goods.Add(v)
	e.hasGoods = true
}

func fold(records []Record, accountID string, base WeightUnit, visit func(Record, effect)) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}

		return a.CreatedAt.Compare(b.CreatedAt)
	})

	for _, r := range sorted {
		e := effectOn(r, accountID, base)
		if !e.hasCash && !e.hasGoods {
			continue
		}

		visit(r, e)
	}
}

// effectOn computes what a single record does to accountID.
func effectOn(r Record, accountID string, base WeightUnit) effect {
	var e effect

	// Unknown or missing types are skipped rather than rejected.
	if r.IsMainDocument || !r.Type.Valid() {
		return e
	}

	if r.Role.IsLeg() {
		return legEffect(r, accountID, base)
	}

	if accountID == Warehouse {
		return warehouseEffect(r, base)
	}

	if r.CustomerID == accountID {
		switch r.Type {
		case TypeProductPurchase, TypeCashIn:
			e.addCash(r.Amount.Neg())
		case TypeProductSale, TypeCashOut, TypeReceivable, TypePayable:
			// payable amounts are stored negative, so this nets down.
			e.addCash(r.Amount)
		}

		if m, ok := goodsMeasure(r, base); ok {
			switch r.Type {
			case TypeProductPurchase, TypeProductOut, TypeReceivable:
				e.addGoods(m)
			case TypeProductSale, TypeProductIn:
				e.addGoods(m.Neg())
			case TypePayable:
				e.addGoods(m.Abs().Neg())
			}
		}
	}

	if r.AccountID != "" && r.AccountID == accountID {
		switch r.Type {
		case TypeCashIn, TypeIncome:
			e.addCash(r.Amount)
		case TypeCashOut, TypeExpense:
			e.addCash(r.Amount.Neg())
		}
	}

	return e
}

// legEffect handles the children of cash and goods movements. Their values
// are signed at posting time for the account in CustomerID.
func legEffect(r Record, accountID string, base WeightUnit) effect {
	var e effect

	if r.CustomerID != accountID {
		return e
	}

	switch r.Type.Family() {
	case FamilyCash:
		e.addCash(r.Amount)
	case FamilyGoods:
		if m, ok := goodsMeasure(r, base); ok {
			e.addGoods(m)
		}
	}

	return e
}

// warehouseEffect tracks physical stock. Standalone records posted to the
// warehouse count directly. Goods lines posted against a customer have no
// warehouse leg, so stock moves opposite to the customer side.
func warehouseEffect(r Record, base WeightUnit) effect {
	var e effect

	if r.CustomerID != Warehouse && r.Type.Family() != FamilyGoods {
		return e
	}

	m, ok := goodsMeasure(r, base)
	if !ok {
		return e
	}

	switch r.Type {
	case TypeProductIn, TypeIncome:
		e.addGoods(m)
	case TypeProductOut, TypeExpense:
		e.addGoods(m.Neg())
	}

	return e
}

// goodsMeasure returns the weight in base units, or the quantity, of a record
// that names a product type.
func goodsMeasure(r Record, base WeightUnit) (decimal.Decimal, bool) {
	if r.ProductTypeID == "" {
		return decimal.Zero, false
	}

	if r.Weight.Valid {
		unit := r.WeightUnit
		if unit == "" {
			unit = base
		}

		return ConvertWeight(r.Weight.Decimal, unit, base), true
	}

	if r.Quantity.Valid {
		return r.Quantity.Decimal, true
	}

	return decimal.Zero, false
}
