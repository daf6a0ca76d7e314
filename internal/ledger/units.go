package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// WeightUnit is the unit a record weight was entered in.
type WeightUnit string

const (
	UnitMilligram WeightUnit = "mg"
	UnitGram      WeightUnit = "g"
	UnitKilogram  WeightUnit = "kg"
	UnitTon       WeightUnit = "ton"
	UnitPound     WeightUnit = "lb"
)

// gramsPer holds how many grams one unit weighs.
var gramsPer = map[WeightUnit]decimal.Decimal{
	UnitMilligram: decimal.RequireFromString("0.001"),
	UnitGram:      decimal.NewFromInt(1),
	UnitKilogram:  decimal.NewFromInt(1000),
	UnitTon:       decimal.NewFromInt(1_000_000),
	UnitPound:     decimal.RequireFromString("453.592"),
}

func (u WeightUnit) Valid() bool {
	_, ok := gramsPer[u]
	return ok
}

// ParseWeightUnit accepts the unit symbols used in records.
func ParseWeightUnit(s string) (WeightUnit, error) {
	u := WeightUnit(s)
	if !u.Valid() {
		return "", fmt.Errorf("unknown weight unit %q", s)
	}

	return u, nil
}

// ConvertWeight expresses value, given in from, in the to unit. Both sides go
// through grams so mixed units for the same product add up. An unknown or
// empty from unit is treated as already being in to.
func ConvertWeight(value decimal.Decimal, from, to WeightUnit) decimal.Decimal {
	if from == to {
		return value
	}

	fromGrams, ok := gramsPer[from]
	if !ok {
		return value
	}

	toGrams, ok := gramsPer[to]
	if !ok {
		return value.Mul(fromGrams)
	}

	return value.Mul(fromGrams).Div(toGrams)
}
