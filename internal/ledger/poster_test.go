package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

var postedAt = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func testPoster() ledger.Poster {
	p := ledger.NewPoster()
	p.Now = func() time.Time { return postedAt }

	return p
}

func testBook() *ledger.Book {
	return &ledger.Book{
		Customers: []ledger.Customer{
			{ID: "cust-c", Name: "Carlos"},
			{ID: "cust-d", Name: "Dina"},
		},
		Currencies: []ledger.Currency{
			{ID: "usd", Code: "USD"},
			{ID: "eur", Code: "EUR"},
		},
		BankAccounts: []ledger.BankAccount{
			{ID: "bank-eur", Name: "Main EUR", CurrencyID: "eur"},
		},
		ProductTypes: []ledger.ProductType{
			{ID: "copper", Name: "Copper", Measure: ledger.MeasureWeight, BaseUnit: ledger.UnitKilogram},
			{ID: "crates", Name: "Crates", Measure: ledger.MeasureCount},
		},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestPoster_Post_CashIn(t *testing.T) {
	recs, err := testPoster().Post(testBook(), ledger.PostParams{
		Type:       ledger.TypeCashIn,
		CustomerID: "cust-c",
		AccountID:  ledger.CashBox,
		CurrencyID: "usd",
		Amount:     dec("500"),
	})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	main, customer, account := recs[0], recs[1], recs[2]

	assert.True(t, main.IsMainDocument)
	assert.Nil(t, main.ParentDocumentID)
	assert.Equal(t, "2024-0001", main.DocumentNumber)
	assertDecimal(t, "-500", main.Amount)

	assert.Equal(t, "2024-0001-1", customer.DocumentNumber)
	assert.Equal(t, ledger.RoleCustomerLeg, customer.Role)
	assert.Equal(t, "cust-c", customer.CustomerID)
	assertDecimal(t, "-500", customer.Amount)
	require.NotNil(t, customer.ParentDocumentID)
	assert.Equal(t, main.ID, *customer.ParentDocumentID)

	assert.Equal(t, "2024-0001-2", account.DocumentNumber)
	assert.Equal(t, ledger.RoleCounterpartyLeg, account.Role)
	assert.Equal(t, ledger.CashBox, account.CustomerID)
	assertDecimal(t, "500", account.Amount)
	require.NotNil(t, account.ParentDocumentID)
	assert.Equal(t, main.ID, *account.ParentDocumentID)
}

func TestPoster_Post_CashDefaultsToCashBox(t *testing.T) {
	recs, err := testPoster().Post(testBook(), ledger.PostParams{
		Type:       ledger.TypeCashOut,
		CustomerID: "cust-c",
		CurrencyID: "usd",
		Amount:     dec("80"),
	})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, ledger.CashBox, recs[0].AccountID)
	assertDecimal(t, "80", recs[1].Amount)
	assert.Equal(t, ledger.CashBox, recs[2].CustomerID)
	assertDecimal(t, "-80", recs[2].Amount)
}

func TestPoster_Post_GoodsMovement(t *testing.T) {
	type testCase struct {
		name          string
		typ           ledger.Type
		wantCustomer  string
		wantWarehouse string
	}

	tests := []testCase{
		{name: "ProductIn", typ: ledger.TypeProductIn, wantCustomer: "-12", wantWarehouse: "12"},
		{name: "ProductOut", typ: ledger.TypeProductOut, wantCustomer: "12", wantWarehouse: "-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := testPoster().Post(testBook(), ledger.PostParams{
				Type:          tt.typ,
				CustomerID:    "cust-c",
				ProductTypeID: "copper",
				Weight:        nullDec("12"),
				WeightUnit:    ledger.UnitKilogram,
			})
			require.NoError(t, err)
			require.Len(t, recs, 3)

			assert.True(t, recs[0].IsMainDocument)
			assertDecimal(t, "0", recs[0].Amount)

			assert.Equal(t, "cust-c", recs[1].CustomerID)
			assertDecimal(t, tt.wantCustomer, recs[1].Weight.Decimal)

			assert.Equal(t, ledger.Warehouse, recs[2].CustomerID)
			assertDecimal(t, tt.wantWarehouse, recs[2].Weight.Decimal)
			assert.False(t, recs[2].Quantity.Valid)
		})
	}
}

func TestPoster_Post_Standalone(t *testing.T) {
	type testCase struct {
		name       string
		params     ledger.PostParams
		wantAmount string
		wantWeight *string
	}

	tests := []testCase{
		{
			name: "PurchaseDerivesAmountFromUnitPrice",
			params: ledger.PostParams{
				Type:          ledger.TypeProductPurchase,
				CustomerID:    "cust-c",
				CurrencyID:    "usd",
				ProductTypeID: "copper",
				Weight:        nullDec("10"),
				WeightUnit:    ledger.UnitTon,
				UnitPrice:     nullDec("200"),
			},
			wantAmount: "2000",
			wantWeight: new("10"),
		},
		{
			name: "PayableIsNegated",
			params: ledger.PostParams{
				Type:       ledger.TypePayable,
				CustomerID: "cust-c",
				CurrencyID: "usd",
				Amount:     dec("300"),
			},
			wantAmount: "-300",
		},
		{
			name: "ReceivableIsMadePositive",
			params: ledger.PostParams{
				Type:          ledger.TypeReceivable,
				CustomerID:    "cust-c",
				ProductTypeID: "copper",
				Weight:        nullDec("-4"),
			},
			wantAmount: "0",
			wantWeight: new("4"),
		},
		{
			name: "Expense",
			params: ledger.PostParams{
				Type:       ledger.TypeExpense,
				CustomerID: "cust-c",
				AccountID:  "bank-eur",
				CurrencyID: "eur",
				Amount:     dec("42.50"),
			},
			wantAmount: "42.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := testPoster().Post(testBook(), tt.params)
			require.NoError(t, err)
			require.Len(t, recs, 1)

			r := recs[0]
			assert.False(t, r.IsMainDocument)
			assert.Nil(t, r.ParentDocumentID)
			assert.Equal(t, ledger.RoleNone, r.Role)
			assert.Equal(t, "2024-0001", r.DocumentNumber)
			assertDecimal(t, tt.wantAmount, r.Amount)

			if tt.wantWeight != nil {
				require.True(t, r.Weight.Valid)
				assertDecimal(t, *tt.wantWeight, r.Weight.Decimal)
			}
		})
	}
}

func TestPoster_Post_Validation(t *testing.T) {
	type testCase struct {
		name     string
		params   ledger.PostParams
		wantKind ledger.ErrorKind
	}

	tests := []testCase{
		{
			name:     "MissingCustomer",
			params:   ledger.PostParams{Type: ledger.TypeIncome, CustomerID: "  ", Amount: dec("5")},
			wantKind: ledger.KindMissingCustomer,
		},
		{
			name: "BothMeasures",
			params: ledger.PostParams{
				Type:          ledger.TypeProductSale,
				CustomerID:    "cust-c",
				ProductTypeID: "copper",
				Weight:        nullDec("1"),
				Quantity:      nullDec("1"),
			},
			wantKind: ledger.KindAmbiguousMeasure,
		},
		{
			name:     "NoMeasure",
			params:   ledger.PostParams{Type: ledger.TypeProductIn, CustomerID: "cust-c", ProductTypeID: "copper"},
			wantKind: ledger.KindAmbiguousMeasure,
		},
		{
			name: "UnknownWeightUnit",
			params: ledger.PostParams{
				Type:       ledger.TypeProductOut,
				CustomerID: "cust-c",
				Weight:     nullDec("3"),
				WeightUnit: "stone",
			},
			wantKind: ledger.KindAmbiguousMeasure,
		},
		{
			name: "CurrencyMismatch",
			params: ledger.PostParams{
				Type:       ledger.TypeCashOut,
				CustomerID: "cust-c",
				AccountID:  "bank-eur",
				CurrencyID: "usd",
				Amount:     dec("10"),
			},
			wantKind: ledger.KindCurrencyMismatch,
		},
		{
			name: "UnknownAccount",
			params: ledger.PostParams{
				Type:       ledger.TypeCashIn,
				CustomerID: "cust-c",
				AccountID:  "bank-gone",
				CurrencyID: "usd",
				Amount:     dec("10"),
			},
			wantKind: ledger.KindUnknownAccount,
		},
		{
			name:     "PayableWithoutAmountOrMeasure",
			params:   ledger.PostParams{Type: ledger.TypePayable, CustomerID: "cust-c"},
			wantKind: ledger.KindNothingToPost,
		},
		{
			name:     "CashWithoutAmount",
			params:   ledger.PostParams{Type: ledger.TypeCashIn, CustomerID: "cust-c", CurrencyID: "usd"},
			wantKind: ledger.KindNothingToPost,
		},
		{
			name:     "UnknownType",
			params:   ledger.PostParams{Type: "barter", CustomerID: "cust-c"},
			wantKind: ledger.KindUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := testBook()

			recs, err := testPoster().Post(book, tt.params)
			require.Error(t, err)
			assert.Nil(t, recs)
			assert.True(t, errors.Is(err, ledger.ErrValidation))
			assert.Equal(t, tt.wantKind, ledger.KindOf(err))
			assert.Empty(t, book.Records)
		})
	}
}

func TestPoster_PostBatch(t *testing.T) {
	book := testBook()
	book.Records = []ledger.Record{{DocumentNumber: "2024-0007"}}

	recs, err := testPoster().PostBatch(book, ledger.BatchParams{
		CustomerID:  "cust-d",
		Description: "weekly settlement",
		Items: []ledger.PostParams{
			{Type: ledger.TypePayable, CurrencyID: "usd", Amount: dec("300")},
			{Type: ledger.TypeReceivable, CurrencyID: "usd", Amount: dec("-50")},
			{Type: ledger.TypeProductSale, CurrencyID: "usd", ProductTypeID: "crates", Quantity: nullDec("4"), UnitPrice: nullDec("2.5")},
		},
	})
	require.NoError(t, err)
	require.Len(t, recs, 4)

	main := recs[0]
	assert.True(t, main.IsMainDocument)
	assert.Equal(t, "2024-0008", main.DocumentNumber)
	assert.Equal(t, ledger.TypePayable, main.Type)
	assert.Equal(t, "cust-d", main.CustomerID)

	wantAmounts := []string{"-300", "50", "10"}

	for i, line := range recs[1:] {
		assert.Equal(t, ledger.ChildDocumentNumber(main.DocumentNumber, i+1), line.DocumentNumber)
		assert.Equal(t, ledger.RoleLine, line.Role)
		assert.Equal(t, "cust-d", line.CustomerID)
		require.NotNil(t, line.ParentDocumentID)
		assert.Equal(t, main.ID, *line.ParentDocumentID)
		assertDecimal(t, wantAmounts[i], line.Amount)
	}
}

func TestPoster_PostBatch_RejectsWholeBatch(t *testing.T) {
	_, err := testPoster().PostBatch(testBook(), ledger.BatchParams{
		CustomerID: "cust-d",
		Items: []ledger.PostParams{
			{Type: ledger.TypeIncome, CurrencyID: "usd", Amount: dec("1")},
			{Type: ledger.TypeProductSale, CurrencyID: "usd"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, ledger.KindAmbiguousMeasure, ledger.KindOf(err))

	_, err = testPoster().PostBatch(testBook(), ledger.BatchParams{CustomerID: "cust-d"})
	assert.Equal(t, ledger.KindNothingToPost, ledger.KindOf(err))

	_, err = testPoster().PostBatch(testBook(), ledger.BatchParams{
		Items: []ledger.PostParams{{Type: ledger.TypeIncome, Amount: dec("1")}},
	})
	assert.Equal(t, ledger.KindMissingCustomer, ledger.KindOf(err))
}

func TestPoster_Edit_CashMovement(t *testing.T) {
	poster := testPoster()
	book := testBook()

	posted, err := poster.Post(book, ledger.PostParams{
		Type:       ledger.TypeCashIn,
		CustomerID: "cust-c",
		CurrencyID: "usd",
		Amount:     dec("500"),
	})
	require.NoError(t, err)

	book.Records = posted

	edited, err := poster.Edit(book, posted[0].ID, ledger.PostParams{
		Type:       ledger.TypeCashOut,
		CustomerID: "cust-d",
		CurrencyID: "usd",
		Amount:     dec("120"),
	})
	require.NoError(t, err)
	require.Len(t, edited, 3)

	for i := range edited {
		assert.Equal(t, posted[i].ID, edited[i].ID)
		assert.Equal(t, posted[i].DocumentNumber, edited[i].DocumentNumber)
		assert.Equal(t, posted[i].CreatedAt, edited[i].CreatedAt)
	}

	assert.Equal(t, posted[0].Date, edited[0].Date)
	assert.Equal(t, "cust-d", edited[1].CustomerID)
	assertDecimal(t, "120", edited[1].Amount)
	assert.Equal(t, ledger.CashBox, edited[2].CustomerID)
	assertDecimal(t, "-120", edited[2].Amount)
}

func TestPoster_Edit_Rejections(t *testing.T) {
	poster := testPoster()
	book := testBook()

	movement, err := poster.Post(book, ledger.PostParams{
		Type:       ledger.TypeCashIn,
		CustomerID: "cust-c",
		CurrencyID: "usd",
		Amount:     dec("500"),
	})
	require.NoError(t, err)

	book.Records = append(book.Records, movement...)

	simple, err := poster.Post(book, ledger.PostParams{
		Type:       ledger.TypeIncome,
		CustomerID: "cust-c",
		CurrencyID: "usd",
		Amount:     dec("5"),
	})
	require.NoError(t, err)

	book.Records = append(book.Records, simple...)

	_, err = poster.Edit(book, movement[1].ID, ledger.PostParams{Type: ledger.TypeCashIn, CustomerID: "cust-c", Amount: dec("1")})
	assert.ErrorIs(t, err, ledger.ErrEditLeg)

	_, err = poster.Edit(book, movement[0].ID, ledger.PostParams{
		Type:          ledger.TypeProductIn,
		CustomerID:    "cust-c",
		ProductTypeID: "crates",
		Quantity:      nullDec("1"),
	})
	assert.Equal(t, ledger.KindTypeChange, ledger.KindOf(err))

	_, err = poster.Edit(book, simple[0].ID, ledger.PostParams{Type: ledger.TypeCashOut, CustomerID: "cust-c", Amount: dec("1")})
	assert.Equal(t, ledger.KindTypeChange, ledger.KindOf(err))

	_, err = poster.Edit(book, movement[0].ID, ledger.PostParams{Type: ledger.TypeCashIn, Amount: dec("1")})
	assert.Equal(t, ledger.KindMissingCustomer, ledger.KindOf(err))

	_, err = poster.Edit(book, ledger.NewPoster().NewID(), ledger.PostParams{})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestPoster_Edit_BatchPropagatesToLines(t *testing.T) {
	poster := testPoster()
	book := testBook()

	posted, err := poster.PostBatch(book, ledger.BatchParams{
		CustomerID: "cust-c",
		Items: []ledger.PostParams{
			{Type: ledger.TypeIncome, CurrencyID: "usd", Amount: dec("10")},
			{Type: ledger.TypeExpense, CurrencyID: "usd", Amount: dec("4")},
		},
	})
	require.NoError(t, err)

	book.Records = posted
	newDate := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	edited, err := poster.Edit(book, posted[0].ID, ledger.PostParams{
		CustomerID:  "cust-d",
		Date:        newDate,
		Description: "moved",
	})
	require.NoError(t, err)
	require.Len(t, edited, 3)

	assert.Equal(t, "moved", edited[0].Description)

	for _, r := range edited {
		assert.Equal(t, "cust-d", r.CustomerID)
		assert.Equal(t, newDate, r.Date)
	}

	assertDecimal(t, "10", edited[1].Amount)
	assertDecimal(t, "4", edited[2].Amount)
}
