package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	"github.com/MrJamesThe3rd/tally/internal/http/balance"
	"github.com/MrJamesThe3rd/tally/internal/http/document"
	"github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/tally/internal/http/matching"
	"github.com/MrJamesThe3rd/tally/internal/http/reference"
	statementHandler "github.com/MrJamesThe3rd/tally/internal/http/statement"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/ledger/store/file"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/tally/internal/matching/store"
	"github.com/MrJamesThe3rd/tally/internal/statement"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	ledgerSvc := ledger.NewService(file.New(filepath.Join(t.TempDir(), "book.json")))
	matchSvc := matching.NewService(matchingStore.New(ledgerSvc))

	router := tallyHttp.New(tallyHttp.Handlers{
		Documents:  document.NewHandler(ledgerSvc),
		Accounts:   balance.NewHandler(ledgerSvc),
		Reference:  reference.NewHandler(ledgerSvc),
		Import:     importcsv.NewHandler(importer.NewService(), ledgerSvc, matchSvc),
		Matching:   matchingHandler.NewHandler(matchSvc),
		Statements: statementHandler.NewHandler(statement.NewService(ledgerSvc), ledgerSvc, ledger.UnitKilogram),
	}, []string{"*"})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)

	return resp, out
}

func TestRouter_PostAndBalance(t *testing.T) {
	srv := newServer(t)

	resp, customer := do(t, srv, http.MethodPost, "/api/v1/customers", map[string]any{"name": "Carlos"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	customerID := customer["id"].(string)

	resp, posted := do(t, srv, http.MethodPost, "/api/v1/documents", map[string]any{
		"type":        "cash_in",
		"customer_id": customerID,
		"currency_id": "usd",
		"amount":      "500",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, posted["records"], 3)

	resp, balances := do(t, srv, http.MethodGet, "/api/v1/accounts/"+ledger.CashBox+"/balances", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "500", balances["cashBalances"].(map[string]any)["usd"])

	resp, balances = do(t, srv, http.MethodGet, "/api/v1/accounts/"+customerID+"/balances", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "-500", balances["cashBalances"].(map[string]any)["usd"])
}

func TestRouter_Errors(t *testing.T) {
	srv := newServer(t)

	type testCase struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}

	tests := []testCase{
		{
			name:       "missing customer",
			method:     http.MethodPost,
			path:       "/api/v1/documents",
			body:       map[string]any{"type": "cash_in", "amount": "10"},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  string(ledger.KindMissingCustomer),
		},
		{
			name:       "unknown type",
			method:     http.MethodPost,
			path:       "/api/v1/documents",
			body:       map[string]any{"type": "barter", "customer_id": "c", "amount": "10"},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  string(ledger.KindUnknownType),
		},
		{
			name:       "document not found",
			method:     http.MethodGet,
			path:       "/api/v1/documents/" + uuid.NewString(),
			wantStatus: http.StatusNotFound,
			wantError:  "NotFound",
		},
		{
			name:       "unknown account",
			method:     http.MethodGet,
			path:       "/api/v1/accounts/nobody/balances",
			wantStatus: http.StatusNotFound,
			wantError:  "NotFound",
		},
		{
			name:       "bad unit",
			method:     http.MethodGet,
			path:       "/api/v1/accounts/" + ledger.CashBox + "/balances?unit=stone",
			wantStatus: http.StatusBadRequest,
			wantError:  "BadRequest",
		},
		{
			name:       "invalid currency code",
			method:     http.MethodPost,
			path:       "/api/v1/currencies",
			body:       map[string]any{"code": "EURO", "name": "Euro"},
			wantStatus: http.StatusBadRequest,
			wantError:  "BadRequest",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, srv, tc.method, tc.path, tc.body)

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantError, body["error"])
		})
	}
}

func TestRouter_DuplicateCurrency(t *testing.T) {
	srv := newServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/api/v1/currencies", map[string]any{"code": "eur", "name": "Euro"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, srv, http.MethodPost, "/api/v1/currencies", map[string]any{"code": "EUR", "name": "Euro"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Duplicate", body["error"])
}

func TestRouter_Metrics(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_EditAndDelete(t *testing.T) {
	srv := newServer(t)

	resp, customer := do(t, srv, http.MethodPost, "/api/v1/customers", map[string]any{"name": "Carlos"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, posted := do(t, srv, http.MethodPost, "/api/v1/documents", map[string]any{
		"type":        "cash_in",
		"customer_id": customer["id"],
		"currency_id": "usd",
		"amount":      "500",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	records := posted["records"].([]any)
	mainID := records[0].(map[string]any)["id"].(string)
	legID := records[1].(map[string]any)["id"].(string)

	resp, edited := do(t, srv, http.MethodPatch, "/api/v1/documents/"+mainID, map[string]any{"description": "deposit"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	main := edited["records"].([]any)[0].(map[string]any)
	assert.Equal(t, "deposit", main["description"])
	assert.Equal(t, "-500", main["amount"])
	assert.Equal(t, "cash_in", main["type"])

	resp, edited = do(t, srv, http.MethodPatch, "/api/v1/documents/"+mainID, map[string]any{"amount": "650"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "deposit", edited["records"].([]any)[0].(map[string]any)["description"])

	resp, balances := do(t, srv, http.MethodGet, "/api/v1/accounts/"+ledger.CashBox+"/balances", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "650", balances["cashBalances"].(map[string]any)["usd"])

	resp, _ = do(t, srv, http.MethodPut, "/api/v1/documents/"+mainID, map[string]any{"description": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, srv, http.MethodPatch, "/api/v1/documents/"+legID, map[string]any{"description": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "EditLeg", body["error"])

	resp, body = do(t, srv, http.MethodDelete, "/api/v1/documents/"+legID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "DeleteLeg", body["error"])

	resp, _ = do(t, srv, http.MethodDelete, "/api/v1/documents/"+mainID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, balances = do(t, srv, http.MethodGet, "/api/v1/accounts/"+ledger.CashBox+"/balances", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, balances["cashBalances"])
}
