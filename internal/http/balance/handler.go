package balance

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.accounts)
	r.Get("/{accountID}/balances", h.balances)
	r.Get("/{accountID}/statement", h.statement)
}

func (h *Handler) accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.Accounts(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, accounts)
}

type balancesResponse struct {
	AccountID string `json:"account_id"`
	Unit      string `json:"unit,omitempty"`
	ledger.Balances
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	unit, err := unitParam(r)
	if err != nil {
		respond.BadRequest(w, err)
		return
	}

	accountID := chi.URLParam(r, "accountID")

	b, err := h.svc.Balances(r.Context(), accountID, unit)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, balancesResponse{AccountID: accountID, Unit: string(unit), Balances: b})
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	unit, err := unitParam(r)
	if err != nil {
		respond.BadRequest(w, err)
		return
	}

	lines, err := h.svc.Statement(r.Context(), chi.URLParam(r, "accountID"), unit)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if lines == nil {
		lines = []ledger.StatementLine{}
	}

	respond.JSON(w, http.StatusOK, lines)
}

// unitParam reads ?unit=. Empty means the configured base unit.
func unitParam(r *http.Request) (ledger.WeightUnit, error) {
	s := r.URL.Query().Get("unit")
	if s == "" {
		return "", nil
	}

	return ledger.ParseWeightUnit(s)
}
