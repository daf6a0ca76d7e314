package importcsv

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

type Handler struct {
	importSvc *importer.Service
	ledgerSvc *ledger.Service
	matchSvc  *matching.Service
}

func NewHandler(importSvc *importer.Service, ledgerSvc *ledger.Service, matchSvc *matching.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		ledgerSvc: ledgerSvc,
		matchSvc:  matchSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type importSuccessResponse struct {
	Imported int               `json:"imported"`
	Records  [][]ledger.Record `json:"records"`
}

type draftDTO struct {
	Type        string          `json:"type" validate:"required,oneof=cash_in cash_out"`
	CustomerID  string          `json:"customer_id"`
	AccountID   string          `json:"account_id"`
	CurrencyID  string          `json:"currency_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

type conflictDTO struct {
	Incoming draftDTO      `json:"incoming"`
	Existing ledger.Record `json:"existing"`
}

type importConflictResponse struct {
	New       []draftDTO    `json:"new"`
	Conflicts []conflictDTO `json:"conflicts"`
}

type confirmRequest struct {
	Params []draftDTO `json:"params" validate:"dive"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	bank := importer.Bank(r.FormValue("bank"))
	if bank == "" {
		http.Error(w, "bank field is required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	lines, err := h.importSvc.Import(bank, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts, err := h.draftOptions(r, lines)
	if err != nil {
		respond.Error(w, err)
		return
	}

	result, err := h.ledgerSvc.ImportCash(r.Context(), importer.Drafts(lines, opts))
	if err != nil {
		respond.Error(w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]draftDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toDraftDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toDraftDTO(c.Incoming),
				Existing: c.Existing,
			})
		}

		respond.JSON(w, http.StatusConflict, resp)

		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(result.Imported))
}

// draftOptions reads the target account from the form. A bank account brings
// its own currency when none is given.
func (h *Handler) draftOptions(r *http.Request, lines []importer.Line) (importer.DraftOptions, error) {
	opts := importer.DraftOptions{
		AccountID:  r.FormValue("account_id"),
		CurrencyID: r.FormValue("currency_id"),
	}

	if opts.CurrencyID == "" && opts.AccountID != "" && opts.AccountID != ledger.CashBox {
		accounts, err := h.ledgerSvc.ListBankAccounts(r.Context())
		if err != nil {
			return opts, err
		}

		found := false

		for _, a := range accounts {
			if a.ID == opts.AccountID {
				opts.CurrencyID = a.CurrencyID
				found = true
			}
		}

		if !found {
			return opts, fmt.Errorf("bank account %q: %w", opts.AccountID, ledger.ErrNotFound)
		}
	}

	descriptions := make([]string, 0, len(lines))
	for _, l := range lines {
		descriptions = append(descriptions, l.Description)
	}

	suggestions := h.matchSvc.SuggestAll(r.Context(), descriptions)
	opts.Suggest = func(description string) string { return suggestions[description] }

	return opts, nil
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	params := make([]ledger.PostParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, ledger.PostParams{
			Type:        ledger.Type(p.Type),
			CustomerID:  p.CustomerID,
			AccountID:   p.AccountID,
			CurrencyID:  p.CurrencyID,
			Amount:      p.Amount,
			Description: p.Description,
			Date:        p.Date,
		})
	}

	groups, err := h.ledgerSvc.PostAll(r.Context(), params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(groups))
}

func toSuccessResponse(groups [][]ledger.Record) importSuccessResponse {
	if groups == nil {
		groups = [][]ledger.Record{}
	}

	return importSuccessResponse{
		Imported: len(groups),
		Records:  groups,
	}
}

func toDraftDTO(p ledger.PostParams) draftDTO {
	return draftDTO{
		Type:        string(p.Type),
		CustomerID:  p.CustomerID,
		AccountID:   p.AccountID,
		CurrencyID:  p.CurrencyID,
		Amount:      p.Amount,
		Description: p.Description,
		Date:        p.Date,
	}
}
