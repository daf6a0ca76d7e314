package document

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

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
	r.Post("/", h.post)
	r.Post("/batch", h.postBatch)
	r.Get("/", h.list)
	r.Get("/orphans", h.orphans)
	r.Post("/repair", h.repair)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.replace)
	r.Patch("/{id}", h.patch)
	r.Delete("/{id}", h.delete)
}

// postRequest keeps the type as a plain string so unknown types come back
// as a posting rejection rather than a decode failure.
type postRequest struct {
	Type          string              `json:"type" validate:"required"`
	CustomerID    string              `json:"customer_id"`
	AccountID     string              `json:"account_id"`
	CurrencyID    string              `json:"currency_id"`
	ProductTypeID string              `json:"product_type_id"`
	Amount        decimal.Decimal     `json:"amount"`
	Weight        decimal.NullDecimal `json:"weight"`
	WeightUnit    string              `json:"weight_unit"`
	Quantity      decimal.NullDecimal `json:"quantity"`
	UnitPrice     decimal.NullDecimal `json:"unit_price"`
	Date          *time.Time          `json:"date,omitempty"`
	Description   string              `json:"description"`
}

func (req postRequest) params() ledger.PostParams {
	p := ledger.PostParams{
		Type:          ledger.Type(req.Type),
		CustomerID:    req.CustomerID,
		AccountID:     req.AccountID,
		CurrencyID:    req.CurrencyID,
		ProductTypeID: req.ProductTypeID,
		Amount:        req.Amount,
		Weight:        req.Weight,
		WeightUnit:    ledger.WeightUnit(req.WeightUnit),
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		Description:   req.Description,
	}

	if req.Date != nil {
		p.Date = *req.Date
	}

	return p
}

type batchRequest struct {
	CustomerID  string        `json:"customer_id"`
	Date        *time.Time    `json:"date,omitempty"`
	Description string        `json:"description"`
	Items       []postRequest `json:"items" validate:"dive"`
}

type postResponse struct {
	Records []ledger.Record `json:"records"`
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	records, err := h.svc.Post(r.Context(), req.params())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, postResponse{Records: records})
}

func (h *Handler) postBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	bp := ledger.BatchParams{
		CustomerID:  req.CustomerID,
		Description: req.Description,
		Items:       make([]ledger.PostParams, 0, len(req.Items)),
	}

	if req.Date != nil {
		bp.Date = *req.Date
	}

	for _, item := range req.Items {
		bp.Items = append(bp.Items, item.params())
	}

	records, err := h.svc.PostBatch(r.Context(), bp)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, postResponse{Records: records})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ledger.ListFilter{}

	if s := q.Get("customer_id"); s != "" {
		filter.CustomerID = new(s)
	}

	if s := q.Get("type"); s != "" {
		filter.Type = new(ledger.Type(s))
	}

	if s := q.Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := q.Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	if s := q.Get("documents_only"); s != "" {
		filter.DocumentsOnly, _ = strconv.ParseBool(s)
	}

	records, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if records == nil {
		records = []ledger.Record{}
	}

	respond.JSON(w, http.StatusOK, records)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	doc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, doc)
}

// patchRequest carries only the fields to change. Absent fields keep their
// stored value.
type patchRequest struct {
	Type          *string          `json:"type" validate:"omitempty,min=1"`
	CustomerID    *string          `json:"customer_id"`
	AccountID     *string          `json:"account_id"`
	CurrencyID    *string          `json:"currency_id"`
	ProductTypeID *string          `json:"product_type_id"`
	Amount        *decimal.Decimal `json:"amount"`
	Weight        *decimal.Decimal `json:"weight"`
	WeightUnit    *string          `json:"weight_unit"`
	Quantity      *decimal.Decimal `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	Date          *time.Time       `json:"date"`
	Description   *string          `json:"description"`
}

func (req patchRequest) apply(p ledger.PostParams) ledger.PostParams {
	set(&p.CustomerID, req.CustomerID)
	set(&p.AccountID, req.AccountID)
	set(&p.CurrencyID, req.CurrencyID)
	set(&p.ProductTypeID, req.ProductTypeID)
	set(&p.Amount, req.Amount)
	set(&p.Date, req.Date)
	set(&p.Description, req.Description)

	if req.Type != nil {
		p.Type = ledger.Type(*req.Type)
	}

	if req.WeightUnit != nil {
		p.WeightUnit = ledger.WeightUnit(*req.WeightUnit)
	}

	if req.Weight != nil {
		p.Weight = decimal.NewNullDecimal(*req.Weight)
	}

	if req.Quantity != nil {
		p.Quantity = decimal.NewNullDecimal(*req.Quantity)
	}

	if req.UnitPrice != nil {
		p.UnitPrice = decimal.NewNullDecimal(*req.UnitPrice)
	}

	return p
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// replace overwrites a document with a full posting body.
func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req postRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	h.edit(w, r, id, req.params())
}

// patch merges the body over the stored document.
func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req patchRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	doc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	h.edit(w, r, id, req.apply(ledger.ParamsOf(doc.Record)))
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request, id uuid.UUID, params ledger.PostParams) {
	records, err := h.svc.Edit(r.Context(), id, params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, postResponse{Records: records})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) orphans(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.FindOrphans(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	if records == nil {
		records = []ledger.Record{}
	}

	respond.JSON(w, http.StatusOK, records)
}

type repairResponse struct {
	Removed int `json:"removed"`
}

func (h *Handler) repair(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.RepairOrphans(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, repairResponse{Removed: n})
}
