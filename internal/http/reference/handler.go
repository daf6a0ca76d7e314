// Package reference serves the customer, currency, bank account and product
// type tables records point to.
package reference

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
	r.Get("/customers", h.listCustomers)
	r.Post("/customers", h.createCustomer)
	r.Get("/currencies", h.listCurrencies)
	r.Post("/currencies", h.createCurrency)
	r.Get("/bank-accounts", h.listBankAccounts)
	r.Post("/bank-accounts", h.createBankAccount)
	r.Get("/product-types", h.listProductTypes)
	r.Post("/product-types", h.createProductType)
}

type createCustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type createCurrencyRequest struct {
	Code string `json:"code" validate:"required,len=3,alpha"`
	Name string `json:"name" validate:"required"`
}

type createBankAccountRequest struct {
	Name       string `json:"name" validate:"required"`
	CurrencyID string `json:"currency_id" validate:"required"`
	IBAN       string `json:"iban" validate:"omitempty,max=42"`
}

type createProductTypeRequest struct {
	Name     string `json:"name" validate:"required"`
	Measure  string `json:"measure" validate:"required,oneof=weight count"`
	BaseUnit string `json:"base_unit" validate:"omitempty,oneof=mg g kg ton lb"`
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.ListCustomers(r.Context())
	list(w, customers, err)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	c, err := h.svc.CreateCustomer(r.Context(), ledger.CreateCustomerParams{
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	created(w, c, err)
}

func (h *Handler) listCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.svc.ListCurrencies(r.Context())
	list(w, currencies, err)
}

func (h *Handler) createCurrency(w http.ResponseWriter, r *http.Request) {
	var req createCurrencyRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	c, err := h.svc.CreateCurrency(r.Context(), ledger.CreateCurrencyParams{Code: req.Code, Name: req.Name})
	created(w, c, err)
}

func (h *Handler) listBankAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListBankAccounts(r.Context())
	list(w, accounts, err)
}

func (h *Handler) createBankAccount(w http.ResponseWriter, r *http.Request) {
	var req createBankAccountRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	a, err := h.svc.CreateBankAccount(r.Context(), ledger.CreateBankAccountParams{
		Name:       req.Name,
		CurrencyID: req.CurrencyID,
		IBAN:       req.IBAN,
	})
	created(w, a, err)
}

func (h *Handler) listProductTypes(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProductTypes(r.Context())
	list(w, products, err)
}

func (h *Handler) createProductType(w http.ResponseWriter, r *http.Request) {
	var req createProductTypeRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	p, err := h.svc.CreateProductType(r.Context(), ledger.CreateProductTypeParams{
		Name:     req.Name,
		Measure:  ledger.Measure(req.Measure),
		BaseUnit: ledger.WeightUnit(req.BaseUnit),
	})
	created(w, p, err)
}

func list[T any](w http.ResponseWriter, items []T, err error) {
	if err != nil {
		respond.Error(w, err)
		return
	}

	if items == nil {
		items = []T{}
	}

	respond.JSON(w, http.StatusOK, items)
}

func created[T any](w http.ResponseWriter, v *T, err error) {
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, v)
}
