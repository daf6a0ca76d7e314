package matching

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	RawDescription string `json:"raw_description"`
	CustomerID     string `json:"customer_id"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		http.Error(w, "raw_description query parameter is required", http.StatusBadRequest)
		return
	}

	customerID, err := h.svc.Suggest(r.Context(), rawDesc)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{
		RawDescription: rawDesc,
		CustomerID:     customerID,
	})
}

type learnRequest struct {
	RawPattern string `json:"raw_pattern" validate:"required"`
	CustomerID string `json:"customer_id" validate:"required"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	if err := h.svc.Learn(r.Context(), req.RawPattern, req.CustomerID); err != nil {
		if errors.Is(err, matching.ErrEmptyPattern) {
			respond.BadRequest(w, err)
			return
		}

		respond.Error(w, err)

		return
	}

	w.WriteHeader(http.StatusCreated)
}
