// Package respond holds the JSON plumbing shared by the API handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Decode reads a JSON body into dst and runs its validate tags.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	if err := validate.Struct(dst); err != nil {
		return err
	}

	return nil
}

func BadRequest(w http.ResponseWriter, err error) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: "BadRequest", Message: err.Error()})
}

// Error maps service errors to status codes. Posting rejections carry their
// kind so clients can tell them apart.
func Error(w http.ResponseWriter, err error) {
	var ve *ledger.ValidationError

	switch {
	case errors.As(err, &ve):
		JSON(w, http.StatusUnprocessableEntity, errorResponse{Error: string(ve.Kind), Message: err.Error()})
	case errors.Is(err, ledger.ErrEditLeg):
		JSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "EditLeg", Message: err.Error()})
	case errors.Is(err, ledger.ErrDeleteLeg):
		JSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "DeleteLeg", Message: err.Error()})
	case errors.Is(err, ledger.ErrNotFound):
		JSON(w, http.StatusNotFound, errorResponse{Error: "NotFound", Message: err.Error()})
	case errors.Is(err, ledger.ErrDuplicate):
		JSON(w, http.StatusConflict, errorResponse{Error: "Duplicate", Message: err.Error()})
	default:
		slog.Error("request failed", "error", err)
		JSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal", Message: "internal error"})
	}
}
