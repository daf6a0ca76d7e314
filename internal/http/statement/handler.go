package statement

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/statement"
)

type Handler struct {
	svc      *statement.Service
	ledger   *ledger.Service
	baseUnit ledger.WeightUnit
}

func NewHandler(svc *statement.Service, l *ledger.Service, baseUnit ledger.WeightUnit) *Handler {
	return &Handler{svc: svc, ledger: l, baseUnit: baseUnit}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type exportRequest struct {
	AccountIDs []string   `json:"account_ids"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Unit       string     `json:"unit" validate:"omitempty,oneof=mg g kg ton lb"`
}

type itemResponse struct {
	Account ledger.Account          `json:"account"`
	Opening ledger.Balances         `json:"opening"`
	Closing ledger.Balances         `json:"closing"`
	Lines   []ledger.StatementLine `json:"lines"`
}

type exportMetadataResponse struct {
	Items   []itemResponse `json:"items"`
	Summary string         `json:"summary"`
}

func (h *Handler) request(req exportRequest) statement.Request {
	unit := ledger.WeightUnit(req.Unit)
	if unit == "" {
		unit = h.baseUnit
	}

	return statement.Request{
		AccountIDs: req.AccountIDs,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Unit:       unit,
	}
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	sr := h.request(req)

	items, err := h.svc.Build(r.Context(), sr)
	if err != nil {
		respond.Error(w, err)
		return
	}

	book, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := exportMetadataResponse{
		Items:   make([]itemResponse, 0, len(items)),
		Summary: statement.Summary(items, book, sr.Unit),
	}

	for _, item := range items {
		resp.Items = append(resp.Items, itemResponse{
			Account: item.Account,
			Opening: item.Opening,
			Closing: item.Closing,
			Lines:   item.Lines,
		})
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	sr := h.request(req)

	tmpDir, err := os.MkdirTemp("", "tally-statement-*")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.Export(r.Context(), sr, tmpDir)
	if err != nil {
		respond.Error(w, err)
		return
	}

	book, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	summary := statement.Summary(items, book, sr.Unit)
	if err := os.WriteFile(filepath.Join(tmpDir, "summary.txt"), []byte(summary), 0o644); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"statements_%s.zip\"", time.Now().Format("20060102")))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	err = filepath.Walk(tmpDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		relPath, _ := filepath.Rel(tmpDir, path)

		zf, err := zipWriter.Create(relPath)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(zf, f)

		return err
	})
	if err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}
