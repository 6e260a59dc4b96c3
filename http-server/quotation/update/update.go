package update

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"cotizador/internal/service/quotation"
	"cotizador/internal/storage"
)

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id int64, to string) (*storage.Quotation, error)
}

type PaymentRecorder interface {
	MarkPaid(ctx context.Context, id int64, priority, premium bool) (*quotation.PaymentResult, error)
}

type StatusRequest struct {
	Status string `json:"status"`
}

type PaymentRequest struct {
	Priority bool `json:"priority"`
	Premium  bool `json:"premium"`
}

func quotationID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func writeError(log *slog.Logger, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "quotation not found", http.StatusNotFound)
	case errors.Is(err, quotation.ErrInvalidTransition), errors.Is(err, storage.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Error("error updating quotation", slog.String("op", op), slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func UpdateStatus(log *slog.Logger, updater StatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quotation.update.UpdateStatus"

		id, ok := quotationID(r)
		if !ok {
			http.Error(w, "invalid quotation id", http.StatusBadRequest)
			return
		}

		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
			http.Error(w, "Bad request: status is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		q, err := updater.UpdateStatus(ctx, id, req.Status)
		if err != nil {
			writeError(log, w, op, err)
			return
		}

		log.Info("quotation status updated", slog.String("op", op), slog.Int64("id", id), slog.String("status", q.Status))

		render.JSON(w, r, q)
	}
}

func MarkPaid(log *slog.Logger, recorder PaymentRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quotation.update.MarkPaid"

		id, ok := quotationID(r)
		if !ok {
			http.Error(w, "invalid quotation id", http.StatusBadRequest)
			return
		}

		// an empty body means a regular payment
		var req PaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		res, err := recorder.MarkPaid(ctx, id, req.Priority, req.Premium)
		if err != nil {
			writeError(log, w, op, err)
			return
		}

		render.JSON(w, r, res)
	}
}
