package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"cotizador/internal/service/quotation"
	"cotizador/internal/storage"
)

type QuotationCreator interface {
	Create(ctx context.Context, req quotation.CreateRequest) (*storage.Quotation, error)
}

func CreateQuotation(log *slog.Logger, creator QuotationCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quotation.save.CreateQuotation"

		var req quotation.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if err := req.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		q, err := creator.Create(ctx, req)
		if err != nil {
			switch {
			case errors.Is(err, quotation.ErrInvalidQuotation):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, storage.ErrNotFound):
				http.Error(w, "client or product not found", http.StatusUnprocessableEntity)
			default:
				log.Error("error creating quotation", slog.String("op", op), slog.String("error", err.Error()))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, q)
	}
}
