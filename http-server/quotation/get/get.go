package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"cotizador/internal/storage"
)

type ResponseQuotations struct {
	Quotations []*storage.Quotation `json:"quotations"`
	Status     string               `json:"status"`
	Error      string               `json:"error,omitempty"`
}

type QuotationGetter interface {
	Get(ctx context.Context, id int64) (*storage.Quotation, error)
}

type QuotationLister interface {
	List(ctx context.Context, filter storage.QuotationFilter) ([]*storage.Quotation, error)
}

func GetQuotation(log *slog.Logger, getter QuotationGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quotation.get.GetQuotation"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid quotation id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		q, err := getter.Get(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "quotation not found", http.StatusNotFound)
				return
			}
			log.Error("error getting quotation", slog.String("op", op), slog.Int64("id", id), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, q)
	}
}

func ListQuotations(log *slog.Logger, lister QuotationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quotation.get.ListQuotations"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter := storage.QuotationFilter{
			Status: r.URL.Query().Get("status"),
			Search: r.URL.Query().Get("search"),
		}
		if limit := r.URL.Query().Get("limit"); limit != "" {
			n, err := strconv.Atoi(limit)
			if err != nil {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			filter.Limit = n
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		quotations, err := lister.List(ctx, filter)
		if err != nil {
			log.Error("error listing quotations", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, ResponseQuotations{Error: "could not list quotations"})
			return
		}

		render.JSON(w, r, ResponseQuotations{
			Quotations: quotations,
			Status:     strconv.Itoa(http.StatusOK),
		})
	}
}
