package get

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"cotizador/internal/service/eta"
	"cotizador/internal/storage"
)

type Estimator interface {
	EstimateProduct(ctx context.Context, req eta.Request) (eta.Estimate, error)
}

type QueueProjector interface {
	ProjectQueue(ctx context.Context, productID int64) (*eta.QueueProjection, error)
}

type PhaseCounter interface {
	Counts(ctx context.Context, productID int64) (*storage.PhaseCounts, error)
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func GetETA(log *slog.Logger, estimator Estimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production.get.GetETA"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()

		productID, err := strconv.ParseInt(q.Get("product_id"), 10, 64)
		if err != nil || productID <= 0 {
			log.Warn("invalid product_id", slog.String("product_id", q.Get("product_id")))
			http.Error(w, "invalid product_id", http.StatusBadRequest)
			return
		}

		quantity, err := strconv.Atoi(q.Get("quantity"))
		if err != nil {
			log.Warn("invalid quantity", slog.String("quantity", q.Get("quantity")))
			http.Error(w, "invalid quantity", http.StatusBadRequest)
			return
		}
		if quantity > eta.MaxQuantity {
			log.Warn("quantity above limit", slog.Int("quantity", quantity))
			http.Error(w, fmt.Sprintf("quantity cannot exceed %d", eta.MaxQuantity), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		est, err := estimator.EstimateProduct(ctx, eta.Request{
			ProductID: productID,
			Quantity:  quantity,
			Priority:  parseBool(q.Get("priority")),
			Premium:   parseBool(q.Get("premium")),
		})
		if err != nil {
			switch {
			case errors.Is(err, eta.ErrInvalidQuantity):
				http.Error(w, "quantity must be positive", http.StatusBadRequest)
			case errors.Is(err, storage.ErrNotFound):
				http.Error(w, "product not found", http.StatusNotFound)
			default:
				log.Error("error estimating eta", slog.String("error", err.Error()))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, r, est)
	}
}

func productIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	return id, err == nil && id > 0
}

func GetQueue(log *slog.Logger, queues QueueProjector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production.get.GetQueue"

		productID, ok := productIDParam(r)
		if !ok {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		proj, err := queues.ProjectQueue(ctx, productID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "product not found", http.StatusNotFound)
				return
			}
			log.Error("error projecting queue", slog.String("op", op), slog.Int64("product_id", productID), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, proj)
	}
}

func GetPhases(log *slog.Logger, phases PhaseCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production.get.GetPhases"

		productID, ok := productIDParam(r)
		if !ok {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		counts, err := phases.Counts(ctx, productID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "product not found", http.StatusNotFound)
				return
			}
			log.Error("error reading phase counts", slog.String("op", op), slog.Int64("product_id", productID), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, counts)
	}
}
