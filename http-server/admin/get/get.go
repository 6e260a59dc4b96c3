package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"cotizador/internal/storage"
)

type CapacityProvider interface {
	ListProductCapacities(ctx context.Context) ([]storage.ProductCapacity, error)
}

func GetProductCapacityAdmin(log *slog.Logger, caps CapacityProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.GetProductCapacityAdmin"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		products, err := caps.ListProductCapacities(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("error reading product capacities")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		if products == nil {
			products = []storage.ProductCapacity{}
		}

		render.JSON(w, r, products)
	}
}
