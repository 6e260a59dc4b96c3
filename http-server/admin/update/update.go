package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"cotizador/internal/storage"
)

type UpdateCapacityProvider interface {
	UpdateProductCapacities(ctx context.Context, caps []storage.ProductCapacity) error
}

type Response struct {
	Updated int    `json:"updated"`
	Status  string `json:"status"`
}

func UpdateProductCapacityAdmin(log *slog.Logger, update UpdateCapacityProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.UpdateProductCapacityAdmin"

		var caps []storage.ProductCapacity
		if err := json.NewDecoder(r.Body).Decode(&caps); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if len(caps) == 0 {
			http.Error(w, "no capacities to update", http.StatusBadRequest)
			return
		}
		for _, c := range caps {
			if c.ID <= 0 || c.VueltasMaxDia < 0 {
				http.Error(w, "invalid product capacity", http.StatusBadRequest)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := update.UpdateProductCapacities(ctx, caps); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "product not found", http.StatusNotFound)
				return
			}
			log.Error("error updating product capacities", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("product capacities updated", slog.String("op", op), slog.Int("count", len(caps)))

		render.JSON(w, r, Response{Updated: len(caps), Status: "ok"})
	}
}
