package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"cotizador/internal/exchange"
)

type RateProvider interface {
	Latest(ctx context.Context) (exchange.Rate, error)
}

func GetUSDRate(log *slog.Logger, rates RateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.exchange.get.GetUSDRate"

		ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
		defer cancel()

		rate, err := rates.Latest(ctx)
		if err != nil {
			log.Error("error getting exchange rate",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("error", err.Error()),
			)
			http.Error(w, "exchange rate unavailable", http.StatusBadGateway)
			return
		}

		render.JSON(w, r, rate)
	}
}
