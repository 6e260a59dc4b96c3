package move

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"cotizador/internal/service/production"
	"cotizador/internal/storage"
)

type PieceMover interface {
	MovePieces(ctx context.Context, m production.Move) (*production.MoveResult, error)
}

type Request struct {
	ProductID int64  `json:"product_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Quantity  int    `json:"quantity"`
}

func MovePieces(log *slog.Logger, mover PieceMover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production.move.MovePieces"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if req.ProductID <= 0 {
			http.Error(w, "product_id is required", http.StatusBadRequest)
			return
		}

		from, err := production.ParsePhase(req.From)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		to, err := production.ParsePhase(req.To)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		res, err := mover.MovePieces(ctx, production.Move{
			ProductID: req.ProductID,
			From:      from,
			To:        to,
			Quantity:  req.Quantity,
		})
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				http.Error(w, "product not found", http.StatusNotFound)
			case errors.Is(err, production.ErrInsufficientPieces):
				http.Error(w, "not enough pieces in source phase", http.StatusConflict)
			case errors.Is(err, production.ErrInvalidTransition),
				errors.Is(err, production.ErrInvalidQuantity),
				errors.Is(err, production.ErrUnknownPhase):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				log.Error("error moving pieces", slog.String("op", op), slog.Any("request", req), slog.String("error", err.Error()))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, r, res)
	}
}
