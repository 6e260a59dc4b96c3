package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

type GenerateExcelHandler interface {
	ProductionQueueExcel(ctx context.Context, productIDs []int64) ([]byte, error)
}

func GenerateProductionExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateProductionExcel"

		raw := r.URL.Query()["product_id"]
		if len(raw) == 0 {
			http.Error(w, "product_id is required", http.StatusBadRequest)
			return
		}

		productIDs := make([]int64, 0, len(raw))
		for _, s := range raw {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil || id <= 0 {
				http.Error(w, "invalid product_id", http.StatusBadRequest)
				return
			}
			productIDs = append(productIDs, id)
		}

		// xlsx building takes longer than a regular read
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.ProductionQueueExcel(ctx, productIDs)
		if err != nil {
			log.Error("failed to generate excel", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("Cola_Produccion_%s.xlsx", time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		if _, err := w.Write(excelBytes); err != nil {
			log.Error("failed to write excel", slog.String("op", op), slog.String("error", err.Error()))
		}
	}
}
