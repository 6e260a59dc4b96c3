package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getadmin "cotizador/http-server/admin/get"
	upadmin "cotizador/http-server/admin/update"
	getexchange "cotizador/http-server/exchange/get"
	generate_excel "cotizador/http-server/generate-report/generate-excel"
	getproduction "cotizador/http-server/production/get"
	"cotizador/http-server/production/move"
	getquotation "cotizador/http-server/quotation/get"
	savequotation "cotizador/http-server/quotation/save"
	upquotation "cotizador/http-server/quotation/update"
	"cotizador/internal/config"
	"cotizador/internal/exchange"
	"cotizador/internal/middleware/auth"
	"cotizador/internal/service/eta"
	generate_excel2 "cotizador/internal/service/generate-excel"
	"cotizador/internal/service/production"
	"cotizador/internal/service/quotation"
	"cotizador/internal/storage/mysql"
)

type services struct {
	eta        *eta.Service
	production *production.Service
	quotation  *quotation.Service
	rates      *exchange.Banxico
	excel      *generate_excel2.GenerateExcelService
}

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage, svc services) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Bearer(log, cfg.JWTSecret))

			r.Get("/production/eta", getproduction.GetETA(log, svc.eta))
			r.Get("/production/queue/{productID}", getproduction.GetQueue(log, svc.eta))
			r.Get("/production/phases/{productID}", getproduction.GetPhases(log, svc.production))
			r.Post("/production/phases/move", move.MovePieces(log, svc.production))

			r.Post("/quotations", savequotation.CreateQuotation(log, svc.quotation))
			r.Get("/quotations", getquotation.ListQuotations(log, svc.quotation))
			r.Get("/quotations/{id}", getquotation.GetQuotation(log, svc.quotation))
			r.Put("/quotations/{id}/status", upquotation.UpdateStatus(log, svc.quotation))
			r.Post("/quotations/{id}/pay", upquotation.MarkPaid(log, svc.quotation))

			r.Get("/exchange/usd", getexchange.GetUSDRate(log, svc.rates))

			r.Get("/report/production/excel", generate_excel.GenerateProductionExcel(log, svc.excel))
		})

		adminRouter := chi.NewRouter()
		adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))
		adminRouter.Get("/products/capacity", getadmin.GetProductCapacityAdmin(log, storage))
		adminRouter.Put("/products/capacity", upadmin.UpdateProductCapacityAdmin(log, storage))

		r.Mount("/admin", adminRouter)
	})

	return router
}
