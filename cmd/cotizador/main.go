package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"cotizador/internal/config"
	"cotizador/internal/exchange"
	"cotizador/internal/service/eta"
	generate_excel "cotizador/internal/service/generate-excel"
	"cotizador/internal/service/production"
	"cotizador/internal/service/quotation"
	"cotizador/internal/storage/mysql"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const errorLogFile = "errors.log"

func main() {
	cfg := config.MustConfig()

	log := setupLogger(cfg.Env, os.Stdout, errorLogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := mysql.New(ctx, cfg.DB)
	if err != nil {
		log.Error("failed to open db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	rates := exchange.NewBanxico(
		log,
		cfg.Banxico.BaseURL,
		cfg.Banxico.Token,
		cfg.Banxico.CacheTTL,
		decimal.NewFromFloat(cfg.Banxico.DefaultRate),
	)

	svc := services{
		eta:        eta.NewService(storage),
		production: production.NewService(log, storage),
		quotation:  quotation.NewService(log, storage, rates, decimal.NewFromFloat(cfg.TaxRate)),
		rates:      rates,
	}
	svc.excel = generate_excel.NewGenerateService(svc.eta)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, storage, svc),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop server", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

type dualHandler struct {
	coreHandler  slog.Handler
	errorHandler slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.coreHandler.Enabled(ctx, lvl) || h.errorHandler.Enabled(ctx, lvl)
}

func (h *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error

	if h.coreHandler.Enabled(ctx, r.Level) {
		if err = h.coreHandler.Handle(ctx, r); err != nil {
			return err
		}
	}

	// errors are mirrored to the error file; a failed file write must not break the main output
	if r.Level >= slog.LevelError && h.errorHandler.Enabled(ctx, r.Level) {
		_ = h.errorHandler.Handle(ctx, r.Clone())
	}

	return err
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithAttrs(attrs),
		errorHandler: h.errorHandler.WithAttrs(attrs),
	}
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithGroup(name),
		errorHandler: h.errorHandler.WithGroup(name),
	}
}

func setupLogger(env string, out io.Writer, errorPath string) *slog.Logger {
	level := slog.LevelDebug
	if env == envProd {
		level = slog.LevelInfo
	}

	var coreHandler slog.Handler
	switch env {
	case envDev:
		coreHandler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case envLocal, envProd:
		coreHandler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	default:
		coreHandler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}

	errorFile, err := os.OpenFile(errorPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		logger := slog.New(coreHandler)
		logger.Warn("cannot open error log file", slog.String("path", errorPath), slog.String("error", err.Error()))
		return logger
	}

	errorHandler := slog.NewTextHandler(errorFile, &slog.HandlerOptions{Level: slog.LevelError})

	return slog.New(&dualHandler{
		coreHandler:  coreHandler,
		errorHandler: errorHandler,
	})
}
