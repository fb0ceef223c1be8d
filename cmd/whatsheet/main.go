package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/whatsheet/whatsheet/internal/api"
	"github.com/whatsheet/whatsheet/internal/config"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadAll()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.sched.Stop()

	logger.Info("whatsheet starting",
		"teamMember", cfg.Operator.TeamMember,
		"bulkSheet", cfg.Sheets.BulkSheet,
		"queueSheet", cfg.Sheets.QueueSheet,
		"redis", cfg.Redis.Enabled,
	)

	if cfg.Server.Address != "" {
		srv := &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           loggingMiddleware(api.Router(api.NewHandler(a.sched, a, a.channel))),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("control api listening", "addr", cfg.Server.Address)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("control api failed", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := a.runMenu(ctx, os.Stdin, os.Stdout); err != nil && err != context.Canceled {
		logger.Error("menu loop failed", "error", err)
		os.Exit(1)
	}

	logger.Info("shutting down")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
