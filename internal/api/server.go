package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jengzang/coolparks-go/internal/analysis"
	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/database"
	"github.com/jengzang/coolparks-go/internal/service"
	"github.com/jengzang/coolparks-go/pkg/metrics"
)

// Serve runs the HTTP API until ctx is cancelled, then cancels the active
// runs and shuts the server down.
func Serve(ctx context.Context, cfg *config.Config) error {
	table, err := coefficients.Load(cfg.Coefficients)
	if err != nil {
		return err
	}
	if err := table.Validate(cfg.TimesOfDay); err != nil {
		return fmt.Errorf("invalid coefficients: %w", err)
	}

	if err := database.Init(database.Config{Path: cfg.Server.DBPath}); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	m := metrics.NewCollector("coolparks")
	runs := service.NewRunService(database.GetDB(), analysis.NewPipeline(cfg, table, m), m, cfg.Server.OutputDir)
	if err := runs.Recover(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           SetupRouter(cfg, runs, m),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		runs.Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	runs.Shutdown()
	return err
}
