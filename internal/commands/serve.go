package commands

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/config"
	"github.com/pwielgus/cashplan/internal/httpapi"
	"github.com/pwielgus/cashplan/internal/storage/memory"
	pgstore "github.com/pwielgus/cashplan/internal/storage/postgres"
	"github.com/pwielgus/cashplan/internal/storage/sqlite"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cfg.Logger()
	slog.SetDefault(logger)

	store, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Storage.Driver, "err", err)
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	logger.Info("storage backend: " + cfg.Storage.Driver)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.New(store, logger).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("cashplan listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
		return nil
	case err := <-errCh:
		logger.Error("server error", "err", err)
		return err
	}
}

func openStore(ctx context.Context, cfg config.Config) (budget.TxStore, func(), error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		st, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case "postgres":
		st, err := pgstore.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return memory.New(), nil, nil
	}
}
