package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/errlog"
	"storefront/internal/server"
	"storefront/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)

	rows, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer rows.Close()

	objects, err := storage.New(ctx, cfg.Storage())
	if err != nil {
		return err
	}

	authSvc := auth.New(rows)
	if cfg.DevMode {
		if err := seedDevCredential(ctx, rows, authSvc); err != nil {
			return err
		}
	}

	handler := server.New(server.Deps{
		Store:             rows,
		Objects:           objects,
		Auth:              authSvc,
		ErrLog:            errlog.New(cfg.ErrorLogDir),
		SessionSecret:     cfg.SessionSecret,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		CORSOrigins:       cfg.CORSOrigins,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedDevCredential gives a fresh dev store the admin/admin123 login.
func seedDevCredential(ctx context.Context, rows catalog.Store, a *auth.Service) error {
	if _, err := rows.Credential(ctx); err == nil {
		return nil
	} else if !errors.Is(err, catalog.ErrNotFound) {
		return err
	}
	log.Println("DEV_MODE=true: admin login is admin / admin123")
	return a.SetCredentials(ctx, "admin", "admin123")
}
