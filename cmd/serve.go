package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/wax/internal/server"
	"github.com/desertthunder/wax/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the admin API, upload store and public pages on one listener.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		r.config.Server.Port = port
	}

	service, err := r.catalog()
	if err != nil {
		return err
	}

	uploads, err := server.NewUploadStore(r.config.Server.UploadsDir)
	if err != nil {
		return fmt.Errorf("failed to prepare uploads directory: %w", err)
	}

	site, err := web.NewSite(service, r.config.Site, r.logger)
	if err != nil {
		return fmt.Errorf("failed to build site: %w", err)
	}

	router := server.NewBasicRouter()
	router.Use(
		server.Logging(r.logger),
		server.RateLimit(r.config.Server.RateLimit, r.config.Server.RateLimitBurst),
	)
	router.Handler(server.NewCatalogHandler(service, uploads, r.logger))
	router.Handle(http.MethodGet, "/uploads/",
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploads.Dir()))))
	router.Handler(site)

	httpServer := &http.Server{
		Addr:    r.config.Server.Addr(),
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("serving catalog at %v", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-signalCtx.Done():
		r.logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}

	return nil
}
