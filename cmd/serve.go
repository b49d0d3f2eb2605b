package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/onlyhub/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve exposes the catalog as read-only JSON until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	srv := server.New(cfg, r.router(cmd.String("cors-origin"), cmd.Float("rate"), cmd.Int("burst")), r.logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.writePlain("Serving catalog on http://%s/api/catalog\n", srv.Addr())
	return srv.ListenAndServe(ctx)
}

func (r *Runner) router(origin string, perSecond float64, burst int) *server.BasicRouter {
	router := server.NewBasicRouter()
	router.Use(
		server.Recover(r.logger),
		server.Logging(r.logger),
		server.CORS(origin),
		server.RateLimit(perSecond, burst),
	)
	router.Handler(server.NewCatalogHandler(r.catalog, r.online(), r.logger))
	return router
}
