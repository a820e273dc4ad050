package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"MiniCatalog/internal/app"
	"MiniCatalog/internal/cart"
	"MiniCatalog/internal/catalog"
	"MiniCatalog/internal/config"
	"MiniCatalog/internal/filestore"
	"MiniCatalog/pkg/kit"
)

const service = "catalog"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := kit.NewLogger(service, cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	log.Info("configuration loaded", zap.Stringer("config", cfg))

	if err := run(cfg, log); err != nil {
		log.Fatal("service stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := filestore.NewMetrics(reg)

	products, err := catalog.NewFileStore(cfg.Data.ProductsFile, filestore.Options{
		Log:     log,
		Metrics: storeMetrics,
	})
	if err != nil {
		return fmt.Errorf("open products: %w", err)
	}

	carts, err := cart.NewFileStore(cfg.Data.CartsFile, filestore.Options{
		Log:     log,
		Metrics: storeMetrics,
	})
	if err != nil {
		return fmt.Errorf("open carts: %w", err)
	}

	h := app.NewHandler(app.Deps{Products: products, Carts: carts}, app.HTTPDeps{
		Log:             log,
		Service:         service,
		Registry:        reg,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsToken:    cfg.Metrics.Token,
		WritesPerMinute: cfg.RateLimit.WritesPerMinute,
	})

	return kit.RunHTTPServer(ctx, kit.ServerConfig{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	}, h, log)
}
