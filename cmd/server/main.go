/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the POS engine server. Handles configuration,
  store selection, dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load configuration
  2. Initialize the selected store backend
  3. Wire ledger + catalog services and the API handler
  4. Configure the HTTP router (plus optional tracing middleware)
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (optional)
  -port    Override the configured HTTP port

STORE BACKENDS (config "store"):
  memory   In-memory, lost on restart (dev)
  sqlite   SQLite file; ":memory:" works too (default)
  redis    Whole-ledger JSON blobs under fixed keys
  rest     Remote CRUD endpoint (mock REST server)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Flush tracing, close the store
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - internal/config: Configuration layers
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/tiendita/pos-engine/api"
	"github.com/tiendita/pos-engine/catalog"
	"github.com/tiendita/pos-engine/internal/config"
	"github.com/tiendita/pos-engine/internal/telemetry"
	"github.com/tiendita/pos-engine/ledger"
	memstore "github.com/tiendita/pos-engine/ledger/store"
	"github.com/tiendita/pos-engine/store/redisblob"
	"github.com/tiendita/pos-engine/store/rest"
	"github.com/tiendita/pos-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	port := flag.Int("port", 0, "override HTTP server port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	shutdownTracing, err := telemetry.Setup(cfg.Tracing, "pos-engine")
	if err != nil {
		log.Fatal("failed to set up tracing", zap.Error(err))
	}

	saleStore, productStore, closeStore, err := buildStores(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize store", zap.String("backend", cfg.Store), zap.Error(err))
	}
	defer closeStore()

	led := ledger.NewLedger(saleStore)
	cat := catalog.NewService(productStore)
	handler := api.NewHandler(led, cat, log)

	var root http.Handler = api.NewRouter(handler, cfg.CORSOrigins)
	if cfg.Tracing {
		root = otelhttp.NewHandler(root, "pos-engine")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("store", cfg.Store),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Error("tracing shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildStores selects the persistence backend for sales and products.
func buildStores(cfg config.Config, log *zap.Logger) (ledger.SaleStore, catalog.ProductStore, func(), error) {
	noop := func() {}

	switch cfg.Store {
	case config.StoreMemory:
		return memstore.NewMemory(), catalog.NewMemoryStore(), noop, nil

	case config.StoreSQLite:
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, noop, err
		}
		return st, st, func() { st.Close() }, nil

	case config.StoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st, err := redisblob.New(ctx, cfg.RedisURL, cfg.RedisPrefix, log)
		if err != nil {
			return nil, nil, noop, err
		}
		return st, st, func() { st.Close() }, nil

	case config.StoreREST:
		st := rest.New(cfg.RESTBaseURL, log)
		return st, st, noop, nil
	}

	return nil, nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store)
}
