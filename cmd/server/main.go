/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the stock ledger HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment config, then parse command-line flags
  2. Initialize SQLite store and the ledger
  3. Attach the Redis mirror and its resync scheduler (optional)
  4. Seed a demo scenario into an empty catalog (optional)
  5. Configure HTTP router and start server with graceful shutdown

COMMAND-LINE FLAGS (default from environment):
  -port    HTTP server port (STOCK_PORT, default: 8080)
  -db      SQLite database path (STOCK_DB, default: stock.db)
           Use ":memory:" for in-memory database
  -redis   Redis URL for the stock mirror (STOCK_REDIS_URL, empty: disabled)
  -seed    Scenario to load when the catalog is empty (STOCK_SEED)
  -cors    Comma separated allowed origins (STOCK_CORS_ORIGINS)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the resync scheduler, close Redis and the database
  4. Exit

EXAMPLES:
  # Run with in-memory database and demo data
  ./server -db=":memory:" -seed=demo

  # Mirror stock into a local Redis
  ./server -redis="redis://localhost:6379/0"

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment variables
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/warp/stock-ledger/api"
	"github.com/warp/stock-ledger/config"
	"github.com/warp/stock-ledger/inventory"
	"github.com/warp/stock-ledger/mirror"
	"github.com/warp/stock-ledger/store/sqlite"
)

func main() {
	cfg := config.Load()

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	redisURL := flag.String("redis", cfg.RedisURL, "Redis URL for the stock mirror (empty disables it)")
	seed := flag.String("seed", cfg.Seed, "Scenario to load when the catalog is empty")
	origins := flag.String("cors", strings.Join(cfg.CORSOrigins, ","), "Comma separated allowed CORS origins")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ledger := inventory.NewLedger(store)

	// Optional Redis mirror
	var resync *api.ResyncScheduler
	if *redisURL != "" {
		m, err := mirror.NewRedisMirror(*redisURL)
		if err != nil {
			log.Printf("Warning: Redis mirror disabled: %v", err)
		} else {
			defer m.Close()
			ledger.Observe(m)
			resync = api.NewResyncScheduler(ledger, m)
			resync.Start()
			log.Printf("🔁 Mirroring stock to %s", *redisURL)
		}
	}

	if *seed != "" {
		loaded, err := api.Seed(context.Background(), ledger, *seed)
		if err != nil {
			log.Printf("Warning: Failed to seed %q: %v", *seed, err)
		} else if loaded {
			log.Printf("🌱 Loaded scenario %q", *seed)
		}
	}

	handler := api.NewHandler(ledger)
	router := api.NewRouter(handler, config.SplitList(*origins)...)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📦 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if resync != nil {
		resync.Stop()
	}

	log.Println("Server stopped")
}
