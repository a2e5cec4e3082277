/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Warp Lead-Time Engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Create decision engine with in-memory cache
  4. Create API handler and configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port           HTTP server port (default: 8080, env PORT)
  -db             SQLite database path (default: leadtime.db, env DATABASE_PATH)
                  Use ":memory:" for in-memory database
  -currency       Currency code for pricing responses (default: INR, env CURRENCY)
  -fallback-days  Standard lead time used when data is unavailable
                  (default: 7, env FALLBACK_DAYS)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/leadtime.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port with another currency
  ./server -port=3000 -currency=USD

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - leadtime/engine.go: Decision engine
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/leadtime-engine/api"
	"github.com/warp/leadtime-engine/cache"
	"github.com/warp/leadtime-engine/leadtime"
	"github.com/warp/leadtime-engine/store/sqlite"
)

func main() {
	// .env is optional; flags override environment.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "leadtime.db"), "SQLite database path")
	currency := flag.String("currency", envStr("CURRENCY", "INR"), "Currency code for pricing responses")
	fallbackDays := flag.Int("fallback-days", envInt("FALLBACK_DAYS", 7), "Standard lead time when data is unavailable")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize engine
	engine := leadtime.New(store, cache.NewMemory(), leadtime.Config{
		Currency:     *currency,
		FallbackDays: *fallbackDays,
	}, logger)

	// Create router
	handler := api.NewHandler(store, engine, logger)
	router := api.NewRouter(handler)

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
		log.Printf("📊 API available at http://localhost:%d/api", *port)
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
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
