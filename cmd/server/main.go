// Command main is the entry point for the HabitNavi webhook server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitnavi/internal/bootstrap"
	"habitnavi/internal/config"
	"habitnavi/internal/line"
	"habitnavi/internal/observability"
	"habitnavi/internal/server"
)

func main() {
	seedDemo := flag.Bool("seed", false, "seed demo data before starting (development/test only)")
	seedUsers := flag.Int("seed-users", 10, "number of demo users to seed with -seed")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize tracing early so startup paths are covered
	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "habitnavi",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{
		SeedDemoData: *seedDemo,
		SeedUsers:    *seedUsers,
	})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	messenger, err := line.NewClient(cfg.LineChannelToken)
	if err != nil {
		log.Fatalf("Failed to create messaging client: %v", err)
	}

	// Create server with dependency injection
	srv, err := server.NewServerWithDeps(cfg, db, redisClient, messenger)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	// Start server (blocks until shutdown)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
