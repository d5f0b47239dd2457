/*-------------------------------------------------------------------------
 *
 * main.go
 *    Main entry point for the Loanzaar workflow server
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    cmd/workflow-server/main.go
 *
 *-------------------------------------------------------------------------
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

	"github.com/Vivekray898/loanzaar-server/internal/api"
	"github.com/Vivekray898/loanzaar-server/internal/auth"
	"github.com/Vivekray898/loanzaar-server/internal/config"
	"github.com/Vivekray898/loanzaar-server/internal/db"
	"github.com/Vivekray898/loanzaar-server/internal/memstore"
	"github.com/Vivekray898/loanzaar-server/internal/metrics"
	"github.com/Vivekray898/loanzaar-server/internal/projection"
	"github.com/Vivekray898/loanzaar-server/internal/workflow"
)

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func main() {
	var (
		showVersion      = flag.Bool("version", false, "Show version information")
		showVersionShort = flag.Bool("v", false, "Show version information (short)")
		configPath       = flag.String("c", "", "Path to configuration file")
		configPathLong   = flag.String("config", "", "Path to configuration file")
		showHelp         = flag.Bool("help", false, "Show help message")
		showHelpShort    = flag.Bool("h", false, "Show help message (short)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Loanzaar Workflow Server - loan application approval workflow\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    Start server with default configuration\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -c config.yaml     Start server with custom config file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --version          Show version information\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nConfiguration:\n")
		fmt.Fprintf(os.Stderr, "  Configuration can be provided via:\n")
		fmt.Fprintf(os.Stderr, "  - Command line flag: -c or --config\n")
		fmt.Fprintf(os.Stderr, "  - Environment variable: CONFIG_PATH\n")
		fmt.Fprintf(os.Stderr, "  - Environment variables (see config package for details)\n")
	}
	flag.Parse()

	/* Handle version flag */
	if *showVersion || *showVersionShort {
		fmt.Printf("loanzaar-workflow-server version %s\n", version)
		fmt.Printf("Build date: %s\n", buildDate)
		fmt.Printf("Git commit: %s\n", gitCommit)
		os.Exit(0)
	}

	/* Handle help flag */
	if *showHelp || *showHelpShort {
		flag.Usage()
		os.Exit(0)
	}

	/* Load configuration */
	cfg := config.DefaultConfig()

	/* Command line flag takes precedence over environment variable */
	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = *configPathLong
	}
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}

	if cfgPath != "" {
		var err error
		cfg, err = config.LoadConfig(cfgPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v, using defaults\n", err)
			cfg = config.DefaultConfig()
		}
	} else {
		/* Load from environment variables if no config file */
		config.LoadFromEnv(cfg)
	}

	/* Initialize logging */
	metrics.InitLogging(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Auth.JWTSecret == "" {
		fmt.Fprintf(os.Stderr, "FATAL: auth.jwt_secret is not configured (set LOANZAAR_JWT_SECRET)\n")
		os.Exit(1)
	}

	/* Assemble storage per the configured driver */
	var (
		store    api.Store
		health   api.HealthFunc
		database *db.DB
	)
	if cfg.Database.Driver == config.DriverMemory {
		store = memstore.NewStore()
		fmt.Println("Using in-memory storage driver")
	} else {
		connStr := cfg.Database.ConnString()

		connMaxIdleTime := 10 * time.Minute
		if cfg.Database.ConnMaxIdleTime > 0 {
			connMaxIdleTime = cfg.Database.ConnMaxIdleTime
		}

		var err error
		database, err = db.NewDB(connStr, db.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: Failed to connect to database: %v\n", err)
			fmt.Fprintf(os.Stderr, "Connection: host=%s port=%d user=%s dbname=%s\n",
				cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Database)
			os.Exit(1)
		}
		defer database.Close()

		/* Run migrations */
		migrationRunner, err := db.NewMigrationRunner(database.DB, cfg.Database.MigrationsDir)
		if err == nil {
			if err := migrationRunner.Run(context.Background()); err != nil {
				fmt.Printf("Warning: Migration failed: %v\n", err)
			}
		}

		queries := db.NewQueries(database.DB)
		queries.SetConnInfoFunc(database.GetConnInfoString)
		store = queries
		health = func(r *http.Request) error {
			return database.HealthCheck(r.Context())
		}
	}

	/* Initialize workflow components */
	projector := projection.NewProjector(store)
	feed := projection.NewFeed(projector)
	defer feed.Close()

	/* Cross-instance change propagation only applies to shared storage */
	if database != nil {
		if _, err := feed.AttachPostgres(database.DB, cfg.Database.ConnString()); err != nil {
			fmt.Printf("Warning: change-feed listener unavailable: %v\n", err)
		}
	}

	engine := workflow.NewEngine(store, feed)

	/* Initialize API */
	handlers := api.NewHandlers(store, engine, projector)
	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret)
	router := api.NewRouter(handlers, verifier, feed, projector, health)

	/* Start server */
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	/* Graceful shutdown */
	go func() {
		fmt.Printf("Server starting on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "FATAL: Server failed to start on %s: %v\n", addr, err)
			os.Exit(1)
		}
	}()

	/* Wait for interrupt signal */
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		fmt.Printf("Server forced to shutdown: %v\n", err)
	}

	fmt.Println("Server exited")
}
