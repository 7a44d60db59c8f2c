// Package main provides the disclosure sync service entry point.
// Executes: dispatch → fetch → normalize → reconcile → checkpoint
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"disclosure-sync/internal/config"
	"disclosure-sync/internal/dispatch"
	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/fmp"
	"disclosure-sync/internal/ingestion"
	"disclosure-sync/internal/observability"
	"disclosure-sync/internal/reconcile"
	"disclosure-sync/internal/storage"
	chstore "disclosure-sync/internal/storage/clickhouse"
	"disclosure-sync/internal/storage/memory"
	"disclosure-sync/internal/storage/migrations"
	pgstore "disclosure-sync/internal/storage/postgres"
	"disclosure-sync/internal/syncer"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to YAML config file")
	mode := flag.String("mode", "daily", "Sync mode: daily or backfill")
	apiKey := flag.String("api-key", "", "Provider API key (overrides config)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides config)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (overrides config)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	forceUpdate := flag.Bool("force-update", false, "Overwrite existing trades instead of skipping")
	syncInsiders := flag.Bool("insiders", false, "Include the corporate insider feed")
	maxPages := flag.Int("max-pages", 0, "Page crawl ceiling per source (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (overrides config)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[syncd] ", log.LstdFlags|log.Lshortfile)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}
	applyOverrides(cfg, *apiKey, *postgresDSN, *clickhouseDSN, *forceUpdate, *syncInsiders, *maxPages, *metricsAddr)

	// Backfill walks deeper into the feed and rewrites what it finds;
	// daily is the incremental, checkpointed run.
	switch *mode {
	case "daily":
		cfg.Sync.UseCheckpoints = true
	case "backfill":
		cfg.Sync.ForceUpdate = true
		cfg.Sync.UseCheckpoints = false
		if *maxPages == 0 {
			cfg.Sync.MaxPages = 4 * config.DefaultMaxPages
		}
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	if cfg.API.APIKey == "" {
		logger.Fatal("API key is required (set api.api_key or --api-key)")
	}

	// Start metrics server if enabled
	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", cfg.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	var traderStore storage.TraderStore = memory.NewTraderStore()
	var tickerStore storage.TickerStore = memory.NewTickerStore()
	var tradeStore storage.TradeStore = memory.NewTradeStore()
	var checkpointStore storage.CheckpointStore = memory.NewCheckpointStore()
	var activityStore storage.TradeActivityStore = memory.NewTradeActivityStore()

	if !*useMemory {
		if cfg.Database.PostgresDSN == "" {
			logger.Fatal("database.postgres_dsn is required when not using --use-memory")
		}

		pool, err := pgstore.NewPool(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("apply postgres migrations: %v", err)
		}

		traderStore = pgstore.NewTraderStore(pool)
		tickerStore = pgstore.NewTickerStore(pool)
		tradeStore = pgstore.NewTradeStore(pool)
		checkpointStore = pgstore.NewCheckpointStore(pool)

		// ClickHouse sink is optional; without it the run still persists
		// trades, we just lose the activity feed.
		if cfg.Database.ClickhouseDSN != "" {
			conn, err := chstore.NewConn(ctx, cfg.Database.ClickhouseDSN)
			if err != nil {
				logger.Fatalf("connect to clickhouse: %v", err)
			}
			defer conn.Close()

			if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
				logger.Fatalf("apply clickhouse migrations: %v", err)
			}

			activityStore = chstore.NewTradeActivityStore(conn)
		} else {
			activityStore = nil
		}
	}

	// Build the pipeline: dispatcher → client → fetcher → sources
	dispatcher := dispatch.New(dispatch.Options{
		Limits: dispatch.Limits{
			PerMinute: cfg.RateLimit.PerMinute,
			PerHour:   cfg.RateLimit.PerHour,
			PerDay:    cfg.RateLimit.PerDay,
		},
		Client:            &http.Client{Timeout: cfg.API.Timeout},
		InterRequestDelay: cfg.RateLimit.InterRequestDelay,
		MaxWait:           cfg.RateLimit.MaxWait,
		Logger:            logger,
	})
	dispatcher.Start(ctx)

	client := fmp.NewClient(cfg.API.BaseURL, cfg.API.APIKey, dispatcher)

	fetcher := ingestion.NewFetcher(ingestion.FetcherOptions{
		Client:   client,
		MaxPages: cfg.Sync.MaxPages,
		PageSize: cfg.Sync.PageSize,
		Policy:   ingestion.PagePolicy(cfg.Sync.PagePolicy),
		Logger:   logger,
	})

	sources := []ingestion.Source{
		ingestion.NewSenateSource(fetcher),
		ingestion.NewHouseSource(fetcher),
	}
	if cfg.Sync.SyncInsiders {
		sources = append(sources, ingestion.NewInsiderSource(fetcher))
	}

	engine := reconcile.New(reconcile.Options{
		Traders: traderStore,
		Tickers: tickerStore,
		Trades:  tradeStore,
		Logger:  logger,
	})

	s := syncer.New(syncer.Options{
		Sources:     sources,
		Engine:      engine,
		Checkpoints: checkpointStore,
		Activity:    activityStore,
		Logger:      logger,
	})

	// Handle shutdown signals: first signal stops cooperatively at the next
	// record boundary, second signal forces exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			logger.Printf("Received signal %v, stopping after current record...", sig)
			s.ForceStop()
			dispatcher.ClearQueue()
		case <-done:
			return
		}

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	logger.Printf("Starting %s sync (sources=%d force_update=%v checkpoints=%v)",
		*mode, len(sources), cfg.Sync.ForceUpdate, cfg.Sync.UseCheckpoints)

	result, err := s.Run(ctx, syncer.RunOptions{
		ForceUpdate:    cfg.Sync.ForceUpdate,
		UseCheckpoints: cfg.Sync.UseCheckpoints,
		BatchSize:      cfg.Sync.BatchSize,
		Progress: func(current, total int, source string) {
			if current%1000 == 0 || current == total {
				logger.Printf("%s: %d/%d records", source, current, total)
			}
		},
	})
	close(done)
	if err != nil {
		logger.Fatalf("Sync failed: %v", err)
	}

	printResult(result)
	if !result.Success {
		os.Exit(1)
	}
}

// loadConfig loads the YAML config, or starts from bare defaults when no
// file is given so flag-only invocations still work.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := &config.Config{}
		cfg.API.APIKey = os.Getenv("FMP_API_KEY")
		cfg.ApplyDefaults()
		return cfg, nil
	}
	return config.LoadAndValidate(path)
}

// applyOverrides lets flags win over file values.
func applyOverrides(cfg *config.Config, apiKey, postgresDSN, clickhouseDSN string, forceUpdate, syncInsiders bool, maxPages int, metricsAddr string) {
	if apiKey != "" {
		cfg.API.APIKey = apiKey
	}
	if postgresDSN != "" {
		cfg.Database.PostgresDSN = postgresDSN
	}
	if clickhouseDSN != "" {
		cfg.Database.ClickhouseDSN = clickhouseDSN
	}
	if forceUpdate {
		cfg.Sync.ForceUpdate = true
	}
	if syncInsiders {
		cfg.Sync.SyncInsiders = true
	}
	if maxPages > 0 {
		cfg.Sync.MaxPages = maxPages
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
}

// printResult outputs a human-readable sync summary.
func printResult(r *domain.SyncResult) {
	fmt.Println()
	fmt.Println("=== Sync Result ===")
	fmt.Printf("Success:    %v\n", r.Success)
	fmt.Printf("Processed:  %d\n", r.ProcessedCount)
	fmt.Printf("Created:    %d\n", r.CreatedCount)
	fmt.Printf("Updated:    %d\n", r.UpdatedCount)
	fmt.Printf("Skipped:    %d\n", r.SkippedCount)
	fmt.Printf("Duration:   %s\n", r.Duration.Round(time.Millisecond))
	if r.PagesFailed > 0 {
		fmt.Printf("Pages failed: %d\n", r.PagesFailed)
	}
	if len(r.Errors) > 0 {
		fmt.Printf("Errors:     %d\n", len(r.Errors))
		for i, e := range r.Errors {
			if i >= 10 {
				fmt.Printf("  ... and %d more\n", len(r.Errors)-10)
				break
			}
			fmt.Printf("  - %s\n", e.Error())
		}
	}
}
