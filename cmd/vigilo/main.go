package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/app"
	"github.com/ternarybob/vigilo/internal/common"
	"github.com/ternarybob/vigilo/internal/server"
	"github.com/ternarybob/vigilo/internal/services/pipeline"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// One-shot modes
	runCollect = flag.Bool("collect", false, "Run one monitoring cycle and exit")
	queryText  = flag.String("query", "", "Answer a natural language query against stored documents and exit")
	recipients = flag.String("recipients", "", "Comma-separated recipient override for -collect email delivery")
	noEmail    = flag.Bool("no-email", false, "Skip email delivery during -collect")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Vigilo version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Merge port flags (shorthand takes precedence)
	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	var err error

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("vigilo.toml"); err == nil {
			configFiles = append(configFiles, "vigilo.toml")
		} else if _, err := os.Stat("deployments/local/vigilo.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/vigilo.toml")
		}
	}

	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, finalPort, *serverHost)

	logger = common.InitLogger(config)

	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Int("port", config.Server.Port).
		Str("host", config.Server.Host).
		Str("llm_provider", string(config.LLM.Provider)).
		Msg("Application configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// One-shot modes exit without starting the server
	if *runCollect {
		os.Exit(collectOnce(application))
	}
	if *queryText != "" {
		os.Exit(queryOnce(application, *queryText))
	}

	serve(application)
}

// collectOnce runs a single monitoring cycle and reports the outcome
func collectOnce(application *app.App) int {
	opts := pipeline.Options{
		SendEmail: !*noEmail,
	}
	if *recipients != "" {
		for _, addr := range strings.Split(*recipients, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				opts.Recipients = append(opts.Recipients, addr)
			}
		}
	}

	run, err := application.Pipeline.Run(context.Background(), opts)
	if err != nil {
		logger.Error().Err(err).Msg("Monitoring cycle failed")
		return 1
	}

	logger.Info().
		Str("run_id", run.ID).
		Int("documents", run.Documents.Count()).
		Int("analyses", len(run.Analyses)).
		Bool("email_sent", run.EmailSent).
		Msg("Monitoring cycle complete")

	if run.Error != "" {
		logger.Warn().Str("error", run.Error).Msg("Monitoring cycle completed with errors")
		return 1
	}
	return 0
}

// queryOnce answers a natural language query against stored documents
func queryOnce(application *app.App, text string) int {
	docs, err := application.StorageManager.DocumentStorage().GetAllDocuments()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load stored documents")
		return 1
	}

	if docs.Count() == 0 {
		logger.Warn().Msg("No stored documents found, run with -collect first")
	}

	spec, results := application.QueryService.ProcessQuery(context.Background(), text, docs)

	output, err := json.MarshalIndent(map[string]interface{}{
		"query":   text,
		"spec":    spec,
		"results": results,
		"count":   len(results),
	}, "", "  ")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode query results")
		return 1
	}

	fmt.Println(string(output))
	return 0
}

// serve runs the HTTP server until interrupted
func serve(application *app.App) {
	if config.Scheduler.Enabled {
		if err := application.Scheduler.Start(config.Scheduler.Schedule); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	srv := server.New(application)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Fatal().Str("panic", fmt.Sprintf("%v", r)).Msg("Server goroutine panicked")
			}
		}()

		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Give goroutine a moment to start
	time.Sleep(100 * time.Millisecond)

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Interrupt signal received, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}
