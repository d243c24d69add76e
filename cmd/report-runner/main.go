package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"relational-reports/internal/archive"
	"relational-reports/internal/config"
	"relational-reports/internal/database"
	"relational-reports/internal/relational"
	"relational-reports/internal/runner"
	"relational-reports/internal/webstore"
)

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()
	log.SetPrefix("report-runner: ")

	configPath := flag.String("config", "config.yaml", "path to the YAML config file (empty for environment only)")
	iterations := flag.Int("iterations", 0, "runs of every report (0 uses report_settings.iterations)")
	provision := flag.Bool("provision", false, "create the web-store tables before running")
	timeout := flag.Duration("timeout", 5*time.Minute, "deadline of the whole run")

	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		exitCode = 1
		return
	}
	if err := cfg.Store.Validate("store"); err != nil {
		log.Printf("Invalid config: %v", err)
		exitCode = 1
		return
	}
	if err := cfg.Archive.Validate(); err != nil {
		log.Printf("Invalid config: %v", err)
		exitCode = 1
		return
	}
	if *iterations > 0 {
		cfg.ReportSettings.Iterations = *iterations
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	driver, err := database.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		log.Printf("Failed to connect to %s: %v", cfg.Store.Driver, err)
		exitCode = 1
		return
	}
	defer driver.Close()

	if *provision {
		if err := relational.Provision(ctx, driver, webstore.Schema); err != nil {
			log.Printf("Failed to provision database: %v", err)
			exitCode = 1
			return
		}
	}

	logger := log.Default()
	svc := webstore.NewService(driver, logger)
	reports := svc.Reports(webstore.ReportOptions{
		TopCustomers:     cfg.ReportSettings.TopCustomers,
		RecentWindowDays: cfg.ReportSettings.RecentWindowDays,
	})

	fmt.Printf("Running %d reports on %s...\n", len(reports), driver.Dialect())

	startedAt := time.Now()
	result, err := runner.Run(ctx, reports, cfg.ReportSettings.Iterations, logger)
	if err != nil {
		log.Printf("Report run failed: %v", err)
		exitCode = 1
		return
	}

	jsonOutput, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal result: %v", err)
		exitCode = 1
		return
	}
	fmt.Println(string(jsonOutput))

	if cfg.Archive.Enabled {
		id, err := archiveRun(ctx, cfg.Archive, archive.Run{
			Driver:     cfg.Store.Driver,
			StartedAt:  startedAt,
			Iterations: cfg.ReportSettings.Iterations,
			Result:     result,
		}, logger)
		if err != nil {
			log.Printf("Failed to archive run: %v", err)
			exitCode = 1
			return
		}
		fmt.Printf("Archived run %s\n", id)
	}
	if result.Errors > 0 {
		exitCode = 2
	}
}

func archiveRun(ctx context.Context, cfg config.Archive, run archive.Run, logger *log.Logger) (string, error) {
	mongo := &database.MongoDriver{}
	if err := mongo.Connect(ctx, cfg.URI, cfg.Database); err != nil {
		return "", fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		if err := mongo.Close(context.Background()); err != nil {
			logger.Printf("Failed to disconnect mongo: %v", err)
		}
	}()
	return archive.NewStore(mongo, logger).Save(ctx, run)
}
