package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"relational-reports/internal/config"
	"relational-reports/internal/console"
	"relational-reports/internal/database"
	"relational-reports/internal/relational"
	"relational-reports/internal/webstore"
)

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()
	log.SetPrefix("webstore-console: ")

	configPath := flag.String("config", "config.yaml", "path to the YAML config file (empty for environment only)")
	provision := flag.Bool("provision", false, "create the web-store tables before starting")

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

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
	menu := console.StoreMenu(webstore.NewService(driver, logger), console.StoreDefaults{
		TopCustomers:     cfg.ReportSettings.TopCustomers,
		RecentWindowDays: cfg.ReportSettings.RecentWindowDays,
	})
	if err := console.Run(ctx, menu, os.Stdin, os.Stdout, logger); err != nil {
		log.Printf("Console stopped: %v", err)
		exitCode = 1
	}
}
