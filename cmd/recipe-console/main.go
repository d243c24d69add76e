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
	"relational-reports/internal/recipes"
	"relational-reports/internal/relational"
)

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()
	log.SetPrefix("recipe-console: ")

	configPath := flag.String("config", "config.yaml", "path to the YAML config file (empty for environment only)")
	provision := flag.Bool("provision", false, "create the recipe tables before starting")

	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		exitCode = 1
		return
	}
	if err := cfg.Recipes.Validate("recipes"); err != nil {
		log.Printf("Invalid config: %v", err)
		exitCode = 1
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	driver, err := database.Open(ctx, cfg.Recipes.Driver, cfg.Recipes.DSN)
	if err != nil {
		log.Printf("Failed to connect to %s: %v", cfg.Recipes.Driver, err)
		exitCode = 1
		return
	}
	defer driver.Close()

	if *provision {
		if err := relational.Provision(ctx, driver, recipes.Schema); err != nil {
			log.Printf("Failed to provision database: %v", err)
			exitCode = 1
			return
		}
	}

	logger := log.Default()
	menu := console.RecipeMenu(recipes.NewService(driver, logger))
	if err := console.Run(ctx, menu, os.Stdin, os.Stdout, logger); err != nil {
		log.Printf("Console stopped: %v", err)
		exitCode = 1
	}
}
