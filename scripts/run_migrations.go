package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/safar/shop-ledger/internal/config"
	"github.com/safar/shop-ledger/internal/database"
	"github.com/safar/shop-ledger/migrations"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/run_migrations.go [up|down [steps]|status]")
	}

	direction := os.Args[1]
	if direction != "up" && direction != "down" && direction != "status" {
		log.Fatal("Direction must be 'up', 'down' or 'status'")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch direction {
	case "up":
		applied, err := database.MigrateUp(ctx, db, migrations.Files)
		for _, v := range applied {
			log.Printf("Applied migration %06d", v)
		}
		if err != nil {
			log.Fatalf("Migrate up: %v", err)
		}
		log.Printf("Successfully ran %d migration(s) up", len(applied))

	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 1 {
				log.Fatalf("Steps must be a positive integer, got %q", os.Args[2])
			}
		}

		reverted, err := database.MigrateDown(ctx, db, migrations.Files, steps)
		for _, v := range reverted {
			log.Printf("Reverted migration %06d", v)
		}
		if err != nil {
			log.Fatalf("Migrate down: %v", err)
		}
		log.Printf("Successfully ran %d migration(s) down", len(reverted))

	case "status":
		versions, err := database.AppliedVersions(ctx, db)
		if err != nil {
			log.Fatalf("Read migration status: %v", err)
		}
		log.Printf("Applied versions: %v", versions)
	}
}
