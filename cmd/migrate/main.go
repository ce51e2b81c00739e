package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"tasklist/internal/config"
	"tasklist/internal/db"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Store.Driver != config.DriverPostgres {
		log.Fatalf("Migrations only apply to the postgres store, config selects %q", cfg.Store.Driver)
	}

	// Connect to database
	sqlDB, err := sql.Open("postgres", cfg.Database.ConnString())
	if err != nil {
		log.Fatalf("Unable to open database: %v", err)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}

	applied, err := db.Migrate(ctx, sqlDB)
	if err != nil {
		log.Fatalf("Error executing migrations: %v", err)
	}

	if len(applied) == 0 {
		log.Println("Database is up to date")
		return
	}
	log.Printf("Migration completed successfully (%d applied)", len(applied))
}
