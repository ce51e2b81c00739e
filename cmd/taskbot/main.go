package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"tasklist/internal/api"
	"tasklist/internal/bot"
	"tasklist/internal/config"
	"tasklist/internal/store"
	"tasklist/internal/task"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the config file")
	flag.Parse()

	log.Println("Starting task service...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.HTTP.Enabled && !cfg.Discord.Enabled {
		log.Fatal("Nothing to run: enable http and/or discord in the config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	taskStore, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open task store: %v", err)
	}
	svc := task.NewService(taskStore)

	sup := newSupervisor()
	operations := map[string]gfshutdown.Operation{}

	if cfg.HTTP.Enabled {
		server := api.New(svc)
		sup.run("[api] HTTP server", func() error {
			return server.Start(cfg.HTTP.Addr)
		})
		operations["http-api"] = func(ctx context.Context) error {
			sup.stop()
			return server.Shutdown(ctx)
		}
	}

	if cfg.Discord.Enabled {
		discordBot, err := bot.New(cfg.Discord, svc)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		go func() {
			if err := discordBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Error running bot: %v", err)
			}
		}()
		operations["discord-bot"] = func(context.Context) error {
			cancel()
			return discordBot.Shutdown()
		}
	}

	// A front end that fails to start triggers the same shutdown as a signal.
	wait := gfshutdown.GracefulShutdown(sup.ctx, cfg.ShutdownTimeout, operations)
	exitCode := sup.exitCode(<-wait)

	// Front ends are stopped, nothing uses the store any more.
	taskStore.Close()
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
