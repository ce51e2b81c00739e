package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tasklist/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// Library logging stays out of command output unless asked for.
	if os.Getenv("TASKCTL_DEBUG") == "" {
		log.SetOutput(io.Discard)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
