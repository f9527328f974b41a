package main

import (
	"log/slog"
	"os"

	"github.com/Story91/Gambly/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	// Create and start stats server
	statsServer, err := server.NewStatsServer()
	if err != nil {
		slog.Error("Failed to create stats server", "error", err)
		os.Exit(1)
	}

	// Start server (blocks until shutdown)
	if err := statsServer.Start(); err != nil {
		slog.Error("Failed to start stats server", "error", err)
		os.Exit(1)
	}
}
