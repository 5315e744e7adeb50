package main

import (
	"log/slog"

	"github.com/joho/godotenv"
)

func main() {
	// a .env file is optional; real environment variables win
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	Execute()
}
