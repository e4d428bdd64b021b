package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/logger"
	"github.com/Nand2004/GeoConnect-sub000/internal/server"
)

// @title GeoConnect API
// @version 1.0
// @description Chats, events and nearby discovery for the GeoConnect app

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	configPath := flag.String("config", filepath.Join("configs", "config.yaml"), "path to the YAML config file")
	flag.Parse()

	srv, err := server.NewServer(context.Background(), *configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
