package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"tracking-dashboard/config"
	"tracking-dashboard/web"
)

func main() {
	// Parse command line flags
	var port, configPath string
	flag.StringVar(&port, "port", "8080", "Port to run the server on")
	flag.StringVar(&configPath, "config", "config.json", "Path to the configuration file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("loading configuration", zap.Error(err))
	}
	if len(cfg.Projects) == 0 {
		logger.Fatal("no projects configured; create config.json or set PROJECT_* environment variables")
	}

	// Create and start the server
	server := web.NewServer(cfg, logger)
	server.Start(port)
}
