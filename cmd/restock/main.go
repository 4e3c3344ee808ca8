package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"restock/internal/config"
	"restock/internal/logger"
	"restock/internal/server"
)

var (
	port    = flag.Int("port", 0, "listen port (only used when config.toml sets none)")
	devMode = flag.Bool("dev", false, "development mode")
	dataDir = flag.String("dataDir", "", "data directory (overrides the config file)")
)

func main() {
	flag.Parse()

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	log := logger.New(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    cfg.Log.Output,
		Component: "restock",
	})
	defer log.Close()

	log.Info("configuration loaded", "path", info.Path, "file_found", info.FileFound, "driver", cfg.Database.Driver)

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		log.Info("listening", "addr", addr, "dev_mode", cfg.Server.DevMode)
		if err := srv.Run(addr); err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := srv.SaveNow(); err != nil {
		log.Error("backup before exit failed", "error", err)
	}
	if err := srv.Close(); err != nil {
		log.Error("failed to close store", "error", err)
	}
}
