package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/crossstore/hub/internal/infrastructure/config"
	"github.com/crossstore/hub/internal/server"
)

func main() {
	cfg := config.LoadOrDefault()

	// Flags override the environment.
	port := flag.String("port", cfg.Server.Port, "Server port")
	permsPath := flag.String("permissions", cfg.Permissions.Path, "Permission table file (.yaml/.toml/.json)")
	persist := flag.Bool("persist", cfg.Storage.Persist, "Persist the default store across restarts")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Permissions.Path = *permsPath
	cfg.Storage.Persist = *persist

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
