package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"gallerykit/internal/events"
	"gallerykit/internal/models"
	"gallerykit/internal/server"
	"gallerykit/internal/storage"
)

func main() {
	cfg, err := models.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var store storage.GalleryStore
	if cfg.DatabaseURL != "" {
		db, err := storage.NewStorage(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to init storage: %v", err)
		}
		defer db.Close()
		store = db
	} else {
		log.Println("no database_url configured, using in-memory store")
		store = storage.NewMemoryStore()
	}

	notifier := events.NewNotifier(cfg.KafkaBroker, cfg.KafkaTopic)
	defer notifier.Close()

	srv := server.NewServer(cfg, store, notifier)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	srv.Stop()
}
