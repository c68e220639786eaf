package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"

	"github.com/jengzang/geolife-backend-go/internal/config"
	"github.com/jengzang/geolife-backend-go/internal/ingest"
	"github.com/jengzang/geolife-backend-go/internal/store"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.DatasetPath, "dataset", cfg.DatasetPath, "Geolife dataset root (contains Data/ and labeled_ids.txt).")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database file.")
	flag.StringVar(&cfg.StoreBackend, "backend", cfg.StoreBackend, "Store backend: sqlite or mongo.")
	flag.IntVar(&cfg.IngestBatchSize, "batch", cfg.IngestBatchSize, "Trackpoints per bulk insert.")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := store.Open(ctx, cfg)
	if err != nil {
		log.Errorf("Cannot open the %s store: %v", cfg.StoreBackend, err)
		os.Exit(1)
	}
	defer s.Close()

	run, err := ingest.NewPipeline(s, cfg.IngestBatchSize).Run(ctx, cfg.DatasetPath)
	if err != nil {
		log.WithError(err).WithField("run", run.ID).Error("ingestion failed")
		s.Close()
		os.Exit(1)
	}

	log.Infof("Ingested %d users, %d activities, %d trackpoints (%d files skipped)",
		run.Users, run.Activities, run.TrackPoints, run.SkippedFiles)
}
