package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/apex/log"

	"github.com/jengzang/geolife-backend-go/internal/config"
	"github.com/jengzang/geolife-backend-go/internal/report"
	"github.com/jengzang/geolife-backend-go/internal/service"
	"github.com/jengzang/geolife-backend-go/internal/store"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database file.")
	flag.StringVar(&cfg.StoreBackend, "backend", cfg.StoreBackend, "Store backend: sqlite or mongo.")
	only := flag.String("only", "", "Comma separated question numbers to answer, e.g. 1,7. Empty answers all.")
	flag.Parse()

	ids, err := report.ParseOnly(*only)
	if err != nil {
		log.Errorf("Invalid -only: %v", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := store.Open(ctx, cfg)
	if err != nil {
		log.Errorf("Cannot open the %s store: %v", cfg.StoreBackend, err)
		os.Exit(1)
	}
	defer s.Close()

	r := report.NewReporter(service.NewStatsService(s), os.Stdout)
	if err := r.Run(ctx, ids); err != nil {
		log.WithError(err).Error("report failed")
		s.Close()
		os.Exit(1)
	}
}
