// Package store opens the configured store backend.
package store

import (
	"context"
	"fmt"

	"github.com/jengzang/geolife-backend-go/internal/config"
	"github.com/jengzang/geolife-backend-go/internal/repository"
	"github.com/jengzang/geolife-backend-go/internal/repository/mongorepo"
)

// Open returns the store selected by cfg.StoreBackend
func Open(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite, "":
		s, err := repository.OpenSQLStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMongo:
		s, err := mongorepo.Open(ctx, mongorepo.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
