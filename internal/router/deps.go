package router

import (
	"fmt"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/media"
	"github.com/anonto42/yatube/pkg/config"
)

// NewCache builds the page cache selected by CACHE_BACKEND.
func NewCache(cfg *config.Config) (cache.Cache, func(), error) {
	switch cfg.CacheBackend {
	case "redis":
		client, err := config.NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisCache(client, cache.Namespace), func() { client.Close() }, nil
	case "memory":
		return cache.NewMemoryCache(cache.RealClock{}), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// NewStorage builds the media storage selected by MEDIA_BACKEND.
func NewStorage(cfg *config.Config, db *config.DB) (media.Storage, error) {
	switch cfg.MediaBackend {
	case "gridfs":
		if db.Mongo == nil {
			return nil, fmt.Errorf("gridfs media backend needs a MongoDB connection")
		}
		return media.NewGridFSStorage(db.Mongo.Database(cfg.MongoDatabase), "media")
	case "local":
		return media.NewLocalStorage(cfg.MediaRoot)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}
}
