package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mhoran/mailsweep/internal/adapters/cachestore"
	"github.com/mhoran/mailsweep/internal/config"
	"github.com/mhoran/mailsweep/internal/core"
)

// CacheFactory creates cache stores based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{cfg: cfg, logger: logger}
}

// CreateCacheStore creates a cache store based on the configuration
func (f *CacheFactory) CreateCacheStore() (core.CacheStore, error) {
	cache := f.cfg.GetCache()
	switch cache.Type {
	case "csv":
		return cachestore.NewCSVStore(cache.CSVPath, f.logger), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cache.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cachestore.NewSQLiteStore(cache.SQLitePath, f.logger)
	case "mysql":
		return cachestore.NewMySQLStore(cache.MySQLDSN, f.logger)
	case "memory":
		return cachestore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cache.Type)
	}
}

// SaveInterval returns the configured cache save interval
func (f *CacheFactory) SaveInterval() int {
	return f.cfg.GetCache().SaveInterval
}
