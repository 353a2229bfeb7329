package template

import (
	"context"
	"fmt"
	"strings"

	"github.com/foxzi/emailbuilder/internal/config"
)

// Store persists templates. Implementations are safe for concurrent use;
// each create and update is atomic for the single record it touches.
type Store interface {
	// List returns all templates in backend order
	List(ctx context.Context) ([]*Template, error)
	// Create validates and inserts a new template
	Create(ctx context.Context, f Fields) (*Template, error)
	// UpdateByID replaces title, content and image of an existing template
	UpdateByID(ctx context.Context, id string, f Fields) (*Template, error)
	// Close releases the backend connection
	Close() error
}

// Open connects the backend selected by cfg.Driver
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.StoreDriverBolt:
		return NewBoltStore(strings.TrimPrefix(cfg.URL, "bolt://"))
	case config.StoreDriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		return NewMongoStore(connectCtx, cfg.URL, cfg.Database, cfg.Collection)
	case config.StoreDriverPostgREST:
		return NewPostgRESTStore(cfg.URL, cfg.APIKey, cfg.Collection)
	case config.StoreDriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		return NewPostgresStore(connectCtx, cfg.URL, cfg.Collection)
	case config.StoreDriverRedis:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		return NewRedisStore(connectCtx, cfg.URL, cfg.Collection)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
