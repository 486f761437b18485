// Package docstore is an in-process document store: upsert by ID, lookup by
// ID and predicate search over title prefixes, content substrings, author IDs
// and an inclusive creation-time range.
//
//	store := docstore.New()
//	doc, _ := store.Save(ctx, &docstore.Document{Title: "Notes"})
//	hits, _ := store.Search(ctx, docstore.SearchRequest{TitlePrefixes: []string{"No"}})
package docstore

import (
	"context"

	"github.com/docmanager/docmanager/internal/config"
	"github.com/docmanager/docmanager/internal/document"
	"github.com/docmanager/docmanager/internal/document/repository"
	"github.com/docmanager/docmanager/internal/document/service"
	"github.com/docmanager/docmanager/pkg/logger"
	"github.com/docmanager/docmanager/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	Document      = document.Document
	Author        = document.Author
	SearchRequest = document.SearchRequest
	Store         = service.Service
	Option        = repository.Option
	Config        = config.Config
)

var (
	WithClock       = repository.WithClock
	WithIDGenerator = repository.WithIDGenerator
	NewUUID         = repository.NewUUID
	NewULID         = repository.NewULID
	ErrNilDocument  = repository.ErrNilDocument
)

// String and Time return pointers for the optional Document and
// SearchRequest fields.
var (
	String = document.String
	Time   = document.Time
)

// New returns an empty in-memory Store.
func New(opts ...Option) Store {
	return service.New(repository.NewMemoryRepo(opts...))
}

// LoadConfig reads the store configuration from the environment.
func LoadConfig() (*Config, error) {
	return config.LoadConfig()
}

// Open applies the log settings of cfg and returns the Store it selects,
// together with a func that releases the backend.
func Open(ctx context.Context, cfg *Config) (Store, func() error, error) {
	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	return service.NewFromConfig(ctx, cfg)
}

// RegisterMetrics adds the store collectors to reg.
func RegisterMetrics(reg prometheus.Registerer) {
	metrics.RegisterCollectors(reg)
}
