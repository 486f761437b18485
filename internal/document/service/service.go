package service

import (
	"context"

	"github.com/docmanager/docmanager/internal/document"
	"github.com/docmanager/docmanager/internal/document/repository"
	"github.com/docmanager/docmanager/pkg/logger"
	"github.com/docmanager/docmanager/pkg/metrics"
)

// Service defines the document store operations offered to callers.
type Service interface {
	// Save inserts d, or replaces the stored document with the same ID.
	// A missing ID is assigned and Created is kept from the first save; d is
	// updated in place and a copy of the stored document is returned.
	Save(ctx context.Context, d *document.Document) (*document.Document, error)
	// FindByID returns (nil, nil) when no document has the given ID.
	FindByID(ctx context.Context, id string) (*document.Document, error)
	// Search returns every document matching all criteria of req, in no
	// particular order. The zero request matches everything.
	Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error)
	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
	// Backend names the storage in use, e.g. "memory" or "redis".
	Backend() string
}

// New returns a Service backed by repo.
func New(repo repository.Repository) Service {
	if repo == nil {
		panic("service: nil repository")
	}
	return &documentService{repo: repo}
}

type documentService struct {
	repo repository.Repository
}

func (s *documentService) Backend() string { return s.repo.Backend() }

func (s *documentService) Save(ctx context.Context, d *document.Document) (*document.Document, error) {
	if d == nil {
		panic(repository.ErrNilDocument)
	}
	saved, err := s.repo.Save(ctx, d)
	s.observe("save", err)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logger.Fields{"document_id": saved.ID, "backend": s.Backend()}).Info("document saved")
	return saved, nil
}

func (s *documentService) FindByID(ctx context.Context, id string) (*document.Document, error) {
	d, err := s.repo.FindByID(ctx, id)
	s.observe("find", err)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logger.Fields{"document_id": id, "found": d != nil}).Debug("document lookup")
	return d, nil
}

func (s *documentService) Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error) {
	docs, err := s.repo.Search(ctx, req)
	s.observe("search", err)
	if err != nil {
		return nil, err
	}
	metrics.SearchResults.WithLabelValues(s.Backend()).Observe(float64(len(docs)))
	logger.WithFields(logger.Fields{
		"title_prefixes": len(req.TitlePrefixes),
		"contents":       len(req.ContainsContents),
		"author_ids":     len(req.AuthorIDs),
		"results":        len(docs),
	}).Debug("document search")
	return docs, nil
}

func (s *documentService) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	s.observe("count", err)
	return n, err
}

func (s *documentService) observe(op string, err error) {
	backend := s.Backend()
	metrics.Operations.WithLabelValues(op, backend).Inc()
	if err != nil {
		metrics.OperationErrors.WithLabelValues(op, backend).Inc()
		logger.WithFields(logger.Fields{"op": op, "backend": backend}).WithError(err).Error("document store operation failed")
	}
}
