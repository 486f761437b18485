package repository

import (
	"context"
	"sync"

	"github.com/docmanager/docmanager/internal/document"
)

// MemoryRepo keeps documents in a map for the lifetime of the process. It is
// the reference backend; the other repositories reproduce its behavior.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*document.Document
	opts  options
}

func NewMemoryRepo(opts ...Option) *MemoryRepo {
	return &MemoryRepo{
		store: make(map[string]*document.Document),
		opts:  newOptions(opts),
	}
}

func (m *MemoryRepo) Backend() string { return "memory" }

func (m *MemoryRepo) Save(ctx context.Context, d *document.Document) (*document.Document, error) {
	mustDocument(d)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts.assignID(d)
	if existing, ok := m.store[d.ID]; ok {
		d.Created = existing.Created
	} else {
		d.Created = m.opts.timestamp()
	}
	m.store[d.ID] = d.Clone()
	return d.Clone(), nil
}

func (m *MemoryRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.store[id]; ok {
		return d.Clone(), nil
	}
	return nil, nil
}

func (m *MemoryRepo) Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*document.Document, 0, len(m.store))
	for _, d := range m.store {
		if req.Matches(d) {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

func (m *MemoryRepo) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}
