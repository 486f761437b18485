package repository

import (
	"context"
	"errors"
	"time"

	"github.com/docmanager/docmanager/internal/document"
)

var (
	// ErrNilDocument is the panic value when Save is handed a nil document.
	ErrNilDocument = errors.New("nil document")
	// ErrUnknownIDScheme is returned by IDGeneratorFor for unsupported schemes.
	ErrUnknownIDScheme = errors.New("unknown id scheme")
)

// Repository is implemented by every storage backend. All backends share the
// same contract:
//   - Save assigns an ID when missing, keeps Created from the first save and
//     replaces every other field.
//   - FindByID returns (nil, nil) when the document does not exist.
//   - Search returns the documents matching every criterion of the request,
//     in backend iteration order.
type Repository interface {
	Save(ctx context.Context, d *document.Document) (*document.Document, error)
	FindByID(ctx context.Context, id string) (*document.Document, error)
	Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error)
	Count(ctx context.Context) (int, error)
	// Backend names the storage, used as a metrics label.
	Backend() string
}

// Option configures a repository.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID IDGenerator
}

// WithClock overrides the clock used to stamp Created on first save.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides the generator used for documents saved without an ID.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) { o.newID = gen }
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, newID: NewUUID}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) timestamp() time.Time {
	return o.now().UTC()
}

// assignID gives d a fresh identifier when it has none.
func (o options) assignID(d *document.Document) {
	if d.ID == "" {
		d.ID = o.newID()
	}
}

func mustDocument(d *document.Document) {
	if d == nil {
		panic(ErrNilDocument)
	}
}
