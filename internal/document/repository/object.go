package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docmanager/docmanager/internal/document"
	"github.com/docmanager/docmanager/internal/storage"
)

const objectSuffix = ".json"

// ObjectStore is the part of an object storage client the repository uses.
// Get must return storage.ErrObjectNotFound for missing keys.
// *storage.MinIOStorage satisfies it.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// ObjectRepo stores every document as a JSON object "<prefix><id>.json" in
// an S3-compatible bucket.
type ObjectRepo struct {
	store  ObjectStore
	prefix string
	opts   options
}

func NewObjectRepo(store ObjectStore, prefix string, opts ...Option) *ObjectRepo {
	return &ObjectRepo{store: store, prefix: prefix, opts: newOptions(opts)}
}

func (o *ObjectRepo) Backend() string { return "s3" }

func (o *ObjectRepo) key(id string) string {
	return o.prefix + id + objectSuffix
}

func (o *ObjectRepo) Save(ctx context.Context, d *document.Document) (*document.Document, error) {
	mustDocument(d)
	o.opts.assignID(d)

	existing, err := o.FindByID(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", d.ID, err)
	}
	if existing != nil {
		d.Created = existing.Created
	} else {
		d.Created = o.opts.timestamp()
	}

	b, err := encodeDocument(d)
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", d.ID, err)
	}
	if err := o.store.Put(ctx, o.key(d.ID), b, "application/json"); err != nil {
		return nil, fmt.Errorf("save %q: %w", d.ID, err)
	}
	return d.Clone(), nil
}

func (o *ObjectRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
	return o.load(ctx, o.key(id))
}

func (o *ObjectRepo) Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error) {
	keys, err := o.keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	out := []*document.Document{}
	for _, key := range keys {
		d, err := o.load(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		if d != nil && req.Matches(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (o *ObjectRepo) Count(ctx context.Context) (int, error) {
	keys, err := o.keys(ctx)
	return len(keys), err
}

func (o *ObjectRepo) keys(ctx context.Context) ([]string, error) {
	all, err := o.store.List(ctx, o.prefix)
	if err != nil {
		return nil, err
	}
	keys := all[:0]
	for _, k := range all {
		if strings.HasSuffix(k, objectSuffix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// load returns (nil, nil) when the object is missing.
func (o *ObjectRepo) load(ctx context.Context, key string) (*document.Document, error) {
	b, err := o.store.Get(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d, err := decodeDocument(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return d, nil
}
