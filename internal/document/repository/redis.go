package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/docmanager/docmanager/internal/document"
	"github.com/redis/go-redis/v9"
)

// RedisRepo stores each document as an encoded record under "<prefix>doc:<id>" and keeps
// the set of known ids under "<prefix>index". Search loads every document and
// filters in process.
type RedisRepo struct {
	client *redis.Client
	prefix string
	opts   options
}

// NewRedisRepo creates a Redis-based document repository. Prefix may be empty.
func NewRedisRepo(client *redis.Client, prefix string, opts ...Option) *RedisRepo {
	if prefix == "" {
		prefix = "docstore:"
	}
	return &RedisRepo{client: client, prefix: prefix, opts: newOptions(opts)}
}

func (r *RedisRepo) Backend() string { return "redis" }

func (r *RedisRepo) docKey(id string) string {
	return r.prefix + "doc:" + id
}

func (r *RedisRepo) indexKey() string {
	return r.prefix + "index"
}

func (r *RedisRepo) Save(ctx context.Context, d *document.Document) (*document.Document, error) {
	mustDocument(d)
	r.opts.assignID(d)

	existing, err := r.FindByID(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", d.ID, err)
	}
	if existing != nil {
		d.Created = existing.Created
	} else {
		d.Created = r.opts.timestamp()
	}

	b, err := encodeDocument(d)
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", d.ID, err)
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.docKey(d.ID), b, 0)
		p.SAdd(ctx, r.indexKey(), d.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", d.ID, err)
	}
	return d.Clone(), nil
}

func (r *RedisRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
	b, err := r.client.Get(ctx, r.docKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %q: %w", id, err)
	}
	d, err := decodeDocument(b)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", id, err)
	}
	return d, nil
}

func (r *RedisRepo) Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	out := []*document.Document{}
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.docKey(id))
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// indexed id whose value is gone
			continue
		}
		d, err := decodeDocument([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", ids[i], err)
		}
		if req.Matches(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *RedisRepo) Count(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, r.indexKey()).Result()
	return int(n), err
}
