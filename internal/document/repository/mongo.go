package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/docmanager/docmanager/internal/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements a MongoDB-backed repository for documents.
// The document ID is stored as _id. MongoDB keeps datetimes with millisecond
// precision, so Created is truncated to the millisecond before it is stored.
type MongoRepo struct {
	col  *mongo.Collection
	opts options
}

func NewMongoRepo(col *mongo.Collection, opts ...Option) *MongoRepo {
	return &MongoRepo{col: col, opts: newOptions(opts)}
}

func (m *MongoRepo) Backend() string { return "mongo" }

// Save upserts the document in one round trip: created is only written when
// the upsert inserts, and the post-update document tells us which value won.
func (m *MongoRepo) Save(ctx context.Context, d *document.Document) (*document.Document, error) {
	mustDocument(d)
	m.opts.assignID(d)

	update := bson.M{
		"$set": bson.M{
			"title":   d.Title,
			"content": d.Content,
			"author":  d.Author,
		},
		"$setOnInsert": bson.M{"created": m.opts.timestamp().Truncate(time.Millisecond)},
	}
	upsert := mongoopts.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(mongoopts.After)
	var stored document.Document
	if err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": d.ID}, update, upsert).Decode(&stored); err != nil {
		return nil, fmt.Errorf("save %q: %w", d.ID, err)
	}
	d.Created = stored.Created.UTC()
	return d.Clone(), nil
}

func (m *MongoRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
	var d document.Document
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %q: %w", id, err)
	}
	d.Created = d.Created.UTC()
	return &d, nil
}

func (m *MongoRepo) Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error) {
	cur, err := m.col.Find(ctx, mongoFilter(req))
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		d.Created = d.Created.UTC()
		out = append(out, &d)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Count(ctx context.Context) (int, error) {
	n, err := m.col.CountDocuments(ctx, bson.M{})
	return int(n), err
}

// mongoFilter translates req into a query document. Prefix and substring
// criteria become quoted regexes inside $in; a null content never matches a
// regex. Range bounds are moved onto the millisecond grid of stored values so
// the inclusive comparison gives the same answer as full-precision times.
func mongoFilter(req document.SearchRequest) bson.M {
	filter := bson.M{}
	if len(req.TitlePrefixes) > 0 {
		filter["title"] = bson.M{"$in": quotedRegexes(req.TitlePrefixes, "^")}
	}
	if len(req.ContainsContents) > 0 {
		filter["content"] = bson.M{"$in": quotedRegexes(req.ContainsContents, "")}
	}
	if len(req.AuthorIDs) > 0 {
		filter["author.id"] = bson.M{"$in": req.AuthorIDs}
	}
	created := bson.M{}
	if req.CreatedFrom != nil {
		created["$gte"] = ceilMillis(*req.CreatedFrom)
	}
	if req.CreatedTo != nil {
		created["$lte"] = req.CreatedTo.Truncate(time.Millisecond)
	}
	if len(created) > 0 {
		filter["created"] = created
	}
	return filter
}

func quotedRegexes(values []string, anchor string) bson.A {
	out := make(bson.A, 0, len(values))
	for _, v := range values {
		out = append(out, primitive.Regex{Pattern: anchor + regexp.QuoteMeta(v)})
	}
	return out
}

func ceilMillis(t time.Time) time.Time {
	down := t.Truncate(time.Millisecond)
	if down.Before(t) {
		return down.Add(time.Millisecond)
	}
	return down
}
