package repository

import (
	"encoding/json"
	"time"

	"github.com/docmanager/docmanager/internal/document"
)

// storedDocument is the JSON form used by the Redis and object backends.
// Strings are kept as []byte, which encoding/json writes as base64, so text
// that is not valid UTF-8 survives the round trip unchanged. A nil Content
// encodes as null and an empty one as "".
type storedDocument struct {
	ID      []byte        `json:"id"`
	Title   []byte        `json:"title"`
	Content []byte        `json:"content"`
	Author  *storedAuthor `json:"author"`
	Created time.Time     `json:"created"`
}

type storedAuthor struct {
	ID   []byte `json:"id"`
	Name []byte `json:"name"`
}

func encodeDocument(d *document.Document) ([]byte, error) {
	rec := storedDocument{
		ID:      []byte(d.ID),
		Title:   []byte(d.Title),
		Created: d.Created,
	}
	if d.Content != nil {
		rec.Content = []byte(*d.Content)
		if rec.Content == nil {
			rec.Content = []byte{}
		}
	}
	if d.Author != nil {
		rec.Author = &storedAuthor{ID: []byte(d.Author.ID), Name: []byte(d.Author.Name)}
	}
	return json.Marshal(rec)
}

func decodeDocument(b []byte) (*document.Document, error) {
	var rec storedDocument
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	d := &document.Document{
		ID:      string(rec.ID),
		Title:   string(rec.Title),
		Created: rec.Created.UTC(),
	}
	if rec.Content != nil {
		d.Content = document.String(string(rec.Content))
	}
	if rec.Author != nil {
		d.Author = &document.Author{ID: string(rec.Author.ID), Name: string(rec.Author.Name)}
	}
	return d, nil
}
