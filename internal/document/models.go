package document

import "time"

// Document is the stored record. Content and Author are nullable; Created is
// owned by the repository and cannot be changed by callers after the first save.
type Document struct {
	ID      string    `json:"id" bson:"_id,omitempty"`
	Title   string    `json:"title" bson:"title"`
	Content *string   `json:"content" bson:"content"`
	Author  *Author   `json:"author" bson:"author"`
	Created time.Time `json:"created" bson:"created"`
}

// Author is embedded in a Document; it is not stored on its own.
type Author struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// SearchRequest bundles optional search criteria. Empty fields do not
// constrain the result.
type SearchRequest struct {
	TitlePrefixes    []string   `json:"titlePrefixes,omitempty"`
	ContainsContents []string   `json:"containsContents,omitempty"`
	AuthorIDs        []string   `json:"authorIds,omitempty"`
	CreatedFrom      *time.Time `json:"createdFrom,omitempty"`
	CreatedTo        *time.Time `json:"createdTo,omitempty"`
}

// String returns a pointer to s, for building documents with content.
func String(s string) *string {
	return &s
}

// Time returns a pointer to t, for building created-range criteria.
func Time(t time.Time) *time.Time {
	return &t
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	if d.Content != nil {
		c := *d.Content
		out.Content = &c
	}
	if d.Author != nil {
		a := *d.Author
		out.Author = &a
	}
	return &out
}

// AuthorID returns the author's identifier, or "" when the document has no author.
func (d *Document) AuthorID() string {
	if d.Author == nil {
		return ""
	}
	return d.Author.ID
}
