package document

import (
	"slices"
	"strings"
)

// IsEmpty reports whether the request places no constraint on any dimension.
func (r SearchRequest) IsEmpty() bool {
	return len(r.TitlePrefixes) == 0 &&
		len(r.ContainsContents) == 0 &&
		len(r.AuthorIDs) == 0 &&
		r.CreatedFrom == nil &&
		r.CreatedTo == nil
}

// Matches reports whether d satisfies every criterion of r. Criteria are
// AND'ed across dimensions and OR'ed within a list.
func (r SearchRequest) Matches(d *Document) bool {
	if d == nil {
		return false
	}
	return matchTitlePrefixes(d, r.TitlePrefixes) &&
		matchContents(d, r.ContainsContents) &&
		matchAuthorIDs(d, r.AuthorIDs) &&
		matchCreatedRange(d, r)
}

func matchTitlePrefixes(d *Document, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	return slices.ContainsFunc(prefixes, func(p string) bool {
		return strings.HasPrefix(d.Title, p)
	})
}

// a document without content never matches a content criterion
func matchContents(d *Document, contents []string) bool {
	if len(contents) == 0 {
		return true
	}
	if d.Content == nil {
		return false
	}
	return slices.ContainsFunc(contents, func(s string) bool {
		return strings.Contains(*d.Content, s)
	})
}

func matchAuthorIDs(d *Document, ids []string) bool {
	if len(ids) == 0 {
		return true
	}
	if d.Author == nil {
		return false
	}
	return slices.Contains(ids, d.Author.ID)
}

// both bounds are inclusive
func matchCreatedRange(d *Document, r SearchRequest) bool {
	if r.CreatedFrom != nil && d.Created.Before(*r.CreatedFrom) {
		return false
	}
	if r.CreatedTo != nil && d.Created.After(*r.CreatedTo) {
		return false
	}
	return true
}
