package repository

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/docmanager/docmanager/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock shared between a test and the repository under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type repoFactory func(t *testing.T, opts ...Option) Repository

func ids(docs []*document.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	sort.Strings(out)
	return out
}

func mustSave(t *testing.T, r Repository, d *document.Document) *document.Document {
	t.Helper()
	saved, err := r.Save(context.Background(), d)
	require.NoError(t, err)
	require.NotNil(t, saved)
	return saved
}

// runContract checks the behavior every backend must share.
func runContract(t *testing.T, newRepo repoFactory) {
	ctx := context.Background()

	t.Run("assigns distinct ids", func(t *testing.T) {
		r := newRepo(t)
		a := mustSave(t, r, &document.Document{Title: "same"})
		b := mustSave(t, r, &document.Document{Title: "same"})
		require.NotEmpty(t, a.ID)
		require.NotEmpty(t, b.ID)
		require.NotEqual(t, a.ID, b.ID)

		n, err := r.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("keeps a caller supplied id", func(t *testing.T) {
		r := newRepo(t)
		d := &document.Document{ID: "custom-1", Title: "t"}
		saved := mustSave(t, r, d)
		require.Equal(t, "custom-1", saved.ID)
	})

	t.Run("updates the caller value", func(t *testing.T) {
		clock := newFakeClock()
		r := newRepo(t, WithClock(clock.Now))
		d := &document.Document{Title: "t"}
		saved := mustSave(t, r, d)
		require.Equal(t, saved.ID, d.ID)
		require.True(t, d.Created.Equal(clock.Now()), "created = %v", d.Created)
	})

	t.Run("created is immutable", func(t *testing.T) {
		clock := newFakeClock()
		r := newRepo(t, WithClock(clock.Now))
		t1 := clock.Now()
		first := mustSave(t, r, &document.Document{
			Title:   "v1",
			Content: document.String("first"),
			Author:  &document.Author{ID: "a1", Name: "Ann"},
		})
		require.True(t, first.Created.Equal(t1))

		clock.Set(t1.Add(time.Hour))
		second := mustSave(t, r, &document.Document{
			ID:      first.ID,
			Title:   "v2",
			Content: document.String("second"),
			Author:  &document.Author{ID: "a2", Name: "Bob"},
			Created: t1.Add(-48 * time.Hour),
		})
		require.Equal(t, first.ID, second.ID)
		require.True(t, second.Created.Equal(t1), "created changed to %v", second.Created)

		got, err := r.FindByID(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "v2", got.Title)
		require.NotNil(t, got.Content)
		assert.Equal(t, "second", *got.Content)
		require.NotNil(t, got.Author)
		assert.Equal(t, document.Author{ID: "a2", Name: "Bob"}, *got.Author)
		assert.True(t, got.Created.Equal(t1))

		n, err := r.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("stores nil fields as given", func(t *testing.T) {
		r := newRepo(t)
		saved := mustSave(t, r, &document.Document{})
		got, err := r.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "", got.Title)
		assert.Nil(t, got.Content)
		assert.Nil(t, got.Author)
	})

	t.Run("returned documents are copies", func(t *testing.T) {
		r := newRepo(t)
		d := &document.Document{Title: "t", Content: document.String("c"), Author: &document.Author{ID: "a"}}
		saved := mustSave(t, r, d)
		*saved.Content = "mutated"
		saved.Author.ID = "mutated"
		*d.Content = "mutated too"

		got, err := r.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "c", *got.Content)
		assert.Equal(t, "a", got.Author.ID)
	})

	t.Run("find unknown id", func(t *testing.T) {
		r := newRepo(t)
		got, err := r.FindByID(ctx, "unknown")
		require.NoError(t, err)
		require.Nil(t, got)

		mustSave(t, r, &document.Document{ID: "known"})
		got, err = r.FindByID(ctx, "unknown")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("nil document panics", func(t *testing.T) {
		r := newRepo(t)
		require.PanicsWithValue(t, ErrNilDocument, func() {
			_, _ = r.Save(ctx, nil)
		})
	})

	t.Run("search on empty store", func(t *testing.T) {
		r := newRepo(t)
		got, err := r.Search(ctx, document.SearchRequest{})
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Empty(t, got)
	})

	t.Run("empty request matches all", func(t *testing.T) {
		r := newRepo(t)
		want := []string{
			mustSave(t, r, &document.Document{Title: "a"}).ID,
			mustSave(t, r, &document.Document{Title: "b", Content: document.String("x")}).ID,
			mustSave(t, r, &document.Document{Title: "c", Author: &document.Author{ID: "z"}}).ID,
		}
		got, err := r.Search(ctx, document.SearchRequest{})
		require.NoError(t, err)
		assert.ElementsMatch(t, want, ids(got))

		got, err = r.Search(ctx, document.SearchRequest{TitlePrefixes: []string{}, AuthorIDs: []string{}})
		require.NoError(t, err)
		assert.ElementsMatch(t, want, ids(got))
	})

	t.Run("title prefix", func(t *testing.T) {
		r := newRepo(t)
		a := mustSave(t, r, &document.Document{Title: "Alpha Report"})
		b := mustSave(t, r, &document.Document{Title: "Alpha Notes"})
		mustSave(t, r, &document.Document{Title: "Beta Report"})
		mustSave(t, r, &document.Document{Title: "alpha lowercase"})
		mustSave(t, r, &document.Document{Title: "The Alpha"})

		got, err := r.Search(ctx, document.SearchRequest{TitlePrefixes: []string{"Alpha"}})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a.ID, b.ID}, ids(got))
	})

	t.Run("title prefix is literal", func(t *testing.T) {
		r := newRepo(t)
		pct := mustSave(t, r, &document.Document{Title: "50% off"})
		mustSave(t, r, &document.Document{Title: "500 items"})
		dot := mustSave(t, r, &document.Document{Title: "a.b"})
		mustSave(t, r, &document.Document{Title: "axb"})

		got, err := r.Search(ctx, document.SearchRequest{TitlePrefixes: []string{"50%", "a."}})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{pct.ID, dot.ID}, ids(got))
	})

	t.Run("content contains any", func(t *testing.T) {
		r := newRepo(t)
		fox := mustSave(t, r, &document.Document{Title: "1", Content: document.String("the quick fox")})
		dog := mustSave(t, r, &document.Document{Title: "2", Content: document.String("a lazy dog")})
		mustSave(t, r, &document.Document{Title: "3"})
		mustSave(t, r, &document.Document{Title: "4", Content: document.String("nothing")})

		got, err := r.Search(ctx, document.SearchRequest{ContainsContents: []string{"quick", "dog"}})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{fox.ID, dog.ID}, ids(got))

		// a document without content never matches, not even the empty substring
		got, err = r.Search(ctx, document.SearchRequest{ContainsContents: []string{""}})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("author ids", func(t *testing.T) {
		r := newRepo(t)
		a1 := mustSave(t, r, &document.Document{Title: "1", Author: &document.Author{ID: "a1", Name: "Ann"}})
		a2 := mustSave(t, r, &document.Document{Title: "2", Author: &document.Author{ID: "a2", Name: "Bob"}})
		mustSave(t, r, &document.Document{Title: "3", Author: &document.Author{ID: "a3"}})
		mustSave(t, r, &document.Document{Title: "4"})

		got, err := r.Search(ctx, document.SearchRequest{AuthorIDs: []string{"a1", "a2", "missing"}})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a1.ID, a2.ID}, ids(got))
	})

	t.Run("created range is inclusive", func(t *testing.T) {
		clock := newFakeClock()
		r := newRepo(t, WithClock(clock.Now))
		from := clock.Now()
		to := from.Add(time.Minute)

		clock.Set(from.Add(-time.Millisecond))
		mustSave(t, r, &document.Document{Title: "before"})
		clock.Set(from)
		atFrom := mustSave(t, r, &document.Document{Title: "at from"})
		clock.Set(from.Add(30 * time.Second))
		inside := mustSave(t, r, &document.Document{Title: "inside"})
		clock.Set(to)
		atTo := mustSave(t, r, &document.Document{Title: "at to"})
		clock.Set(to.Add(time.Millisecond))
		after := mustSave(t, r, &document.Document{Title: "after"})

		got, err := r.Search(ctx, document.SearchRequest{CreatedFrom: &from, CreatedTo: &to})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{atFrom.ID, inside.ID, atTo.ID}, ids(got))

		got, err = r.Search(ctx, document.SearchRequest{CreatedFrom: &to})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{atTo.ID, after.ID}, ids(got))

		got, err = r.Search(ctx, document.SearchRequest{CreatedTo: &from})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("criteria are and-ed across dimensions", func(t *testing.T) {
		clock := newFakeClock()
		r := newRepo(t, WithClock(clock.Now))
		from := clock.Now()

		match := mustSave(t, r, &document.Document{Title: "Alpha 1", Content: document.String("quick fox"), Author: &document.Author{ID: "a1"}})
		alt := mustSave(t, r, &document.Document{Title: "Beta 1", Content: document.String("lazy dog"), Author: &document.Author{ID: "a2"}})
		mustSave(t, r, &document.Document{Title: "Gamma", Content: document.String("quick fox"), Author: &document.Author{ID: "a1"}})
		mustSave(t, r, &document.Document{Title: "Alpha 2", Content: document.String("slow cat"), Author: &document.Author{ID: "a1"}})
		mustSave(t, r, &document.Document{Title: "Alpha 3", Content: document.String("quick fox"), Author: &document.Author{ID: "a9"}})
		clock.Set(from.Add(-time.Hour))
		mustSave(t, r, &document.Document{Title: "Alpha 4", Content: document.String("quick fox"), Author: &document.Author{ID: "a1"}})

		got, err := r.Search(ctx, document.SearchRequest{
			TitlePrefixes:    []string{"Alpha", "Beta"},
			ContainsContents: []string{"fox", "dog"},
			AuthorIDs:        []string{"a1", "a2"},
			CreatedFrom:      &from,
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{match.ID, alt.ID}, ids(got))
	})

	t.Run("created range with distant bounds", func(t *testing.T) {
		r := newRepo(t)
		saved := mustSave(t, r, &document.Document{Title: "now"})
		zero := time.Time{}
		far := time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)

		got, err := r.Search(ctx, document.SearchRequest{CreatedFrom: &zero, CreatedTo: &far})
		require.NoError(t, err)
		assert.Equal(t, []string{saved.ID}, ids(got))

		got, err = r.Search(ctx, document.SearchRequest{CreatedFrom: &far})
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = r.Search(ctx, document.SearchRequest{CreatedTo: &zero})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("strings are stored byte for byte", func(t *testing.T) {
		r := newRepo(t)
		d := &document.Document{
			ID:      "id\xff",
			Title:   "A\xffB",
			Content: document.String("x\xfe tail"),
			Author:  &document.Author{ID: "a\xff", Name: "n\xc3"},
		}
		mustSave(t, r, d)

		got, err := r.FindByID(ctx, "id\xff")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "id\xff", got.ID)
		assert.Equal(t, "A\xffB", got.Title)
		require.NotNil(t, got.Content)
		assert.Equal(t, "x\xfe tail", *got.Content)
		assert.Equal(t, document.Author{ID: "a\xff", Name: "n\xc3"}, *got.Author)

		found, err := r.Search(ctx, document.SearchRequest{
			TitlePrefixes:    []string{"A\xff"},
			ContainsContents: []string{"x\xfe"},
			AuthorIDs:        []string{"a\xff"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"id\xff"}, ids(found))
	})
}
