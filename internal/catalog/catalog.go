// Package catalog provides search over a meme registry.
package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/memeforge/memeforge/internal/meme"
)

// Catalog indexes a registry for search. It is read-only and safe for
// concurrent use.
type Catalog struct {
	entries  []*meme.Meme
	haystack []string
}

// New indexes every template of reg in registration order.
func New(reg *meme.Registry) *Catalog {
	c := &Catalog{}
	for m := range reg.All() {
		c.entries = append(c.entries, m)
		c.haystack = append(c.haystack, searchText(m))
	}
	return c
}

func searchText(m *meme.Meme) string {
	parts := []string{m.Key()}
	parts = append(parts, m.Keywords()...)
	for _, s := range m.Shortcuts() {
		parts = append(parts, s.Key)
	}
	parts = append(parts, m.Tags()...)
	return strings.Join(parts, " ")
}

// Len returns the number of indexed templates.
func (c *Catalog) Len() int { return len(c.entries) }

// Descriptors projects every template, in registration order.
func (c *Catalog) Descriptors() []meme.Descriptor {
	return Describe(c.entries)
}

// Search returns templates matching query. Exact key or keyword hits come
// first, followed by fuzzy matches ranked by score. An empty query returns
// everything in registration order.
func (c *Catalog) Search(query string) []*meme.Meme {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]*meme.Meme(nil), c.entries...)
	}

	var results []*meme.Meme
	seen := make(map[int]struct{})
	for i, m := range c.entries {
		if m.Key() == query || containsString(m.Keywords(), query) {
			results = append(results, m)
			seen[i] = struct{}{}
		}
	}

	for _, match := range fuzzy.Find(query, c.haystack) {
		if _, dup := seen[match.Index]; dup {
			continue
		}
		seen[match.Index] = struct{}{}
		results = append(results, c.entries[match.Index])
	}
	return results
}

// ByTag returns templates carrying tag, in registration order.
func (c *Catalog) ByTag(tag string) []*meme.Meme {
	var out []*meme.Meme
	for _, m := range c.entries {
		if m.HasTag(tag) {
			out = append(out, m)
		}
	}
	return out
}

// Describe projects templates in the order given.
func Describe(memes []*meme.Meme) []meme.Descriptor {
	out := make([]meme.Descriptor, 0, len(memes))
	for _, m := range memes {
		out = append(out, m.Descriptor())
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
