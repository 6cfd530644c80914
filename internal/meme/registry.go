package meme

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"
)

// ErrRegistryFrozen is returned by Register once Build has been called.
var ErrRegistryFrozen = errors.New("registry is frozen")

// Option configures a template at registration.
type Option func(*Meme)

// WithKeywords sets the words users type to invoke the template.
func WithKeywords(keywords ...string) Option {
	return func(m *Meme) { m.keywords = dedupe(keywords) }
}

// WithShortcuts sets command aliases.
func WithShortcuts(shortcuts ...CommandShortcut) Option {
	return func(m *Meme) {
		m.shortcuts = make([]CommandShortcut, len(shortcuts))
		for i, s := range shortcuts {
			s.Args = append([]string(nil), s.Args...)
			m.shortcuts[i] = s
		}
	}
}

// WithTags sets catalog tags.
func WithTags(tags ...string) Option {
	return func(m *Meme) {
		m.tags = dedupe(tags)
		sort.Strings(m.tags)
	}
}

func WithDateCreated(t time.Time) Option {
	return func(m *Meme) { m.dateCreated = t }
}

func WithDateModified(t time.Time) Option {
	return func(m *Meme) {
		m.dateModified = t
		m.modifiedSet = true
	}
}

// Builder collects templates during startup. Build consumes it into an
// immutable Registry; a Builder is not safe for concurrent use.
type Builder struct {
	memes  []*Meme
	index  map[string]*Meme
	now    func() time.Time
	frozen bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		index: make(map[string]*Meme),
		now:   time.Now,
	}
}

// Register adds a template. Keys are unique: registering a key twice fails
// with a DuplicateKeyError.
func (b *Builder) Register(key string, fn Function, params Params, opts ...Option) (*Meme, error) {
	if b.frozen {
		return nil, ErrRegistryFrozen
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("meme key is required")
	}
	if fn == nil {
		return nil, fmt.Errorf("meme %q: render function is required", key)
	}
	if _, ok := b.index[key]; ok {
		return nil, &DuplicateKeyError{Key: key}
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("meme %q: %w", key, err)
	}

	m := &Meme{
		key:          key,
		function:     fn,
		params:       params.clone(),
		dateCreated:  DefaultDateCreated,
		dateModified: b.now(),
	}
	for _, opt := range opts {
		opt(m)
	}

	b.memes = append(b.memes, m)
	b.index[key] = m
	return m, nil
}

// MustRegister is Register that panics on error, for static template tables.
func (b *Builder) MustRegister(key string, fn Function, params Params, opts ...Option) *Meme {
	m, err := b.Register(key, fn, params, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Build freezes the builder and returns the registry.
func (b *Builder) Build() *Registry {
	b.frozen = true
	r := &Registry{
		memes:     b.memes,
		byKey:     b.index,
		byKeyword: make(map[string][]*Meme),
	}
	for _, m := range r.memes {
		for _, kw := range m.keywords {
			r.byKeyword[kw] = append(r.byKeyword[kw], m)
		}
	}
	b.memes = nil
	b.index = nil
	return r
}

// Registry is the immutable set of templates. It is safe for concurrent
// reads.
type Registry struct {
	memes     []*Meme
	byKey     map[string]*Meme
	byKeyword map[string][]*Meme
}

// Lookup returns the template registered under key.
func (r *Registry) Lookup(key string) (*Meme, error) {
	if r == nil {
		return nil, &UnknownTemplateError{Key: key}
	}
	m, ok := r.byKey[key]
	if !ok {
		return nil, &UnknownTemplateError{Key: key}
	}
	return m, nil
}

// All yields templates in registration order. The sequence can be ranged
// over any number of times.
func (r *Registry) All() iter.Seq[*Meme] {
	return func(yield func(*Meme) bool) {
		if r == nil {
			return
		}
		for _, m := range r.memes {
			if !yield(m) {
				return
			}
		}
	}
}

// Keys returns template keys in registration order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.memes))
	for i, m := range r.memes {
		keys[i] = m.key
	}
	return keys
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.memes)
}

// FindByKeyword returns templates declaring word as a keyword, in
// registration order.
func (r *Registry) FindByKeyword(word string) []*Meme {
	if r == nil {
		return nil
	}
	return append([]*Meme(nil), r.byKeyword[word]...)
}

// Resolve accepts a key, a keyword or a shortcut key. Keys win over
// keywords, which win over shortcuts. The matched shortcut is returned when
// one was used.
func (r *Registry) Resolve(name string) (*Meme, *CommandShortcut, error) {
	if m, err := r.Lookup(name); err == nil {
		return m, nil, nil
	}
	if matches := r.FindByKeyword(name); len(matches) > 0 {
		return matches[0], nil, nil
	}
	for m := range r.All() {
		for _, s := range m.shortcuts {
			if s.Key == name {
				sc := s
				sc.Args = append([]string(nil), s.Args...)
				return m, &sc, nil
			}
		}
	}
	return nil, nil, &UnknownTemplateError{Key: name}
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
