package meme

import (
	"context"
	"sort"
	"time"

	"github.com/memeforge/memeforge/internal/canvas"
)

// Function renders a template. It receives its own decoded images and a copy
// of the texts, and must not keep references to either after returning or
// touch shared mutable state: templates are called concurrently.
type Function func(images []*canvas.Image, texts []string, args Args) ([]byte, error)

// DefaultDateCreated is the creation date given to templates that do not
// declare one.
var DefaultDateCreated = time.Date(2021, time.May, 4, 0, 0, 0, 0, time.UTC)

// Meme is a registered template. Values are created by a Builder and are
// read-only afterwards.
type Meme struct {
	key          string
	function     Function
	params       Params
	keywords     []string
	shortcuts    []CommandShortcut
	tags         []string
	dateCreated  time.Time
	dateModified time.Time
	// modifiedSet is false when dateModified is the registration time.
	modifiedSet bool
}

func (m *Meme) Key() string { return m.key }

// Params returns a copy of the template's contract.
func (m *Meme) Params() Params { return m.params.clone() }

func (m *Meme) Keywords() []string { return append([]string(nil), m.keywords...) }

func (m *Meme) Shortcuts() []CommandShortcut {
	out := make([]CommandShortcut, len(m.shortcuts))
	for i, s := range m.shortcuts {
		s.Args = append([]string(nil), s.Args...)
		out[i] = s
	}
	return out
}

// Tags returns the tags in sorted order.
func (m *Meme) Tags() []string { return append([]string(nil), m.tags...) }

func (m *Meme) DateCreated() time.Time { return m.dateCreated }

func (m *Meme) DateModified() time.Time { return m.dateModified }

// DateModifiedDeclared reports whether the modification date came from
// WithDateModified rather than the registration clock.
func (m *Meme) DateModifiedDeclared() bool { return m.modifiedSet }

// HasTag reports whether the template carries tag.
func (m *Meme) HasTag(tag string) bool {
	i := sort.SearchStrings(m.tags, tag)
	return i < len(m.tags) && m.tags[i] == tag
}

// Call validates the inputs and renders the template.
func (m *Meme) Call(images [][]byte, texts []string, args map[string]any) ([]byte, error) {
	return m.CallContext(context.Background(), images, texts, args)
}

// CallContext is Call with a context. The checks run in a fixed order and
// the first failure wins:
//
//  1. image count
//  2. text count
//  3. args schema
//  4. image decoding
//
// The render function only runs once all four pass. Its errors are returned
// unchanged. ctx is consulted before decoding and before rendering; a render
// already in progress is not interrupted.
func (m *Meme) CallContext(ctx context.Context, images [][]byte, texts []string, args map[string]any) ([]byte, error) {
	p := m.params
	if len(images) < p.MinImages || len(images) > p.MaxImages {
		return nil, &ImageNumberMismatchError{Min: p.MinImages, Max: p.MaxImages}
	}
	if len(texts) < p.MinTexts || len(texts) > p.MaxTexts {
		return nil, &TextNumberMismatchError{Min: p.MinTexts, Max: p.MaxTexts}
	}

	validated, err := p.Schema().Validate(args)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decoded := make([]*canvas.Image, 0, len(images))
	for i, data := range images {
		img, err := canvas.Open(data)
		if err != nil {
			return nil, &OpenImageFailedError{Index: i, Detail: err.Error(), Err: err}
		}
		decoded = append(decoded, img)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return m.function(decoded, append([]string(nil), texts...), validated)
}
