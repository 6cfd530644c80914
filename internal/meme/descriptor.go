package meme

import "time"

// Descriptor is the catalog projection of a Meme. It never carries the
// render function.
type Descriptor struct {
	Key          string            `json:"key" yaml:"key"`
	Params       ParamsDescriptor  `json:"params_type" yaml:"params_type"`
	Keywords     []string          `json:"keywords" yaml:"keywords"`
	Shortcuts    []CommandShortcut `json:"shortcuts" yaml:"shortcuts"`
	Tags         []string          `json:"tags" yaml:"tags"`
	DateCreated  time.Time         `json:"date_created" yaml:"date_created"`
	DateModified time.Time         `json:"date_modified" yaml:"date_modified"`
}

// ParamsDescriptor is the serialisable form of Params.
type ParamsDescriptor struct {
	MinImages    int                 `json:"min_images" yaml:"min_images"`
	MaxImages    int                 `json:"max_images" yaml:"max_images"`
	MinTexts     int                 `json:"min_texts" yaml:"min_texts"`
	MaxTexts     int                 `json:"max_texts" yaml:"max_texts"`
	DefaultTexts []string            `json:"default_texts" yaml:"default_texts"`
	ArgsType     *ArgsTypeDescriptor `json:"args_type,omitempty" yaml:"args_type,omitempty"`
}

// ArgsTypeDescriptor names the args schema and lists its fields.
type ArgsTypeDescriptor struct {
	ArgsModel     string           `json:"args_model" yaml:"args_model"`
	Fields        []FieldSpec      `json:"fields,omitempty" yaml:"fields,omitempty"`
	ArgsExamples  []map[string]any `json:"args_examples" yaml:"args_examples"`
	ParserOptions []ParserOption   `json:"parser_options" yaml:"parser_options"`
}

// Descriptor returns the catalog projection. Successive calls return equal
// values.
func (m *Meme) Descriptor() Descriptor {
	return Descriptor{
		Key:          m.key,
		Params:       DescribeParams(m.params),
		Keywords:     nonNil(m.Keywords()),
		Shortcuts:    m.Shortcuts(),
		Tags:         nonNil(m.Tags()),
		DateCreated:  m.dateCreated,
		DateModified: m.dateModified,
	}
}

// DescribeParams projects a contract.
func DescribeParams(p Params) ParamsDescriptor {
	d := ParamsDescriptor{
		MinImages:    p.MinImages,
		MaxImages:    p.MaxImages,
		MinTexts:     p.MinTexts,
		MaxTexts:     p.MaxTexts,
		DefaultTexts: nonNil(append([]string(nil), p.DefaultTexts...)),
	}
	if p.ArgsType != nil {
		at := &ArgsTypeDescriptor{
			ArgsExamples:  append([]map[string]any{}, p.ArgsType.Examples...),
			ParserOptions: append([]ParserOption{}, p.ArgsType.ParserOptions...),
		}
		schema := p.Schema()
		at.ArgsModel = schema.Name()
		at.Fields = schema.Fields()
		d.ArgsType = at
	}
	return d
}

// ParamsFromDescriptor rebuilds the bounds, default texts and parser options
// of a contract. The args schema itself is not serialisable, so the result
// validates against BaseSchema.
func ParamsFromDescriptor(d ParamsDescriptor) Params {
	p := Params{
		MinImages:    d.MinImages,
		MaxImages:    d.MaxImages,
		MinTexts:     d.MinTexts,
		MaxTexts:     d.MaxTexts,
		DefaultTexts: append([]string(nil), d.DefaultTexts...),
	}
	if d.ArgsType != nil {
		p.ArgsType = &ArgsType{
			Examples:      append([]map[string]any(nil), d.ArgsType.ArgsExamples...),
			ParserOptions: append([]ParserOption(nil), d.ArgsType.ParserOptions...),
		}
	}
	return p
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
