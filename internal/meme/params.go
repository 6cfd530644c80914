package meme

import "fmt"

// ArgsType binds an args schema to a template, together with example
// argument sets and the options the CLI exposes for it.
type ArgsType struct {
	Model         ArgsSchema
	Examples      []map[string]any
	ParserOptions []ParserOption
}

// Params is a template's input contract.
type Params struct {
	MinImages    int
	MaxImages    int
	MinTexts     int
	MaxTexts     int
	DefaultTexts []string
	ArgsType     *ArgsType
}

// Validate checks the bounds are non-negative and ordered, and that every
// parser option is well formed.
func (p Params) Validate() error {
	if p.MinImages < 0 || p.MaxImages < 0 || p.MinTexts < 0 || p.MaxTexts < 0 {
		return fmt.Errorf("params bounds must be non-negative")
	}
	if p.MinImages > p.MaxImages {
		return fmt.Errorf("min_images %d exceeds max_images %d", p.MinImages, p.MaxImages)
	}
	if p.MinTexts > p.MaxTexts {
		return fmt.Errorf("min_texts %d exceeds max_texts %d", p.MinTexts, p.MaxTexts)
	}
	if p.ArgsType != nil {
		for _, opt := range p.ArgsType.ParserOptions {
			if err := opt.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Schema returns the bound args schema, or BaseSchema.
func (p Params) Schema() ArgsSchema {
	if p.ArgsType != nil && p.ArgsType.Model != nil {
		return p.ArgsType.Model
	}
	return BaseSchema
}

// ParserOptions returns the declared options, if any.
func (p Params) ParserOptions() []ParserOption {
	if p.ArgsType == nil {
		return nil
	}
	return p.ArgsType.ParserOptions
}

// DefaultTextsUsable reports whether DefaultTexts can stand in for caller
// texts without breaking the text bounds.
func (p Params) DefaultTextsUsable() bool {
	n := len(p.DefaultTexts)
	return n >= p.MinTexts && n <= p.MaxTexts
}

func (p Params) clone() Params {
	out := p
	out.DefaultTexts = append([]string(nil), p.DefaultTexts...)
	if p.ArgsType != nil {
		at := *p.ArgsType
		at.Examples = append([]map[string]any(nil), p.ArgsType.Examples...)
		at.ParserOptions = append([]ParserOption(nil), p.ArgsType.ParserOptions...)
		out.ArgsType = &at
	}
	return out
}
