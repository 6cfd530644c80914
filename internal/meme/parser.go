package meme

import (
	"fmt"
	"strings"
)

// ValueType tags the type of a ParserArg value.
type ValueType string

const (
	TypeStr   ValueType = "str"
	TypeInt   ValueType = "int"
	TypeFloat ValueType = "float"
	TypeBool  ValueType = "bool"
)

// Action is the effect an option has on its destination field.
type Action string

const (
	ActionStore      Action = "store"
	ActionStoreTrue  Action = "store_true"
	ActionStoreFalse Action = "store_false"
	ActionAppend     Action = "append"
	ActionCount      Action = "count"
)

// ArgFlag modifies how a ParserArg slot is filled.
type ArgFlag string

const (
	// FlagOptional lets the slot be omitted.
	FlagOptional ArgFlag = "optional"
	// FlagHidden hides the slot from help output.
	FlagHidden ArgFlag = "hidden"
)

// ParserArg is one value slot of a ParserOption.
type ParserArg struct {
	Name    string    `json:"name" yaml:"name"`
	Value   ValueType `json:"value" yaml:"value"`
	Default any       `json:"default,omitempty" yaml:"default,omitempty"`
	Flags   []ArgFlag `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// HasFlag reports whether f is set on the arg.
func (a ParserArg) HasFlag(f ArgFlag) bool {
	for _, flag := range a.Flags {
		if flag == f {
			return true
		}
	}
	return false
}

// ParserOption declares one command-line option a template accepts. An
// option without Args is a boolean switch.
type ParserOption struct {
	Names    []string    `json:"names" yaml:"names"`
	Args     []ParserArg `json:"args,omitempty" yaml:"args,omitempty"`
	Dest     string      `json:"dest,omitempty" yaml:"dest,omitempty"`
	Default  any         `json:"default,omitempty" yaml:"default,omitempty"`
	Action   Action      `json:"action,omitempty" yaml:"action,omitempty"`
	HelpText string      `json:"help_text,omitempty" yaml:"help_text,omitempty"`
	Compact  bool        `json:"compact,omitempty" yaml:"compact,omitempty"`
}

// Name joins the aliases the way they are shown in help output.
func (o ParserOption) Name() string {
	return strings.Join(o.Names, "|")
}

// Destination resolves the args field the option writes to. An explicit
// Dest wins, then a single arg's name, then the longest alias stripped of
// dashes.
func (o ParserOption) Destination() string {
	if o.Dest != "" {
		return o.Dest
	}
	if len(o.Args) == 1 {
		return o.Args[0].Name
	}
	best := ""
	for _, n := range o.Names {
		trimmed := strings.TrimLeft(n, "-")
		if len(trimmed) > len(best) {
			best = trimmed
		}
	}
	return strings.ReplaceAll(best, "-", "_")
}

// EffectiveAction fills in the implied action when none is declared.
func (o ParserOption) EffectiveAction() Action {
	if o.Action != "" {
		return o.Action
	}
	if len(o.Args) == 0 {
		return ActionStoreTrue
	}
	return ActionStore
}

// Validate checks the option is well formed.
func (o ParserOption) Validate() error {
	if len(o.Names) == 0 {
		return fmt.Errorf("parser option has no names")
	}
	for _, n := range o.Names {
		if strings.TrimLeft(n, "-") == "" {
			return fmt.Errorf("parser option %q has an empty alias", o.Name())
		}
	}
	switch o.EffectiveAction() {
	case ActionStore, ActionAppend:
	case ActionStoreTrue, ActionStoreFalse, ActionCount:
		if len(o.Args) > 0 {
			return fmt.Errorf("parser option %q: action %s takes no args", o.Name(), o.EffectiveAction())
		}
	default:
		return fmt.Errorf("parser option %q: unknown action %q", o.Name(), o.Action)
	}
	for _, a := range o.Args {
		switch a.Value {
		case TypeStr, TypeInt, TypeFloat, TypeBool:
		default:
			return fmt.Errorf("parser option %q: arg %q has unknown type %q", o.Name(), a.Name, a.Value)
		}
	}
	return nil
}

// CommandShortcut is an alternate invocation alias. Its Args are prepended to
// whatever the caller passes.
type CommandShortcut struct {
	Key       string   `json:"key" yaml:"key"`
	Args      []string `json:"args,omitempty" yaml:"args,omitempty"`
	Humanized string   `json:"humanized,omitempty" yaml:"humanized,omitempty"`
}

// OptionParser parses command-line arguments against a template's options.
type OptionParser interface {
	// Parse returns the args mapping keyed by destination and the positional
	// arguments left over.
	Parse(arguments []string) (map[string]any, []string, error)
}

// OptionTranslator turns declarative options into a concrete parser.
// Implementations must be pure: the same options always yield an equivalent
// parser.
type OptionTranslator interface {
	Translate(name string, options []ParserOption) (OptionParser, error)
}
