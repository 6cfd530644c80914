// Package pflagparser translates declarative meme parser options into
// github.com/spf13/pflag flag sets.
//
// Every alias of an option survives the translation. The first long alias
// becomes the visible flag, the first single-letter alias its shorthand and
// every other alias a hidden flag sharing the same value. Later single-letter
// aliases keep their short form: each is a hidden flag whose name and
// shorthand are the letter.
package pflagparser

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"

	"github.com/memeforge/memeforge/internal/meme"
)

// Flag is the pflag form of one meme.ParserOption.
type Flag struct {
	Option    meme.ParserOption
	Dest      string
	Action    meme.Action
	Name      string
	Shorthand string
	Aliases   []string
	// ExtraShorthands are single-letter aliases after the first.
	ExtraShorthands []string
	Usage     string
	// Default is the value reported when the flag is absent, already
	// converted to the flag's type. Nil means the option has no default and
	// the schema default applies.
	Default any
}

// Names returns the visible name followed by every hidden alias, extra
// shorthands last.
func (f Flag) Names() []string {
	names := append([]string{f.Name}, f.Aliases...)
	return append(names, f.ExtraShorthands...)
}

// Shorthands returns every single-letter alias in declaration order.
func (f Flag) Shorthands() []string {
	if f.Shorthand == "" {
		return nil
	}
	return append([]string{f.Shorthand}, f.ExtraShorthands...)
}

func (f Flag) isSwitch() bool {
	switch f.Action {
	case meme.ActionStoreTrue, meme.ActionStoreFalse:
		return true
	case meme.ActionStore:
		return len(f.Option.Args) == 0
	}
	return false
}

// Build converts options to flag specs in declaration order. It fails on
// malformed options, on unconvertible defaults and when two options claim
// the same alias.
func Build(options []meme.ParserOption) ([]Flag, error) {
	owners := make(map[string]string)
	shorts := make(map[string]string)
	flags := make([]Flag, 0, len(options))

	for _, opt := range options {
		if err := opt.Validate(); err != nil {
			return nil, err
		}
		f, err := buildFlag(opt)
		if err != nil {
			return nil, err
		}
		for _, n := range f.Names() {
			if prev, ok := owners[n]; ok {
				return nil, fmt.Errorf("flag --%s declared by both %q and %q", n, prev, opt.Name())
			}
			owners[n] = opt.Name()
		}
		for _, short := range f.Shorthands() {
			if prev, ok := shorts[short]; ok {
				return nil, fmt.Errorf("flag -%s declared by both %q and %q", short, prev, opt.Name())
			}
			shorts[short] = opt.Name()
		}
		flags = append(flags, f)
	}
	return flags, nil
}

func buildFlag(opt meme.ParserOption) (Flag, error) {
	f := Flag{
		Option: opt,
		Dest:   opt.Destination(),
		Action: opt.EffectiveAction(),
		Usage:  opt.HelpText,
	}

	var longs []string
	for _, n := range opt.Names {
		trimmed := strings.TrimLeft(n, "-")
		single := !strings.HasPrefix(n, "--") && len(trimmed) == 1 && trimmed[0] < utf8.RuneSelf
		if single {
			switch {
			case f.Shorthand == "":
				f.Shorthand = trimmed
			case trimmed != f.Shorthand && !containsString(f.ExtraShorthands, trimmed):
				f.ExtraShorthands = append(f.ExtraShorthands, trimmed)
			}
			continue
		}
		if !containsString(longs, trimmed) {
			longs = append(longs, trimmed)
		}
	}
	if len(longs) == 0 {
		longs = []string{f.Shorthand}
	}
	for _, short := range f.ExtraShorthands {
		if containsString(longs, short) {
			return Flag{}, fmt.Errorf("parser option %q: alias %q is declared both short and long", opt.Name(), short)
		}
	}
	f.Name = longs[0]
	f.Aliases = longs[1:]

	def, err := flagDefault(f)
	if err != nil {
		return Flag{}, fmt.Errorf("parser option %q: %w", opt.Name(), err)
	}
	f.Default = def
	return f, nil
}

func flagDefault(f Flag) (any, error) {
	opt := f.Option
	switch {
	case f.isSwitch():
		if opt.Default == nil {
			return nil, nil
		}
		if f.Action == meme.ActionStore {
			return opt.Default, nil
		}
		b, ok := opt.Default.(bool)
		if !ok {
			return nil, fmt.Errorf("switch default must be a bool, got %T", opt.Default)
		}
		return b, nil
	case f.Action == meme.ActionCount:
		if opt.Default == nil {
			return nil, nil
		}
		return convert(meme.TypeInt, opt.Default)
	case f.Action == meme.ActionAppend:
		if opt.Default == nil {
			return nil, nil
		}
		return convertSlice(opt.Args[0].Value, opt.Default)
	case len(opt.Args) == 1:
		d := opt.Args[0].Default
		if d == nil {
			d = opt.Default
		}
		if d == nil {
			return nil, nil
		}
		return convert(opt.Args[0].Value, d)
	default:
		// multi-slot options report each slot's default from Collect
		return nil, nil
	}
}

// Bind registers flags on fs. It refuses names or shorthands fs already
// defines.
func Bind(fs *pflag.FlagSet, flags []Flag) error {
	for _, f := range flags {
		for _, n := range f.Names() {
			if fs.Lookup(n) != nil {
				return fmt.Errorf("flag --%s is already defined", n)
			}
		}
		for _, short := range f.Shorthands() {
			if fs.ShorthandLookup(short) != nil {
				return fmt.Errorf("flag -%s is already defined", short)
			}
		}
		bindPrimary(fs, f)
		primary := fs.Lookup(f.Name)
		for _, alias := range f.Aliases {
			bindHidden(fs, primary, alias, "", f.Usage)
		}
		for _, short := range f.ExtraShorthands {
			bindHidden(fs, primary, short, short, f.Usage)
		}
	}
	return nil
}

func bindHidden(fs *pflag.FlagSet, primary *pflag.Flag, name, shorthand, usage string) {
	af := fs.VarPF(primary.Value, name, shorthand, usage)
	af.NoOptDefVal = primary.NoOptDefVal
	af.Hidden = true
}

func bindPrimary(fs *pflag.FlagSet, f Flag) {
	switch {
	case f.isSwitch():
		fs.BoolP(f.Name, f.Shorthand, false, f.Usage)
	case f.Action == meme.ActionCount:
		fs.CountP(f.Name, f.Shorthand, f.Usage)
	case f.Action == meme.ActionAppend:
		switch f.Option.Args[0].Value {
		case meme.TypeInt:
			fs.IntSliceP(f.Name, f.Shorthand, nil, f.Usage)
		case meme.TypeFloat:
			fs.Float64SliceP(f.Name, f.Shorthand, nil, f.Usage)
		case meme.TypeBool:
			fs.BoolSliceP(f.Name, f.Shorthand, nil, f.Usage)
		default:
			fs.StringArrayP(f.Name, f.Shorthand, nil, f.Usage)
		}
	case len(f.Option.Args) == 1:
		switch f.Option.Args[0].Value {
		case meme.TypeInt:
			d, _ := f.Default.(int)
			fs.IntP(f.Name, f.Shorthand, d, f.Usage)
		case meme.TypeFloat:
			d, _ := f.Default.(float64)
			fs.Float64P(f.Name, f.Shorthand, d, f.Usage)
		case meme.TypeBool:
			d, _ := f.Default.(bool)
			fs.BoolP(f.Name, f.Shorthand, d, f.Usage)
		default:
			d, _ := f.Default.(string)
			fs.StringP(f.Name, f.Shorthand, d, f.Usage)
		}
	default:
		names := make([]string, len(f.Option.Args))
		for i, a := range f.Option.Args {
			names[i] = a.Name
		}
		usage := strings.TrimSpace(f.Usage + " (" + strings.Join(names, ",") + ")")
		fs.StringSliceP(f.Name, f.Shorthand, nil, usage)
	}
}

// Collect reads parsed flags back into an args mapping keyed by destination.
// Flags the user did not pass contribute their default, if any; flags they
// did pass always override defaults, also across options sharing a
// destination.
func Collect(fs *pflag.FlagSet, flags []Flag) (map[string]any, error) {
	out := make(map[string]any)
	var changed []Flag
	for _, f := range flags {
		if wasChanged(fs, f) {
			changed = append(changed, f)
			continue
		}
		def := f.Default
		if f.Action == meme.ActionStore && len(f.Option.Args) > 1 {
			if slots := slotDefaults(f.Option.Args); len(slots) > 0 {
				def = slots
			}
		}
		if def == nil {
			continue
		}
		if _, set := out[f.Dest]; !set {
			out[f.Dest] = def
		}
	}

	for _, f := range changed {
		v, err := changedValue(fs, f)
		if err != nil {
			return nil, err
		}
		out[f.Dest] = v
	}
	return out, nil
}

func wasChanged(fs *pflag.FlagSet, f Flag) bool {
	for _, n := range f.Names() {
		if fl := fs.Lookup(n); fl != nil && fl.Changed {
			return true
		}
	}
	return false
}

func changedValue(fs *pflag.FlagSet, f Flag) (any, error) {
	switch {
	case f.isSwitch():
		switch f.Action {
		case meme.ActionStoreFalse:
			return false, nil
		case meme.ActionStore:
			if f.Option.Default != nil {
				return f.Option.Default, nil
			}
		}
		return true, nil
	case f.Action == meme.ActionCount:
		n, err := fs.GetCount(f.Name)
		if err != nil {
			return nil, err
		}
		if base, ok := f.Default.(int); ok {
			n += base
		}
		return n, nil
	case f.Action == meme.ActionAppend:
		switch f.Option.Args[0].Value {
		case meme.TypeInt:
			return fs.GetIntSlice(f.Name)
		case meme.TypeFloat:
			return fs.GetFloat64Slice(f.Name)
		case meme.TypeBool:
			return fs.GetBoolSlice(f.Name)
		default:
			return fs.GetStringArray(f.Name)
		}
	case len(f.Option.Args) == 1:
		switch f.Option.Args[0].Value {
		case meme.TypeInt:
			return fs.GetInt(f.Name)
		case meme.TypeFloat:
			return fs.GetFloat64(f.Name)
		case meme.TypeBool:
			return fs.GetBool(f.Name)
		default:
			return fs.GetString(f.Name)
		}
	default:
		raw, err := fs.GetStringSlice(f.Name)
		if err != nil {
			return nil, err
		}
		return fillSlots(f, raw)
	}
}

// fillSlots assigns positional values to the option's arg slots in order.
func fillSlots(f Flag, raw []string) (map[string]any, error) {
	required := 0
	for _, a := range f.Option.Args {
		if !a.HasFlag(meme.FlagOptional) {
			required++
		}
	}
	if len(raw) < required || len(raw) > len(f.Option.Args) {
		return nil, fmt.Errorf("flag --%s expects %s value(s), got %d", f.Name, describeCount(required, len(f.Option.Args)), len(raw))
	}
	out := make(map[string]any, len(f.Option.Args))
	for i, a := range f.Option.Args {
		if i >= len(raw) {
			if a.Default != nil {
				out[a.Name] = a.Default
			}
			continue
		}
		v, err := parseValue(a.Value, raw[i])
		if err != nil {
			return nil, fmt.Errorf("flag --%s %s: %w", f.Name, a.Name, err)
		}
		out[a.Name] = v
	}
	return out, nil
}

func slotDefaults(args []meme.ParserArg) map[string]any {
	out := make(map[string]any)
	for _, a := range args {
		if a.Default != nil {
			out[a.Name] = a.Default
		}
	}
	return out
}

func describeCount(lo, hi int) string {
	if lo == hi {
		return strconv.Itoa(lo)
	}
	return fmt.Sprintf("%d to %d", lo, hi)
}

func parseValue(t meme.ValueType, raw string) (any, error) {
	switch t {
	case meme.TypeInt:
		return strconv.Atoi(raw)
	case meme.TypeFloat:
		return strconv.ParseFloat(raw, 64)
	case meme.TypeBool:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}

func convert(t meme.ValueType, v any) (any, error) {
	switch t {
	case meme.TypeInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("default %v is not an integer", n)
			}
			return int(n), nil
		}
	case meme.TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case meme.TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
	return nil, fmt.Errorf("default %v (%T) does not match type %s", v, v, t)
}

func convertSlice(t meme.ValueType, v any) (any, error) {
	var items []any
	switch s := v.(type) {
	case []any:
		items = s
	case []string:
		for _, item := range s {
			items = append(items, item)
		}
	case []int:
		for _, item := range s {
			items = append(items, item)
		}
	case []float64:
		for _, item := range s {
			items = append(items, item)
		}
	default:
		return nil, fmt.Errorf("append default must be a list, got %T", v)
	}

	switch t {
	case meme.TypeInt:
		out := make([]int, 0, len(items))
		for _, item := range items {
			c, err := convert(t, item)
			if err != nil {
				return nil, err
			}
			out = append(out, c.(int))
		}
		return out, nil
	case meme.TypeFloat:
		out := make([]float64, 0, len(items))
		for _, item := range items {
			c, err := convert(t, item)
			if err != nil {
				return nil, err
			}
			out = append(out, c.(float64))
		}
		return out, nil
	case meme.TypeBool:
		out := make([]bool, 0, len(items))
		for _, item := range items {
			c, err := convert(t, item)
			if err != nil {
				return nil, err
			}
			out = append(out, c.(bool))
		}
		return out, nil
	default:
		out := make([]string, 0, len(items))
		for _, item := range items {
			c, err := convert(t, item)
			if err != nil {
				return nil, err
			}
			out = append(out, c.(string))
		}
		return out, nil
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Parser is a meme.OptionParser backed by a fresh pflag.FlagSet per call.
type Parser struct {
	name  string
	flags []Flag
}

// New builds a parser for the given options.
func New(name string, options []meme.ParserOption) (*Parser, error) {
	flags, err := Build(options)
	if err != nil {
		return nil, err
	}
	return &Parser{name: name, flags: flags}, nil
}

// Flags returns the translated flag specs.
func (p *Parser) Flags() []Flag {
	return append([]Flag(nil), p.flags...)
}

// Parse implements meme.OptionParser. Unknown flags are an error; anything
// that is not a flag is returned as positional.
func (p *Parser) Parse(arguments []string) (map[string]any, []string, error) {
	fs := pflag.NewFlagSet(p.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := Bind(fs, p.flags); err != nil {
		return nil, nil, err
	}
	if err := fs.Parse(arguments); err != nil {
		return nil, nil, err
	}
	args, err := Collect(fs, p.flags)
	if err != nil {
		return nil, nil, err
	}
	return args, fs.Args(), nil
}

// Translator implements meme.OptionTranslator.
type Translator struct{}

// Translate implements meme.OptionTranslator.
func (Translator) Translate(name string, options []meme.ParserOption) (meme.OptionParser, error) {
	p, err := New(name, options)
	if err != nil {
		return nil, err
	}
	return p, nil
}

var _ meme.OptionTranslator = Translator{}
