package meme

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Gender of a UserInfo.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// UserInfo is a person referenced by a template, usually the sender or the
// target of a chat command.
type UserInfo struct {
	Name   string `mapstructure:"name" json:"name" yaml:"name"`
	Gender Gender `mapstructure:"gender" json:"gender" yaml:"gender" arg:"enum=male|female|unknown"`
}

// NewUserInfo returns a UserInfo, normalising an empty gender to unknown.
func NewUserInfo(name string, gender Gender) UserInfo {
	if gender == "" {
		gender = GenderUnknown
	}
	return UserInfo{Name: name, Gender: gender}
}

// Args is a validated argument set. Template argument structs embed BaseArgs
// with `mapstructure:",squash"` to satisfy it.
type Args interface {
	UserInfos() []UserInfo
}

// BaseArgs carries the fields every template accepts.
type BaseArgs struct {
	Users []UserInfo `mapstructure:"user_infos" json:"user_infos" yaml:"user_infos"`
}

// UserInfos returns the subjects passed with the call.
func (a BaseArgs) UserInfos() []UserInfo {
	return a.Users
}

// ArgsSchema validates an untyped mapping into typed Args.
type ArgsSchema interface {
	Name() string
	Validate(raw map[string]any) (Args, error)
	Fields() []FieldSpec
}

// FieldSpec describes one top-level schema field for introspection.
type FieldSpec struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Default     any      `json:"default,omitempty" yaml:"default,omitempty"`
	Required    bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Enum        []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Schema is an ArgsSchema backed by a struct type T. Field names come from
// `mapstructure` tags; an `arg` tag adds rules:
//
//	arg:"required"
//	arg:"enum=a|b|c"
//	arg:"required,enum=a|b"
//
// and a `desc` tag documents the field.
type Schema[T Args] struct {
	name     string
	defaults func() T
}

// NewSchema builds a schema. defaults returns a fresh value holding every
// default; it is called once per validation.
func NewSchema[T Args](name string, defaults func() T) *Schema[T] {
	if defaults == nil {
		defaults = func() T {
			var zero T
			return zero
		}
	}
	return &Schema[T]{name: name, defaults: defaults}
}

// BaseSchema validates templates that declare no extra args.
var BaseSchema ArgsSchema = NewSchema("MemeArgsModel", func() BaseArgs { return BaseArgs{} })

// Name returns the schema name.
func (s *Schema[T]) Name() string {
	return s.name
}

// Validate decodes raw into T. Absent fields keep their defaults; unknown
// keys, type mismatches, missing required fields and out-of-range enum values
// are all collected into one ArgModelMismatchError.
func (s *Schema[T]) Validate(raw map[string]any) (Args, error) {
	value := s.defaults()
	rv := reflect.ValueOf(&value).Elem()
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema %s: args type must be a struct, got %s", s.name, rv.Kind())
	}

	fields := structFields(rv.Type())
	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f.name] = struct{}{}
	}

	var violations []Violation
	for key := range raw {
		if _, ok := known[key]; !ok {
			violations = append(violations, Violation{Field: key, Message: "extra fields not permitted"})
		}
	}

	for _, f := range fields {
		input, ok := raw[f.name]
		if !ok {
			if f.rules.required {
				violations = append(violations, Violation{Field: f.name, Message: "field required"})
			}
			continue
		}
		if nulls := nullViolations(f.name, input, f.typ); len(nulls) > 0 {
			violations = append(violations, nulls...)
			continue
		}
		target := rv.FieldByIndex(f.index)
		if err := decodeField(input, target.Addr().Interface()); err != nil {
			for _, msg := range flattenErrors(err) {
				violations = append(violations, Violation{Field: f.name, Message: msg})
			}
			continue
		}
		violations = append(violations, checkEnums(f.name, target, f.rules.enum)...)
	}

	if len(violations) > 0 {
		sort.SliceStable(violations, func(i, j int) bool {
			return violations[i].Field < violations[j].Field
		})
		return nil, newArgModelMismatch(s.name, violations)
	}
	return value, nil
}

// Fields lists top-level fields with their defaults.
func (s *Schema[T]) Fields() []FieldSpec {
	value := s.defaults()
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Struct {
		return nil
	}
	fields := structFields(rv.Type())
	out := make([]FieldSpec, 0, len(fields))
	for _, f := range fields {
		spec := FieldSpec{
			Name:        f.name,
			Type:        typeName(f.typ),
			Required:    f.rules.required,
			Enum:        f.rules.enum,
			Description: f.desc,
		}
		if def := rv.FieldByIndex(f.index); !def.IsZero() {
			spec.Default = def.Interface()
		}
		out = append(out, spec)
	}
	return out
}

type fieldRules struct {
	required bool
	enum     []string
}

type schemaField struct {
	name  string
	index []int
	typ   reflect.Type
	rules fieldRules
	desc  string
}

// structFields walks exported fields, descending into squashed embeds.
func structFields(t reflect.Type) []schemaField {
	var out []schemaField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("mapstructure")
		name, opts, _ := strings.Cut(tag, ",")
		if name == "-" {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && (strings.Contains(opts, "squash") || name == "") {
			for _, inner := range structFields(sf.Type) {
				inner.index = append([]int{i}, inner.index...)
				out = append(out, inner)
			}
			continue
		}
		if name == "" {
			name = strings.ToLower(sf.Name)
		}
		out = append(out, schemaField{
			name:  name,
			index: []int{i},
			typ:   sf.Type,
			rules: parseRules(sf.Tag.Get("arg")),
			desc:  sf.Tag.Get("desc"),
		})
	}
	return out
}

func parseRules(tag string) fieldRules {
	var rules fieldRules
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "required":
			rules.required = true
		case strings.HasPrefix(part, "enum="):
			rules.enum = strings.Split(strings.TrimPrefix(part, "enum="), "|")
		}
	}
	return rules
}

func decodeField(input any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		ErrorUnused: true,
		TagName:     "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			integralFloatHook,
			userInfoDefaultsHook,
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// nullViolations reports explicit nulls supplied for fields that cannot hold
// one. mapstructure treats a nil input as absent, which would silently keep
// the default. Only pointer and interface fields accept null.
func nullViolations(path string, input any, t reflect.Type) []Violation {
	if input == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface:
			return nil
		}
		return []Violation{{Field: path, Message: "input should not be null"}}
	}

	in := reflect.ValueOf(input)
	switch t.Kind() {
	case reflect.Pointer:
		return nullViolations(path, input, t.Elem())
	case reflect.Slice, reflect.Array:
		if in.Kind() != reflect.Slice && in.Kind() != reflect.Array {
			return nil
		}
		var out []Violation
		for i := 0; i < in.Len(); i++ {
			out = append(out, nullViolations(path+"."+strconv.Itoa(i), in.Index(i).Interface(), t.Elem())...)
		}
		return out
	case reflect.Struct:
		if in.Kind() != reflect.Map || in.Type().Key().Kind() != reflect.String {
			return nil
		}
		var out []Violation
		for _, f := range structFields(t) {
			v := in.MapIndex(reflect.ValueOf(f.name).Convert(in.Type().Key()))
			if !v.IsValid() {
				continue
			}
			out = append(out, nullViolations(path+"."+f.name, v.Interface(), f.typ)...)
		}
		return out
	}
	return nil
}

// integralFloatHook lets JSON numbers (always float64) populate integer
// fields, but only when they carry no fractional part.
func integralFloatHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	switch from.Kind() {
	case reflect.Float32, reflect.Float64:
	default:
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("expected an integer, got %v", f)
	}
	return int64(f), nil
}

var userInfoType = reflect.TypeOf(UserInfo{})

// userInfoDefaultsHook fills the gender of user infos that omit it.
func userInfoDefaultsHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != userInfoType || from.Kind() != reflect.Map {
		return data, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}
	if _, has := m["gender"]; has {
		return data, nil
	}
	withDefault := make(map[string]any, len(m)+1)
	for k, v := range m {
		withDefault[k] = v
	}
	withDefault["gender"] = string(GenderUnknown)
	return withDefault, nil
}

// checkEnums validates the field's own enum rule and any enum rules on nested
// structs or slices of structs.
func checkEnums(path string, v reflect.Value, enum []string) []Violation {
	var out []Violation
	if len(enum) > 0 && v.Kind() == reflect.String {
		if !contains(enum, v.String()) {
			out = append(out, Violation{
				Field:   path,
				Message: fmt.Sprintf("value %q is not one of %s", v.String(), strings.Join(quoteAll(enum), ", ")),
			})
		}
	}

	switch v.Kind() {
	case reflect.Struct:
		for _, f := range structFields(v.Type()) {
			out = append(out, checkEnums(path+"."+f.name, v.FieldByIndex(f.index), f.rules.enum)...)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			out = append(out, checkEnums(path+"."+strconv.Itoa(i), v.Index(i), enum)...)
		}
	case reflect.Pointer:
		if !v.IsNil() {
			out = append(out, checkEnums(path, v.Elem(), enum)...)
		}
	}
	return out
}

// flattenErrors splits joined decode errors into individual messages.
func flattenErrors(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, inner := range joined.Unwrap() {
			out = append(out, flattenErrors(inner)...)
		}
		return out
	}
	var msgs []string
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		if line == "" || strings.HasSuffix(line, "error(s) decoding:") {
			continue
		}
		msgs = append(msgs, line)
	}
	if len(msgs) == 0 {
		return []string{err.Error()}
	}
	return msgs
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "str"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice, reflect.Array:
		return "list[" + typeName(t.Elem()) + "]"
	case reflect.Map:
		return "dict"
	case reflect.Struct:
		return t.Name()
	case reflect.Pointer:
		return typeName(t.Elem())
	default:
		return t.Kind().String()
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strconv.Quote(item)
	}
	return out
}

// ArgsAs converts validated args to a template's concrete type.
func ArgsAs[T Args](args Args) (T, error) {
	typed, ok := args.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected args type %T", args)
	}
	return typed, nil
}
