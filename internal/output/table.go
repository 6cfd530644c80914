package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/memeforge/memeforge/internal/meme"
)

// TableFormatter renders descriptors as ASCII tables.
type TableFormatter struct{}

// FormatCatalog renders one row per template.
func (f *TableFormatter) FormatCatalog(entries []meme.Descriptor) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Key", "Keywords", "Images", "Texts", "Options", "Tags"})

	for _, d := range entries {
		t.AppendRow(table.Row{
			d.Key,
			strings.Join(d.Keywords, ", "),
			imagesLabel(d),
			textsLabel(d),
			optionsLabel(d),
			strings.Join(d.Tags, ", "),
		})
	}

	t.AppendFooter(table.Row{"", "", "", "", "", fmt.Sprintf("%d templates", len(entries))})
	return t.Render(), nil
}

// FormatDescriptor renders a key/value summary followed by the option and
// shortcut tables when present.
func (f *TableFormatter) FormatDescriptor(d meme.Descriptor) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendRow(table.Row{"Key", d.Key})
	t.AppendRow(table.Row{"Keywords", strings.Join(d.Keywords, ", ")})
	t.AppendRow(table.Row{"Images", imagesLabel(d)})
	t.AppendRow(table.Row{"Texts", textsLabel(d)})
	t.AppendRow(table.Row{"Default texts", strings.Join(d.Params.DefaultTexts, " / ")})
	t.AppendRow(table.Row{"Tags", strings.Join(d.Tags, ", ")})
	t.AppendRow(table.Row{"Created", d.DateCreated.Format("2006-01-02")})
	t.AppendRow(table.Row{"Modified", d.DateModified.Format("2006-01-02")})
	if d.Params.ArgsType != nil {
		t.AppendRow(table.Row{"Args model", d.Params.ArgsType.ArgsModel})
	}

	sections := []string{t.Render()}

	if at := d.Params.ArgsType; at != nil && len(at.ParserOptions) > 0 {
		opts := table.NewWriter()
		opts.SetStyle(table.StyleRounded)
		opts.AppendHeader(table.Row{"Option", "Args", "Default", "Help"})
		for _, o := range at.ParserOptions {
			opts.AppendRow(table.Row{o.Name(), optionArgs(o), defaultLabel(o.Default), o.HelpText})
		}
		sections = append(sections, opts.Render())
	}

	if len(d.Shortcuts) > 0 {
		sc := table.NewWriter()
		sc.SetStyle(table.StyleRounded)
		sc.AppendHeader(table.Row{"Shortcut", "Expands to"})
		for _, s := range d.Shortcuts {
			sc.AppendRow(table.Row{s.Key, shortcutLabel(s)})
		}
		sections = append(sections, sc.Render())
	}

	return strings.Join(sections, "\n"), nil
}
