package output

import (
	"fmt"
	"strings"

	"github.com/memeforge/memeforge/internal/meme"
)

// countLabel renders an inclusive bound as "2" or "0~1".
func countLabel(lo, hi int) string {
	if lo == hi {
		return fmt.Sprintf("%d", lo)
	}
	return fmt.Sprintf("%d~%d", lo, hi)
}

func imagesLabel(d meme.Descriptor) string {
	return countLabel(d.Params.MinImages, d.Params.MaxImages)
}

func textsLabel(d meme.Descriptor) string {
	return countLabel(d.Params.MinTexts, d.Params.MaxTexts)
}

func optionsLabel(d meme.Descriptor) string {
	if d.Params.ArgsType == nil {
		return ""
	}
	names := make([]string, 0, len(d.Params.ArgsType.ParserOptions))
	for _, opt := range d.Params.ArgsType.ParserOptions {
		names = append(names, opt.Name())
	}
	return strings.Join(names, " ")
}

func optionArgs(opt meme.ParserOption) string {
	parts := make([]string, 0, len(opt.Args))
	for _, a := range opt.Args {
		part := fmt.Sprintf("<%s:%s>", a.Name, a.Value)
		if a.HasFlag(meme.FlagOptional) {
			part = "[" + part + "]"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

func shortcutLabel(s meme.CommandShortcut) string {
	if s.Humanized != "" {
		return s.Humanized
	}
	if len(s.Args) == 0 {
		return s.Key
	}
	return s.Key + " " + strings.Join(s.Args, " ")
}

func defaultLabel(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
