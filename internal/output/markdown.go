package output

import (
	"fmt"
	"strings"

	"github.com/memeforge/memeforge/internal/meme"
)

// MarkdownFormatter renders descriptors as markdown tables.
type MarkdownFormatter struct{}

// FormatCatalog renders the catalog as one markdown table.
func (f *MarkdownFormatter) FormatCatalog(entries []meme.Descriptor) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Templates\n\n")
	sb.WriteString("| Key | Keywords | Images | Texts | Options | Tags |\n")
	sb.WriteString("|-----|----------|--------|-------|---------|------|\n")

	for _, d := range entries {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			escapeMarkdownCell(d.Key),
			escapeMarkdownCell(strings.Join(d.Keywords, ", ")),
			imagesLabel(d),
			textsLabel(d),
			escapeMarkdownCell(optionsLabel(d)),
			escapeMarkdownCell(strings.Join(d.Tags, ", ")),
		))
	}

	sb.WriteString(fmt.Sprintf("\n**Total**: %d\n", len(entries)))
	return sb.String(), nil
}

// FormatDescriptor renders one template as a markdown section.
func (f *MarkdownFormatter) FormatDescriptor(d meme.Descriptor) (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(d.Key)))
	sb.WriteString(fmt.Sprintf("- Keywords: %s\n", strings.Join(d.Keywords, ", ")))
	sb.WriteString(fmt.Sprintf("- Images: %s\n", imagesLabel(d)))
	sb.WriteString(fmt.Sprintf("- Texts: %s\n", textsLabel(d)))
	if len(d.Params.DefaultTexts) > 0 {
		sb.WriteString(fmt.Sprintf("- Default texts: %s\n", strings.Join(d.Params.DefaultTexts, " / ")))
	}
	if len(d.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("- Tags: %s\n", strings.Join(d.Tags, ", ")))
	}

	if at := d.Params.ArgsType; at != nil && len(at.ParserOptions) > 0 {
		sb.WriteString("\n### Options\n\n")
		sb.WriteString("| Option | Args | Default | Help |\n")
		sb.WriteString("|--------|------|---------|------|\n")
		for _, o := range at.ParserOptions {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				escapeMarkdownCell(o.Name()),
				escapeMarkdownCell(optionArgs(o)),
				escapeMarkdownCell(defaultLabel(o.Default)),
				escapeMarkdownCell(o.HelpText),
			))
		}
	}

	if len(d.Shortcuts) > 0 {
		sb.WriteString("\n### Shortcuts\n\n")
		for _, s := range d.Shortcuts {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", s.Key, shortcutLabel(s)))
		}
	}
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
