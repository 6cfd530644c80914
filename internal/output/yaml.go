package output

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/memeforge/memeforge/internal/meme"
)

// YAMLFormatter renders descriptors as YAML documents.
type YAMLFormatter struct{}

// FormatCatalog renders descriptors as a YAML sequence.
func (f *YAMLFormatter) FormatCatalog(entries []meme.Descriptor) (string, error) {
	if entries == nil {
		entries = []meme.Descriptor{}
	}
	return marshalYAML(entries)
}

// FormatDescriptor renders one descriptor.
func (f *YAMLFormatter) FormatDescriptor(entry meme.Descriptor) (string, error) {
	return marshalYAML(entry)
}

func marshalYAML(value any) (string, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
