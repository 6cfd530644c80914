package output

import (
	"encoding/json"

	"github.com/memeforge/memeforge/internal/meme"
)

// JSONFormatter renders descriptors as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatCatalog renders descriptors as a JSON array.
func (f *JSONFormatter) FormatCatalog(entries []meme.Descriptor) (string, error) {
	if entries == nil {
		entries = []meme.Descriptor{}
	}
	return f.marshal(entries)
}

// FormatDescriptor renders one descriptor as a JSON object.
func (f *JSONFormatter) FormatDescriptor(entry meme.Descriptor) (string, error) {
	return f.marshal(entry)
}

func (f *JSONFormatter) marshal(value any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
