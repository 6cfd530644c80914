package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/memeforge/memeforge/internal/meme"
)

func sampleDescriptors() []meme.Descriptor {
	created := time.Date(2024, 10, 30, 0, 0, 0, 0, time.UTC)
	return []meme.Descriptor{
		{
			Key: "left_right",
			Params: meme.ParamsDescriptor{
				MinTexts:     2,
				MaxTexts:     2,
				DefaultTexts: []string{"left", "right"},
			},
			Keywords:     []string{"左右"},
			Tags:         []string{"text"},
			DateCreated:  created,
			DateModified: created,
		},
		{
			Key: "wechat_pay",
			Params: meme.ParamsDescriptor{
				MinImages: 1,
				MaxImages: 1,
				MaxTexts:  1,
				ArgsType: &meme.ArgsTypeDescriptor{
					ArgsModel: "WechatPayArgs",
					ParserOptions: []meme.ParserOption{{
						Names:    []string{"-m", "--message"},
						Args:     []meme.ParserArg{{Name: "message", Value: meme.TypeStr}},
						HelpText: "QR code content",
					}},
				},
			},
			Keywords:     []string{"pay|me"},
			Shortcuts:    []meme.CommandShortcut{{Key: "qr", Args: []string{"-m", "x"}}},
			DateCreated:  created,
			DateModified: created,
		},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("yml")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestTableCatalog(t *testing.T) {
	rendered, err := NewFormatter(FormatTable).FormatCatalog(sampleDescriptors())
	require.NoError(t, err)
	require.Contains(t, rendered, "KEY")
	require.Contains(t, rendered, "left_right")
	require.Contains(t, rendered, "0~1")
	require.Contains(t, rendered, "-m|--message")
	require.Contains(t, strings.ToLower(rendered), "2 templates")
	require.Less(t, strings.Index(rendered, "left_right"), strings.Index(rendered, "wechat_pay"))
}

func TestTableDescriptor(t *testing.T) {
	rendered, err := NewFormatter(FormatTable).FormatDescriptor(sampleDescriptors()[1])
	require.NoError(t, err)
	require.Contains(t, rendered, "WechatPayArgs")
	require.Contains(t, rendered, "<message:str>")
	require.Contains(t, rendered, "QR code content")
	require.Contains(t, rendered, "qr -m x")
}

func TestJSONCatalog(t *testing.T) {
	rendered, err := NewFormatter(FormatJSON).FormatCatalog(sampleDescriptors())
	require.NoError(t, err)

	var decoded []meme.Descriptor
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, 1, decoded[1].Params.MaxImages)

	empty, err := NewFormatter(FormatJSON).FormatCatalog(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", empty)
}

func TestYAMLDescriptor(t *testing.T) {
	rendered, err := NewFormatter(FormatYAML).FormatDescriptor(sampleDescriptors()[0])
	require.NoError(t, err)
	require.Contains(t, rendered, "key: left_right")

	var decoded meme.Descriptor
	require.NoError(t, yaml.Unmarshal([]byte(rendered), &decoded))
	require.Equal(t, []string{"left", "right"}, decoded.Params.DefaultTexts)
}

func TestMarkdownEscaping(t *testing.T) {
	formatter := NewFormatter(FormatMarkdown)
	rendered, err := formatter.FormatCatalog(sampleDescriptors())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rendered, "## "))
	require.Contains(t, rendered, "pay\\|me")
	require.Contains(t, rendered, "-m\\|--message")

	detail, err := formatter.FormatDescriptor(sampleDescriptors()[1])
	require.NoError(t, err)
	require.Contains(t, detail, "### Options")
	require.Contains(t, detail, "### Shortcuts")
}
