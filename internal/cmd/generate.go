package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/meme/pflagparser"
	"github.com/memeforge/memeforge/internal/observability"
	"github.com/memeforge/memeforge/internal/render"
)

var generateCmd = &cobra.Command{
	Use:   "generate <key|keyword|shortcut> [texts...] [flags]",
	Short: "Render a template",
	Long: `Render a template from local images and texts.

Template options come from the template itself; run
"generate <key> --help" to list them. Shortcut names are accepted in place
of the key and apply their preset arguments before yours.

Template options take precedence over the single-letter forms of -i, -t, -o
and -h; --image, --text, --out and --help always work. Use --verbose rather
than -v after the key.

Examples:
  memeforge generate left_right left right
  memeforge generate wechat_pay -i me.png -m "lunch money" Alice -o pay.png`,
	Args: cobra.MinimumNArgs(1),
	// Template options are only known once the key is resolved.
	DisableFlagParsing: true,
	RunE:               runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

// generateRequest is a parsed generate invocation.
type generateRequest struct {
	meme   *meme.Meme
	images []string
	texts  []string
	args   map[string]any
	out    string
	help   string
}

func runGenerate(cmd *cobra.Command, argv []string) error {
	if len(argv) == 0 || argv[0] == "-h" || argv[0] == "--help" {
		return cmd.Help()
	}

	ctx := cmd.Context()
	rest, err := applyGlobalFlags(argv[1:])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	rt, err := newRuntime(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer rt.Close() // nolint:errcheck // no store opened for generate

	req, err := parseGenerate(rt.registry, argv[0], rest)
	if err != nil {
		return err
	}
	if req.help != "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), req.help)
		return err
	}
	return executeGenerate(ctx, rt.renderer, req, cmd.OutOrStdout())
}

// applyGlobalFlags honours --config and --verbose, which cobra does not
// parse for generate, and returns the remaining arguments. Only the long
// forms are taken so that -v stays free for template options.
func applyGlobalFlags(argv []string) ([]string, error) {
	rest := make([]string, 0, len(argv))
	reload := false
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--":
			rest = append(rest, argv[i:]...)
			i = len(argv)
		case arg == "--config":
			if i+1 >= len(argv) {
				return nil, errors.New("flag needs an argument: --config")
			}
			cfgFile = argv[i+1]
			reload = true
			i++
		case strings.HasPrefix(arg, "--config="):
			cfgFile = strings.TrimPrefix(arg, "--config=")
			reload = true
		case arg == "--verbose":
			verbose = true
			reload = true
		default:
			rest = append(rest, arg)
		}
	}
	if reload {
		initConfig()
	}
	return rest, nil
}

// parseGenerate resolves name and parses argv against the template's options
// plus --image, --text and --out. Template options win single letters: -i,
// -t, -o and -h fall back to the long names when a template declares them.
// Shortcut args are placed before argv. Positional arguments are appended to
// --text values.
func parseGenerate(reg *meme.Registry, name string, argv []string) (generateRequest, error) {
	m, shortcut, err := reg.Resolve(name)
	if err != nil {
		return generateRequest{}, err
	}
	if shortcut != nil {
		argv = append(append([]string(nil), shortcut.Args...), argv...)
	}

	flags, err := pflagparser.Build(m.Params().ParserOptions())
	if err != nil {
		return generateRequest{}, fmt.Errorf("template %s: %w", m.Key(), err)
	}

	fs := pflag.NewFlagSet(m.Key(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := pflagparser.Bind(fs, flags); err != nil {
		return generateRequest{}, fmt.Errorf("template %s: %w", m.Key(), err)
	}
	for _, name := range reservedGenerateFlags {
		if fs.Lookup(name) != nil {
			return generateRequest{}, fmt.Errorf("template %s: option --%s is reserved by generate", m.Key(), name)
		}
	}
	images := fs.StringArrayP("image", freeShorthand(fs, "i"), nil, "Input image file (repeatable)")
	texts := fs.StringArrayP("text", freeShorthand(fs, "t"), nil, "Input text (repeatable)")
	out := fs.StringP("out", freeShorthand(fs, "o"), "", `Output file; "-" writes to stdout (default <key>.<ext>)`)
	help := fs.BoolP("help", freeShorthand(fs, "h"), false, "Show template options")

	if err := fs.Parse(argv); err != nil {
		return generateRequest{}, fmt.Errorf("template %s: %w", m.Key(), err)
	}
	if *help {
		return generateRequest{meme: m, help: generateUsage(m, fs)}, nil
	}

	args, err := pflagparser.Collect(fs, flags)
	if err != nil {
		return generateRequest{}, fmt.Errorf("template %s: %w", m.Key(), err)
	}

	return generateRequest{
		meme:   m,
		images: *images,
		texts:  append(append([]string(nil), *texts...), fs.Args()...),
		args:   args,
		out:    *out,
	}, nil
}

// reservedGenerateFlags are long names generate keeps for itself. config and
// verbose are consumed by applyGlobalFlags before template parsing.
var reservedGenerateFlags = []string{"image", "text", "out", "help", "config", "verbose"}

// freeShorthand returns short unless a template option already claims it.
func freeShorthand(fs *pflag.FlagSet, short string) string {
	if fs.ShorthandLookup(short) != nil {
		return ""
	}
	return short
}

func generateUsage(m *meme.Meme, fs *pflag.FlagSet) string {
	p := m.Params()
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: generate %s [texts...] [flags]\n\n", m.Key())
	fmt.Fprintf(&b, "Images: %d..%d  Texts: %d..%d\n", p.MinImages, p.MaxImages, p.MinTexts, p.MaxTexts)
	if len(p.DefaultTexts) > 0 {
		fmt.Fprintf(&b, "Default texts: %s\n", strings.Join(p.DefaultTexts, ", "))
	}
	for _, s := range m.Shortcuts() {
		fmt.Fprintf(&b, "Shortcut: %s %s\n", s.Key, strings.Join(s.Args, " "))
	}
	b.WriteString("\nFlags:\n")
	b.WriteString(fs.FlagUsages())
	return b.String()
}

func executeGenerate(ctx context.Context, renderer *render.Service, req generateRequest, stdout io.Writer) error {
	images := make([][]byte, 0, len(req.images))
	for _, path := range req.images {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		images = append(images, data)
	}

	result, err := renderer.Render(ctx, req.meme, images, req.texts, req.args)
	if err != nil {
		return err
	}

	out := strings.TrimSpace(req.out)
	if out == "" {
		out = imageFilename(req.meme.Key(), result)
	}
	if err := writeImage(stdout, out, result.Data); err != nil {
		return err
	}
	if out != "-" && observability.CLILogger != nil {
		observability.CLILogger.Info("Wrote "+out,
			zap.String("template", req.meme.Key()),
			zap.String("content_type", result.ContentType),
			zap.Int("bytes", len(result.Data)))
	}
	return nil
}
