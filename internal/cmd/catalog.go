package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memeforge/memeforge/internal/catalog"
	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered templates",
	Long:  "List every registered template in registration order with its input bounds and options.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, format, err := catalogInputs(cmd)
		if err != nil {
			return err
		}
		tag, err := cmd.Flags().GetString("tag")
		if err != nil {
			return err
		}
		c := catalog.New(reg)
		descriptors := c.Descriptors()
		if strings.TrimSpace(tag) != "" {
			descriptors = catalog.Describe(c.ByTag(tag))
		}
		return printCatalog(cmd.OutOrStdout(), format, descriptors)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <key|keyword>",
	Short: "Show one template",
	Long:  "Show the full descriptor of a template, including its options, shortcuts and defaults.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, format, err := catalogInputs(cmd)
		if err != nil {
			return err
		}
		m, _, err := reg.Resolve(args[0])
		if err != nil {
			return err
		}
		rendered, err := output.NewFormatter(format).FormatDescriptor(m.Descriptor())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return err
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search templates",
	Long:  "Search template keys, keywords and tags. Best matches are listed first.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, format, err := catalogInputs(cmd)
		if err != nil {
			return err
		}
		matches := catalog.New(reg).Search(strings.Join(args, " "))
		return printCatalog(cmd.OutOrStdout(), format, catalog.Describe(matches))
	},
}

func init() {
	for _, c := range []*cobra.Command{listCmd, infoCmd, searchCmd} {
		c.Flags().String("format", "table", "Output format: table, json, yaml, markdown")
		rootCmd.AddCommand(c)
	}
	listCmd.Flags().String("tag", "", "Only list templates carrying this tag")
}

func catalogInputs(cmd *cobra.Command) (*meme.Registry, output.Format, error) {
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return nil, "", err
	}
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return nil, "", err
	}
	reg, err := newRegistry(cfg.Render)
	if err != nil {
		return nil, "", err
	}
	return reg, format, nil
}

func printCatalog(w io.Writer, format output.Format, descriptors []meme.Descriptor) error {
	rendered, err := output.NewFormatter(format).FormatCatalog(descriptors)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, rendered)
	return err
}
