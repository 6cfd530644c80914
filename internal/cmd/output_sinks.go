package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memeforge/memeforge/internal/output"
	"github.com/memeforge/memeforge/internal/render"
)

var nonFilename = regexp.MustCompile(`[^a-z0-9._-]+`)

func sanitizeFilename(value string) string {
	clean := strings.ToLower(strings.TrimSpace(value))
	clean = nonFilename.ReplaceAllString(clean, "-")
	clean = strings.Trim(clean, "-.")
	if clean == "" {
		return "output"
	}
	return clean
}

// imageFilename names a rendered image after its template key.
func imageFilename(key string, result render.Result) string {
	return sanitizeFilename(key) + render.Extension(result.ContentType)
}

func resolveOutputFormat(cmd *cobra.Command) (output.Format, error) {
	value, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", err
	}
	return output.ParseFormat(value)
}

// writeImage writes data to path; "-" means stdout.
func writeImage(stdout io.Writer, path string, data []byte) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(trimmed); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(trimmed, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", trimmed, err)
	}
	return nil
}

func ensureOutDir(dir string) (string, error) {
	clean := strings.TrimSpace(dir)
	if clean == "" {
		clean = "."
	}
	if err := os.MkdirAll(clean, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return clean, nil
	}
	return abs, nil
}
