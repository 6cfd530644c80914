package meme

import (
	"context"
	"fmt"
)

// SampleSource supplies placeholder inputs for previews.
type SampleSource interface {
	Image() ([]byte, error)
	Text() string
}

// PreviewAttempts is the most times GeneratePreview will call the template:
// one call plus one retry per text the contract still has room for.
func (m *Meme) PreviewAttempts() int {
	return max(m.params.MaxTexts-m.params.MinTexts+1, 1)
}

// GeneratePreview renders the template with sample inputs. It uses
// min_images sample images and the default texts when their count fits the
// contract, otherwise min_texts sample texts.
//
// When the template reports TextOrNameNotEnough one more sample text is
// appended and the call retried, up to PreviewAttempts calls in total and
// never beyond max_texts. Past that a PreviewAttemptsExhaustedError is
// returned. Every other error is returned as is.
func (m *Meme) GeneratePreview(ctx context.Context, samples SampleSource, args map[string]any) ([]byte, error) {
	p := m.params

	images := make([][]byte, 0, p.MinImages)
	for i := 0; i < p.MinImages; i++ {
		data, err := samples.Image()
		if err != nil {
			return nil, fmt.Errorf("sample image: %w", err)
		}
		images = append(images, data)
	}

	var texts []string
	if p.DefaultTextsUsable() {
		texts = append(texts, p.DefaultTexts...)
	} else {
		for i := 0; i < p.MinTexts; i++ {
			texts = append(texts, samples.Text())
		}
	}

	limit := m.PreviewAttempts()
	attempts := 0
	var last error
	for attempts < limit {
		attempts++
		out, err := m.CallContext(ctx, images, texts, args)
		if err == nil {
			return out, nil
		}
		if !IsKind(err, KindTextOrNameNotEnough) {
			return nil, err
		}
		last = err
		if len(texts) >= p.MaxTexts {
			break
		}
		texts = append(texts, samples.Text())
	}
	return nil, &PreviewAttemptsExhaustedError{Key: m.key, Attempts: attempts, Last: last}
}
