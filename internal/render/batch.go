package render

import (
	"context"
	"sync"

	"github.com/memeforge/memeforge/internal/meme"
)

// BatchResult is the outcome for one template in PreviewAll.
type BatchResult struct {
	Key    string
	Result Result
	Err    error
}

type batchJob struct {
	index int
	meme  *meme.Meme
}

// PreviewAll previews every template in memes over at most workers
// goroutines. Results keep the input order. A failing template is reported
// in its result and does not stop the rest; cancelling ctx does, and the
// unstarted entries carry ctx.Err(). args is passed to every preview.
func (s *Service) PreviewAll(ctx context.Context, memes []*meme.Meme, workers int, args map[string]any) []BatchResult {
	results := make([]BatchResult, len(memes))
	for i, m := range memes {
		results[i].Key = m.Key()
	}
	if len(memes) == 0 {
		return results
	}

	workers = max(min(workers, len(memes)), 1)
	jobs := make(chan batchJob)
	done := make([]bool, len(memes))

	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for job := range jobs {
			if ctx.Err() != nil {
				continue
			}
			res, err := s.Preview(ctx, job.meme, args)
			results[job.index].Result = res
			results[job.index].Err = err
			done[job.index] = true
		}
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

sendLoop:
	for i, m := range memes {
		select {
		case <-ctx.Done():
			break sendLoop
		case jobs <- batchJob{index: i, meme: m}:
		}
	}
	close(jobs)
	wg.Wait()

	for i := range results {
		if !done[i] {
			results[i].Err = ctx.Err()
		}
	}
	return results
}
