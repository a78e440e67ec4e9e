package downloader

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// WorkerPool downloads batches of files concurrently.
type WorkerPool struct {
	downloader  *Downloader
	concurrency int
}

// NewWorkerPool creates a pool with the given concurrency, clamped to
// [1, 50].
func NewWorkerPool(concurrency int, timeout time.Duration, userAgent string) *WorkerPool {
	if concurrency <= 0 {
		concurrency = 5
	}
	if concurrency > 50 {
		concurrency = 50
	}
	return &WorkerPool{
		downloader:  New(timeout, userAgent),
		concurrency: concurrency,
	}
}

// DownloadBatch downloads urls concurrently and returns one Result per URL
// attempted. Cancellation stops the remaining queue; completed results are
// still returned.
func (wp *WorkerPool) DownloadBatch(ctx context.Context, urls []string, opts Options) []*Result {
	if len(urls) == 0 {
		return nil
	}

	jobs := make(chan string, len(urls))
	results := make(chan *Result, len(urls))

	var wg sync.WaitGroup
	for w := 0; w < wp.concurrency; w++ {
		wg.Add(1)
		go wp.worker(ctx, jobs, results, opts, &wg)
	}

	for _, u := range urls {
		jobs <- u
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]*Result, 0, len(urls))
	for res := range results {
		all = append(all, res)
	}
	return all
}

func (wp *WorkerPool) worker(ctx context.Context, jobs <-chan string, results chan<- *Result, opts Options, wg *sync.WaitGroup) {
	defer wg.Done()

	for u := range jobs {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Download worker cancelled")
			return
		default:
		}

		res := wp.downloader.Download(ctx, u, opts)

		select {
		case results <- res:
		case <-ctx.Done():
			return
		}
	}
}
