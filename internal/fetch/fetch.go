// Package fetch materializes attachment payloads: it downloads each
// pending attachment into the staging directory with bounded concurrency,
// per-download timeouts, and retries.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	humanize "github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/siftertools/sift2bb/internal/convert"
)

// Result is the outcome of one download. Results come back in the same
// order as the input downloads regardless of completion order, so the
// bundle owner can merge them deterministically.
type Result struct {
	Download *convert.Download
	Size     int64
	Err      error
}

// Options configure a Fetcher. Zero values fall back to the defaults.
type Options struct {
	Concurrency int           // parallel downloads, default 4
	Timeout     time.Duration // per-attempt timeout, default 60s
	MaxRetries  uint64        // retries after the first attempt, default 3
	Progress    func(format string, args ...any)
}

// Fetcher downloads attachment payloads into a directory.
type Fetcher struct {
	client      *http.Client
	dir         string
	concurrency int
	timeout     time.Duration
	maxRetries  uint64
	progress    func(format string, args ...any)
}

// New returns a Fetcher storing files under dir.
func New(dir string, opts Options) *Fetcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.Progress == nil {
		opts.Progress = func(string, ...any) {}
	}
	return &Fetcher{
		client:      &http.Client{},
		dir:         dir,
		concurrency: opts.Concurrency,
		timeout:     opts.Timeout,
		maxRetries:  opts.MaxRetries,
		progress:    opts.Progress,
	}
}

// FetchAll downloads every pending attachment. Workers run concurrently
// but each result lands at its download's input index, keeping the merge
// order deterministic. When failFast is set, the first failed download
// cancels the rest and is returned as an error; otherwise failures are
// recorded per result and the caller decides what to do with them.
func (f *Fetcher) FetchAll(ctx context.Context, downloads []*convert.Download, failFast bool) ([]Result, error) {
	results := make([]Result, len(downloads))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, dl := range downloads {
		i, dl := i, dl
		g.Go(func() error {
			f.progress("Downloading attachment %s...", dl.Record.Path)
			size, err := f.fetchOne(ctx, dl)
			results[i] = Result{Download: dl, Size: size, Err: err}
			if err != nil {
				if failFast {
					return fmt.Errorf("downloading %s: %w", dl.Record.Filename, err)
				}
				return nil
			}
			f.progress("Stored %s (%s)", dl.Record.Path, humanize.Bytes(uint64(size)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// fetchOne downloads a single attachment with retries. Server-side and
// transport errors are retried with exponential backoff; client errors
// (4xx) are permanent.
func (f *Fetcher) fetchOne(ctx context.Context, dl *convert.Download) (int64, error) {
	dest := filepath.Join(f.dir, dl.Record.Filename)

	var size int64
	operation := func() error {
		n, err := f.attempt(ctx, dl.URL, dest)
		if err != nil {
			// A partial file from a failed attempt must not survive.
			os.Remove(dest)
			return err
		}
		size = n
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, f.maxRetries), ctx))
	if err != nil {
		return 0, err
	}
	return size, nil
}

// attempt performs one download attempt under the per-attempt timeout.
func (f *Fetcher) attempt(ctx context.Context, url, dest string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, backoff.Permanent(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return 0, backoff.Permanent(fmt.Errorf("unexpected status %s", resp.Status))
	default:
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, backoff.Permanent(err)
	}

	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("writing %s: %w", dest, err)
	}
	return n, nil
}
