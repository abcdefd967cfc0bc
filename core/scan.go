package core

import (
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/slackpad/picmeta/metadata"
	"github.com/slackpad/picmeta/metrics"
	"golang.org/x/sync/errgroup"
)

var errResolveTimeout = errors.New("resolving file timed out")

type resolver interface {
	Resolve(logger hclog.Logger, path string) metadata.Outcome
}

type scanResult struct {
	path    string
	hash    []byte
	size    int64
	outcome metadata.Outcome
}

// scanner hashes and resolves files on a pool of workers.
type scanner struct {
	logger   hclog.Logger
	resolver resolver
	workers  int
	timeout  time.Duration
	metrics  *metrics.Metrics
}

// run feeds paths to the workers and hands every result to sink on the
// calling goroutine, so sink may use a bolt transaction. Unreadable files
// are logged and skipped. An error from sink stops the scan.
func (s *scanner) run(ctx context.Context, paths []string, sink func(scanResult) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan string)
	results := make(chan scanResult)

	g.Go(func() error {
		defer close(jobs)
		for _, p := range paths {
			select {
			case jobs <- p:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for p := range jobs {
				r, ok := s.scanFile(p)
				if !ok {
					continue
				}
				select {
				case results <- r:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var sinkErr error
	for r := range results {
		if sinkErr != nil {
			continue
		}
		if err := sink(r); err != nil {
			sinkErr = err
			cancel()
		}
	}

	if err := g.Wait(); sinkErr == nil {
		return err
	}
	return sinkErr
}

func (s *scanner) scanFile(path string) (scanResult, bool) {
	hash, size, err := hashFile(path)
	if err != nil {
		s.logger.Warn("Skipping unreadable file", "path", path, "error", err)
		s.metrics.FilesSkipped.Inc()
		return scanResult{}, false
	}

	start := time.Now()
	out := s.resolveWithin(path)
	s.metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	s.metrics.FilesResolved.WithLabelValues(out.Kind.String()).Inc()

	return scanResult{path: path, hash: hash, size: size, outcome: out}, true
}

// resolveWithin gives up on a file after the scanner's timeout and records
// it as absent. The abandoned resolve finishes in the background.
func (s *scanner) resolveWithin(path string) metadata.Outcome {
	done := make(chan metadata.Outcome, 1)
	go func() {
		done <- s.resolver.Resolve(s.logger, path)
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	select {
	case out := <-done:
		return out
	case <-timer.C:
		s.logger.Warn("Gave up resolving file", "path", path, "timeout", s.timeout)
		return metadata.Outcome{Kind: metadata.Absent, Cause: errResolveTimeout}
	}
}

func hashFile(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, 0, err
	}
	return h.Sum(nil), n, nil
}

func newEntry(r scanResult) *indexEntry {
	entry := &indexEntry{
		Paths:   map[string]struct{}{r.path: {}},
		Size:    r.size,
		Outcome: r.outcome.Kind.String(),
	}
	if info, ok := r.outcome.Information(); ok {
		entry.Image = newImageRecord(info)
	}
	if r.outcome.Cause != nil {
		entry.Cause = r.outcome.Cause.Error()
	}
	return entry
}
