package crawler

import (
	"context"
	"path/filepath"
	"sync"

	"kemograb/internal/downloader"
	"kemograb/pkg/config"
	"kemograb/pkg/kemono"
	"kemograb/pkg/logger"
	"kemograb/pkg/metadata"
	"kemograb/pkg/ratelimit"
	"kemograb/pkg/storage"
)

// Crawler ties the listing walker, the post filter and the download
// engine together for a single profile run.
type Crawler struct {
	cfg    *config.Config
	client *kemono.Client
	store  *storage.Manager
	logger logger.Logger
}

// Summary reports the counts of a completed run
type Summary struct {
	Collected  int
	Selected   int
	Downloaded int
	Skipped    int
	Failed     int
}

// New creates a crawler from the given configuration
func New(cfg *config.Config) (*Crawler, error) {
	log := logger.GetLogger()

	limiter := ratelimit.NewPerMinute(cfg.RateLimit.RequestsPerMinute)
	client := kemono.NewClient(&cfg.HTTP, limiter, log)

	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return nil, err
	}

	return &Crawler{
		cfg:    cfg,
		client: client,
		store:  store,
		logger: log,
	}, nil
}

// Run crawls one profile: walk the listing, filter, write the run
// index, then download every selected post through the worker pool.
// Individual post failures are counted, not fatal.
func (c *Crawler) Run(ctx context.Context, profileURL string) (*Summary, error) {
	walker := NewWalker(c.client, c.logger)
	posts, err := walker.Walk(ctx, profileURL)
	if err != nil {
		return nil, err
	}

	selected := Filter(posts, c.cfg.Filter.Mode)
	summary := &Summary{Collected: len(posts), Selected: len(selected)}

	c.logger.WithFields(map[string]interface{}{
		"collected": summary.Collected,
		"selected":  summary.Selected,
		"mode":      string(c.cfg.Filter.Mode),
	}).Info("Listing walk complete")

	if len(selected) == 0 {
		return summary, nil
	}

	indexPath := filepath.Join(c.cfg.Output.BaseDirectory, c.cfg.Output.IndexFile)
	if err := metadata.WriteRunIndex(selected, indexPath); err != nil {
		// The index is an audit artifact; its failure should not stop
		// the downloads.
		c.logger.WithError(err).WithField("path", indexPath).Error("Failed to write run index")
	}

	engine := downloader.NewEngine(c.client, c.store, &c.cfg.Download, c.logger)
	pool := downloader.NewWorkerPool(ctx, c.cfg.Download.ConcurrentDownloads, engine, c.logger)
	pool.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range pool.Results() {
			switch result.Status {
			case downloader.StatusDownloaded:
				summary.Downloaded++
			case downloader.StatusSkipped:
				summary.Skipped++
			case downloader.StatusFailed:
				summary.Failed++
				c.logger.WithError(result.Err).WithField("link", result.Job.Post.Link).Error("Post failed")
			}
		}
	}()

	// A post link can appear on more than one listing page; submit each
	// one once so no two workers ever own the same post folder.
	seen := make(map[string]bool, len(selected))
	for _, post := range selected {
		if seen[post.Link] {
			continue
		}
		seen[post.Link] = true
		if err := pool.Submit(downloader.Job{Post: post}); err != nil {
			break
		}
	}

	pool.Stop()
	wg.Wait()

	c.logger.WithFields(map[string]interface{}{
		"downloaded": summary.Downloaded,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
	}).Info("Run complete")

	return summary, nil
}
