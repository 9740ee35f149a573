package downloader

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"kemograb/pkg/config"
	errs "kemograb/pkg/errors"
	"kemograb/pkg/kemono"
	"kemograb/pkg/logger"
	"kemograb/pkg/metadata"
	"kemograb/pkg/storage"
)

// SiteClient is the slice of the site client the engine needs
type SiteClient interface {
	GetDocument(ctx context.Context, url string) (*goquery.Document, error)
	DownloadFile(ctx context.Context, url string) ([]byte, error)
}

// Engine downloads a single post: detail page, destination folder, info
// document and every media class, with per-file error isolation.
type Engine struct {
	client SiteClient
	store  *storage.Manager
	cfg    *config.DownloadConfig
	logger logger.Logger
}

// NewEngine creates a download engine
func NewEngine(client SiteClient, store *storage.Manager, cfg *config.DownloadConfig, log logger.Logger) *Engine {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Engine{
		client: client,
		store:  store,
		cfg:    cfg,
		logger: log,
	}
}

// DownloadPost processes one post end to end. The folder-existence check
// and the folder creation happen on the same goroutine, so a post id is
// never raced by two workers as long as each id is submitted once.
func (e *Engine) DownloadPost(ctx context.Context, post kemono.PostSummary) Result {
	start := time.Now()
	result := Result{
		Job:    Job{Post: post},
		Status: StatusFailed,
	}

	postURL, err := url.Parse(post.Link)
	if err != nil {
		result.Err = errs.New(errs.ErrorTypeParsing, fmt.Sprintf("invalid post link %q: %v", post.Link, err))
		result.Duration = time.Since(start)
		return result
	}

	doc, err := e.client.GetDocument(ctx, post.Link)
	if err != nil {
		result.Err = fmt.Errorf("failed to fetch post page: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	detail, err := kemono.ExtractPostDetail(doc, postURL)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	bucket := kemono.BucketForHost(postURL.Host)
	if !kemono.IsKnownHost(postURL.Host) {
		e.logger.WarnWithFields("unrecognized host, defaulting bucket", map[string]interface{}{
			"host":   postURL.Host,
			"bucket": bucket,
		})
	}

	dir := e.store.PostDir(bucket, detail.Author, detail.Platform, detail.PostID)

	if e.store.PostExists(dir) {
		e.logger.InfoWithFields("post folder already exists, skipping", map[string]interface{}{
			"post_id": detail.PostID,
			"dir":     dir,
		})
		result.Status = StatusSkipped
		result.Duration = time.Since(start)
		return result
	}

	if err := e.store.CreatePostDir(dir); err != nil {
		result.Err = errs.New(errs.ErrorTypeFilesystem, err.Error())
		result.Duration = time.Since(start)
		return result
	}

	if e.cfg.SaveInfoHTML {
		if err := metadata.WritePostInfo(detail, dir); err != nil {
			// The info document is one file among many; its failure does
			// not abort the post.
			e.logger.WithError(err).WithField("post_id", detail.PostID).Error("Failed to write post info document")
			result.FilesFailed++
		}
	}

	seen := make(map[string]bool)

	e.fetchAll(ctx, dir, detail.PostID, "image", detail.MediaLinks, seen, &result)

	attachmentURLs := make([]string, 0, len(detail.Attachments))
	for _, attachment := range detail.Attachments {
		attachmentURLs = append(attachmentURLs, attachment.URL)
	}

	if e.cfg.DownloadAttachments {
		e.fetchAll(ctx, dir, detail.PostID, "attachment", attachmentURLs, seen, &result)
	}
	if e.cfg.DownloadVideos {
		e.fetchAll(ctx, dir, detail.PostID, "video", attachmentURLs, seen, &result)
	}

	result.Status = StatusDownloaded
	result.Duration = time.Since(start)

	e.logger.InfoWithFields("post downloaded", map[string]interface{}{
		"post_id":          detail.PostID,
		"files_downloaded": result.FilesDownloaded,
		"files_failed":     result.FilesFailed,
		"duration":         result.Duration,
	})

	return result
}

// fetchAll downloads one media class into the post folder. Each file's
// failure is logged and skipped; it never aborts the post or the class.
// URLs already fetched for this post are not fetched again.
func (e *Engine) fetchAll(ctx context.Context, dir, postID, class string, urls []string, seen map[string]bool, result *Result) {
	for _, fileURL := range urls {
		if seen[fileURL] {
			continue
		}

		filename := storage.UniqueFilename(dir, storage.FilenameFromURL(fileURL))

		data, err := e.client.DownloadFile(ctx, fileURL)
		if err != nil {
			result.FilesFailed++
			logger.LogFileDownload(postID, filename, class, false, err)
			continue
		}

		if err := e.store.SaveFile(dir, filename, bytes.NewReader(data)); err != nil {
			result.FilesFailed++
			logger.LogFileDownload(postID, filename, class, false, err)
			continue
		}

		seen[fileURL] = true
		result.FilesDownloaded++
		logger.LogFileDownload(postID, filename, class, true, nil)
	}
}
