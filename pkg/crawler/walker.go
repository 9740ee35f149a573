package crawler

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"kemograb/pkg/kemono"
	"kemograb/pkg/logger"
)

// SiteClient is the slice of the site client the walker needs
type SiteClient interface {
	GetDocument(ctx context.Context, url string) (*goquery.Document, error)
}

// Walker collects every post summary from a profile's listing pages.
type Walker struct {
	client SiteClient
	logger logger.Logger
}

// NewWalker creates a listing walker
func NewWalker(client SiteClient, log logger.Logger) *Walker {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Walker{client: client, logger: log}
}

// Walk pages through the profile at profileURL and returns the post
// summaries in listing order. The page count is inferred from the first
// page's total; an empty page always terminates the walk regardless of
// that count. A page that fails to load ends the walk with the posts
// collected so far rather than an error.
func (w *Walker) Walk(ctx context.Context, profileURL string) ([]kemono.PostSummary, error) {
	base, err := url.Parse(profileURL)
	if err != nil {
		return nil, fmt.Errorf("invalid profile URL %q: %w", profileURL, err)
	}

	var posts []kemono.PostSummary
	totalPages := 1

	for page := 0; page < totalPages; page++ {
		select {
		case <-ctx.Done():
			return posts, ctx.Err()
		default:
		}

		pageURL, err := kemono.ListingURL(profileURL, page)
		if err != nil {
			return posts, err
		}

		doc, err := w.client.GetDocument(ctx, pageURL)
		if err != nil {
			w.logger.WithError(err).WithFields(map[string]interface{}{
				"page": page,
				"url":  pageURL,
			}).Warn("Listing page failed, continuing with posts collected so far")
			return posts, nil
		}

		if page == 0 {
			if total, ok := kemono.ExtractTotalPosts(doc); ok {
				totalPages = kemono.TotalPages(total)
				w.logger.WithFields(map[string]interface{}{
					"total_posts": total,
					"total_pages": totalPages,
				}).Info("Profile size detected")
			} else {
				w.logger.Warn("Could not detect total post count, walking a single page")
			}
		}

		cards := kemono.ExtractPostSummaries(doc, base)
		if len(cards) == 0 {
			w.logger.WithField("page", page).Debug("Empty listing page, stopping walk")
			break
		}

		posts = append(posts, cards...)
		logger.LogPageFetch(pageURL, page, len(cards))
	}

	return posts, nil
}
