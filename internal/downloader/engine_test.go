package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kemograb/pkg/config"
	"kemograb/pkg/kemono"
	"kemograb/pkg/logger"
	"kemograb/pkg/storage"
)

// fakeSite serves canned detail pages and file bodies
type fakeSite struct {
	pages     map[string]string
	files     map[string][]byte
	fileCalls []string
}

func (f *fakeSite) GetDocument(_ context.Context, url string) (*goquery.Document, error) {
	html, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page for %s", url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (f *fakeSite) DownloadFile(_ context.Context, url string) ([]byte, error) {
	f.fileCalls = append(f.fileCalls, url)
	data, ok := f.files[url]
	if !ok {
		return nil, fmt.Errorf("no file for %s", url)
	}
	return data, nil
}

const postLink = "https://kemono.su/patreon/user/12345/post/111"

func detailHTML() string {
	return `<html><head>
<meta name="id" content="111">
<meta property="og:image" content="https://img.kemono.su/banners/patreon/12345">
</head><body>
<a class="post__user-name" href="#">alice</a>
<h1 class="post__title"><span>Great</span> <span>Art</span></h1>
<a class="post__attachment-link" href="/data/file.zip?f=archive.zip">Download archive.zip</a>
<a class="fileThumb" href="/data/image1.png?f=image1.png"></a>
</body></html>`
}

func downloadConfig() *config.DownloadConfig {
	return &config.DownloadConfig{
		SaveInfoHTML:        true,
		DownloadAttachments: true,
		DownloadVideos:      false,
		ConcurrentDownloads: 1,
	}
}

func newTestEngine(t *testing.T, site *fakeSite, cfg *config.DownloadConfig) (*Engine, *storage.Manager) {
	t.Helper()
	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)
	return NewEngine(site, store, cfg, logger.NewNopLogger()), store
}

func TestDownloadPost(t *testing.T) {
	site := &fakeSite{
		pages: map[string]string{postLink: detailHTML()},
		files: map[string][]byte{
			"https://kemono.su/data/image1.png?f=image1.png": []byte("image bytes"),
			"https://kemono.su/data/file.zip?f=archive.zip":  []byte("zip bytes"),
		},
	}

	engine, store := newTestEngine(t, site, downloadConfig())

	result := engine.DownloadPost(context.Background(), kemono.PostSummary{Link: postLink})
	require.NoError(t, result.Err)
	assert.Equal(t, StatusDownloaded, result.Status)
	assert.Equal(t, 2, result.FilesDownloaded)
	assert.Zero(t, result.FilesFailed)

	dir := store.PostDir("Kemono", "alice", "patreon", "111")
	for _, name := range []string{"image1.png", "archive.zip", "Great Art.html"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestDownloadPostSkipsExistingFolder(t *testing.T) {
	site := &fakeSite{pages: map[string]string{postLink: detailHTML()}}

	engine, store := newTestEngine(t, site, downloadConfig())

	dir := store.PostDir("Kemono", "alice", "patreon", "111")
	require.NoError(t, store.CreatePostDir(dir))

	result := engine.DownloadPost(context.Background(), kemono.PostSummary{Link: postLink})
	assert.Equal(t, StatusSkipped, result.Status)
	assert.Empty(t, site.fileCalls, "no files fetched for a skipped post")
}

func TestDownloadPostIdempotent(t *testing.T) {
	site := &fakeSite{
		pages: map[string]string{postLink: detailHTML()},
		files: map[string][]byte{
			"https://kemono.su/data/image1.png?f=image1.png": []byte("image bytes"),
			"https://kemono.su/data/file.zip?f=archive.zip":  []byte("zip bytes"),
		},
	}

	engine, _ := newTestEngine(t, site, downloadConfig())

	first := engine.DownloadPost(context.Background(), kemono.PostSummary{Link: postLink})
	assert.Equal(t, StatusDownloaded, first.Status)

	second := engine.DownloadPost(context.Background(), kemono.PostSummary{Link: postLink})
	assert.Equal(t, StatusSkipped, second.Status)
	assert.Len(t, site.fileCalls, 2, "second run fetches nothing")
}

func TestDownloadPostAttachmentToggle(t *testing.T) {
	site := &fakeSite{
		pages: map[string]string{postLink: detailHTML()},
		files: map[string][]byte{
			"https://kemono.su/data/image1.png?f=image1.png": []byte("image bytes"),
		},
	}

	cfg := downloadConfig()
	cfg.DownloadAttachments = false
	engine, _ := newTestEngine(t, site, cfg)

	result := engine.DownloadPost(context.Background(), kemono.PostSummary{Link: postLink})
	assert.Equal(t, StatusDownloaded, result.Status)
	assert.Equal(t, 1, result.FilesDownloaded)
	assert.Equal(t, []string{"https://kemono.su/data/image1.png?f=image1.png"}, site.fileCalls)
}

func TestDownloadPostVideoPassDoesNotRefetch(t *testing.T) {
	site := &fakeSite{
		pages: map[string]string{postLink: detailHTML()},
		files: map[string][]byte{
			"https://kemono.su/data/image1.png?f=image1.png": []byte("image bytes"),
			"https://kemono.su/data/file.zip?f=archive.zip":  []byte("zip bytes"),
		},
	}

	cfg := downloadConfig()
	cfg.DownloadVideos = true
	engine, _ := newTestEngine(t, site, cfg)

	result := engine.DownloadPost(context.Background(), kemono.PostSummary{Link: postLink})
	assert.Equal(t, StatusDownloaded, result.Status)
	assert.Equal(t, 2, result.FilesDownloaded)
	assert.Len(t, site.fileCalls, 2, "attachment already fetched in the attachment pass")
}

func TestDownloadPostFileFailureIsIsolated(t *testing.T) {
	site := &fakeSite{
		pages: map[string]string{postLink: detailHTML()},
		files: map[string][]byte{
			// the image is missing, the attachment still succeeds
			"https://kemono.su/data/file.zip?f=archive.zip": []byte("zip bytes"),
		},
	}

	engine, _ := newTestEngine(t, site, downloadConfig())

	result := engine.DownloadPost(context.Background(), kemono.PostSummary{Link: postLink})
	assert.Equal(t, StatusDownloaded, result.Status)
	assert.Equal(t, 1, result.FilesDownloaded)
	assert.Equal(t, 1, result.FilesFailed)
}

func TestDownloadPostMissingIDFails(t *testing.T) {
	site := &fakeSite{
		pages: map[string]string{postLink: `<html><head></head><body></body></html>`},
	}

	engine, _ := newTestEngine(t, site, downloadConfig())

	result := engine.DownloadPost(context.Background(), kemono.PostSummary{Link: postLink})
	assert.Equal(t, StatusFailed, result.Status)
	assert.Error(t, result.Err)
}

func TestDownloadPostPageFetchFailure(t *testing.T) {
	site := &fakeSite{pages: map[string]string{}}

	engine, _ := newTestEngine(t, site, downloadConfig())

	result := engine.DownloadPost(context.Background(), kemono.PostSummary{Link: postLink})
	assert.Equal(t, StatusFailed, result.Status)
	assert.Error(t, result.Err)
}

func TestDownloadPostNoInfoHTML(t *testing.T) {
	site := &fakeSite{
		pages: map[string]string{postLink: detailHTML()},
		files: map[string][]byte{
			"https://kemono.su/data/image1.png?f=image1.png": []byte("image bytes"),
			"https://kemono.su/data/file.zip?f=archive.zip":  []byte("zip bytes"),
		},
	}

	cfg := downloadConfig()
	cfg.SaveInfoHTML = false
	engine, store := newTestEngine(t, site, cfg)

	result := engine.DownloadPost(context.Background(), kemono.PostSummary{Link: postLink})
	assert.Equal(t, StatusDownloaded, result.Status)

	dir := store.PostDir("Kemono", "alice", "patreon", "111")
	_, err := os.Stat(filepath.Join(dir, "Great Art.html"))
	assert.True(t, os.IsNotExist(err))
}
