package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kemograb/pkg/config"
	"kemograb/pkg/crawler"
	"kemograb/pkg/logger"
)

// siteFixture fakes a hosting site: a paginated profile listing, detail
// pages and file bodies, all served from one httptest server.
type siteFixture struct {
	server *httptest.Server
	mux    *http.ServeMux
}

func newSiteFixture(t *testing.T) *siteFixture {
	t.Helper()
	mux := http.NewServeMux()
	f := &siteFixture{mux: mux}
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *siteFixture) profileURL() string {
	return f.server.URL + "/patreon/user/12345"
}

func (f *siteFixture) serveListing(total int, pages map[string][]int) {
	f.mux.HandleFunc("/patreon/user/12345", func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("o")
		ids, ok := pages[offset]
		if !ok {
			fmt.Fprint(w, "<html><body></body></html>")
			return
		}

		var b strings.Builder
		b.WriteString("<html><body>")
		if offset == "0" {
			fmt.Fprintf(&b, "<small>Showing 1 - 50 of %d</small>", total)
		}
		for _, id := range ids {
			fmt.Fprintf(&b, `<article class="post-card post-card--preview">
<a href="/patreon/user/12345/post/%d"></a>
<header class="post-card__header">Post %d</header>`, id, id)
			// odd ids carry media, even ids are text only
			if id%2 == 1 {
				fmt.Fprintf(&b, `<div>1 attachment</div><img class="post-card__image" src="/thumb/%d.jpg">`, id)
			}
			b.WriteString("</article>")
		}
		b.WriteString("</body></html>")
		fmt.Fprint(w, b.String())
	})
}

func (f *siteFixture) servePost(id int) {
	f.mux.HandleFunc(fmt.Sprintf("/patreon/user/12345/post/%d", id), func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head>
<meta name="id" content="%d">
<meta property="og:image" content="%s/banners/patreon/12345">
</head><body>
<a class="post__user-name" href="#">alice</a>
<h1 class="post__title"><span>Post %d</span></h1>
<a class="fileThumb" href="/data/%d.png?f=image%d.png"></a>
</body></html>`, id, f.server.URL, id, id, id)
	})
	f.mux.HandleFunc(fmt.Sprintf("/data/%d.png", id), func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "png bytes %d", id)
	})
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = t.TempDir()
	cfg.HTTP.MaxRetries = 1
	cfg.HTTP.RetryBaseDelay = 0
	cfg.Logging.Level = "disabled"
	require.NoError(t, logger.Initialize(&cfg.Logging))
	return cfg
}

func TestCrawlProfileEndToEnd(t *testing.T) {
	site := newSiteFixture(t)
	site.serveListing(3, map[string][]int{"0": {1, 2, 3}})
	for _, id := range []int{1, 2, 3} {
		site.servePost(id)
	}

	cfg := testConfig(t)

	c, err := crawler.New(cfg)
	require.NoError(t, err)

	summary, err := c.Run(context.Background(), site.profileURL())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Collected)
	assert.Equal(t, 3, summary.Selected)
	assert.Equal(t, 3, summary.Downloaded)
	assert.Zero(t, summary.Skipped)
	assert.Zero(t, summary.Failed)

	// destination layout: {bucket}/{author}-{platform}/posts/{id}; the
	// test server is not a kemono host, so everything lands in Coomer
	for _, id := range []int{1, 2, 3} {
		dir := filepath.Join(cfg.Output.BaseDirectory, "Coomer", "alice-patreon", "posts", fmt.Sprint(id))
		info, err := os.Stat(dir)
		require.NoError(t, err, "post %d folder", id)
		assert.True(t, info.IsDir())

		if id%2 == 1 {
			data, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("image%d.png", id)))
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("png bytes %d", id), string(data))
		}
	}

	// run index written under the output root, in listing order
	index, err := os.ReadFile(filepath.Join(cfg.Output.BaseDirectory, "posts_info.txt"))
	require.NoError(t, err)
	doc := string(index)
	assert.Less(t, strings.Index(doc, "Post 1"), strings.Index(doc, "Post 2"))
	assert.Equal(t, 3, strings.Count(doc, strings.Repeat("-", 40)))
}

func TestCrawlSecondRunSkipsEverything(t *testing.T) {
	site := newSiteFixture(t)
	site.serveListing(2, map[string][]int{"0": {1, 2}})
	site.servePost(1)
	site.servePost(2)

	cfg := testConfig(t)

	c, err := crawler.New(cfg)
	require.NoError(t, err)

	first, err := c.Run(context.Background(), site.profileURL())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Downloaded)

	second, err := c.Run(context.Background(), site.profileURL())
	require.NoError(t, err)
	assert.Zero(t, second.Downloaded)
	assert.Equal(t, 2, second.Skipped)
}

func TestCrawlFilesOnlyMode(t *testing.T) {
	site := newSiteFixture(t)
	site.serveListing(4, map[string][]int{"0": {1, 2, 3, 4}})
	for _, id := range []int{1, 2, 3, 4} {
		site.servePost(id)
	}

	cfg := testConfig(t)
	cfg.Filter.Mode = config.ModeFilesOnly

	c, err := crawler.New(cfg)
	require.NoError(t, err)

	summary, err := c.Run(context.Background(), site.profileURL())
	require.NoError(t, err)

	// only the odd-numbered posts carry media
	assert.Equal(t, 4, summary.Collected)
	assert.Equal(t, 2, summary.Selected)
	assert.Equal(t, 2, summary.Downloaded)
}

func TestCrawlPaginatedProfile(t *testing.T) {
	site := newSiteFixture(t)

	firstPage := make([]int, 0, 50)
	for id := 1; id <= 50; id++ {
		firstPage = append(firstPage, id)
	}
	site.serveListing(53, map[string][]int{
		"0":  firstPage,
		"50": {51, 52, 53},
	})
	for id := 1; id <= 53; id++ {
		site.servePost(id)
	}

	cfg := testConfig(t)
	cfg.Download.ConcurrentDownloads = 3

	c, err := crawler.New(cfg)
	require.NoError(t, err)

	summary, err := c.Run(context.Background(), site.profileURL())
	require.NoError(t, err)

	assert.Equal(t, 53, summary.Collected)
	assert.Equal(t, 53, summary.Downloaded)
}

func TestCrawlFailedPostDoesNotAbortRun(t *testing.T) {
	site := newSiteFixture(t)
	site.serveListing(2, map[string][]int{"0": {1, 2}})
	site.servePost(1)
	// post 2's detail page is missing its id entirely
	site.mux.HandleFunc("/patreon/user/12345/post/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><head></head><body></body></html>")
	})

	cfg := testConfig(t)

	c, err := crawler.New(cfg)
	require.NoError(t, err)

	summary, err := c.Run(context.Background(), site.profileURL())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Downloaded)
	assert.Equal(t, 1, summary.Failed)
}
