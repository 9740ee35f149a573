package crawler

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kemograb/pkg/logger"
)

// fakeClient serves canned documents keyed by URL
type fakeClient struct {
	pages map[string]string
	calls []string
}

func (f *fakeClient) GetDocument(_ context.Context, url string) (*goquery.Document, error) {
	f.calls = append(f.calls, url)
	html, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page for %s", url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func listingHTML(total int, links ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if total > 0 {
		fmt.Fprintf(&b, "<small>Showing 1 - 50 of %d</small>", total)
	}
	for _, link := range links {
		fmt.Fprintf(&b, `<article class="post-card post-card--preview"><a href="%s"></a><header class="post-card__header">t</header></article>`, link)
	}
	b.WriteString("</body></html>")
	return b.String()
}

const profile = "https://kemono.su/patreon/user/12345"

func TestWalkSinglePage(t *testing.T) {
	client := &fakeClient{pages: map[string]string{
		profile + "?o=0": listingHTML(2, "/p/1", "/p/2"),
	}}

	w := NewWalker(client, logger.NewNopLogger())
	posts, err := w.Walk(context.Background(), profile)
	require.NoError(t, err)

	require.Len(t, posts, 2)
	assert.Equal(t, []string{profile + "?o=0"}, client.calls)
}

func TestWalkPagesByTotal(t *testing.T) {
	// 73 posts means exactly two fetches, at offsets 0 and 50
	client := &fakeClient{pages: map[string]string{
		profile + "?o=0":  listingHTML(73, "/p/1", "/p/2"),
		profile + "?o=50": listingHTML(0, "/p/3"),
	}}

	w := NewWalker(client, logger.NewNopLogger())
	posts, err := w.Walk(context.Background(), profile)
	require.NoError(t, err)

	require.Len(t, posts, 3)
	assert.Equal(t, []string{profile + "?o=0", profile + "?o=50"}, client.calls)
}

func TestWalkStopsOnEmptyPage(t *testing.T) {
	// the total claims three pages but the second page is already empty
	client := &fakeClient{pages: map[string]string{
		profile + "?o=0":   listingHTML(150, "/p/1"),
		profile + "?o=50":  listingHTML(0),
		profile + "?o=100": listingHTML(0, "/p/never"),
	}}

	w := NewWalker(client, logger.NewNopLogger())
	posts, err := w.Walk(context.Background(), profile)
	require.NoError(t, err)

	require.Len(t, posts, 1)
	assert.Equal(t, []string{profile + "?o=0", profile + "?o=50"}, client.calls)
}

func TestWalkMissingTotalAssumesOnePage(t *testing.T) {
	client := &fakeClient{pages: map[string]string{
		profile + "?o=0": listingHTML(0, "/p/1", "/p/2"),
	}}

	w := NewWalker(client, logger.NewNopLogger())
	posts, err := w.Walk(context.Background(), profile)
	require.NoError(t, err)

	require.Len(t, posts, 2)
	assert.Equal(t, []string{profile + "?o=0"}, client.calls)
}

func TestWalkKeepsPartialProgressOnPageFailure(t *testing.T) {
	// second page missing from the fake: the walk ends with page one's posts
	client := &fakeClient{pages: map[string]string{
		profile + "?o=0": listingHTML(120, "/p/1", "/p/2"),
	}}

	w := NewWalker(client, logger.NewNopLogger())
	posts, err := w.Walk(context.Background(), profile)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestWalkInvalidProfileURL(t *testing.T) {
	w := NewWalker(&fakeClient{}, logger.NewNopLogger())
	_, err := w.Walk(context.Background(), "://not-a-url")
	assert.Error(t, err)
}
