package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kemograb/pkg/config"
	"kemograb/pkg/kemono"
)

func samplePosts() []kemono.PostSummary {
	return []kemono.PostSummary{
		{
			Link:             "https://kemono.su/p/1",
			AttachmentsLabel: "2 attachments",
			CoverImage:       "https://kemono.su/c/1.jpg",
		},
		{
			Link:             "https://kemono.su/p/2",
			AttachmentsLabel: kemono.NoAttachmentsLabel,
			CoverImage:       "https://kemono.su/c/2.jpg",
		},
		{
			Link:             "https://kemono.su/p/3",
			AttachmentsLabel: "1 attachment",
			CoverImage:       kemono.NoImageLabel,
		},
		{
			Link:             "https://kemono.su/p/4",
			AttachmentsLabel: kemono.NoAttachmentsLabel,
			CoverImage:       kemono.NoImageLabel,
		},
	}
}

func TestFilter(t *testing.T) {
	posts := samplePosts()

	tests := []struct {
		name  string
		mode  config.FilterMode
		links []string
	}{
		{
			"both keeps everything",
			config.ModeBoth,
			[]string{"https://kemono.su/p/1", "https://kemono.su/p/2", "https://kemono.su/p/3", "https://kemono.su/p/4"},
		},
		{
			"files_only keeps posts with any media",
			config.ModeFilesOnly,
			[]string{"https://kemono.su/p/1", "https://kemono.su/p/2", "https://kemono.su/p/3"},
		},
		{
			"no_files keeps only media-free posts",
			config.ModeNoFiles,
			[]string{"https://kemono.su/p/4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(posts, tt.mode)
			links := make([]string, 0, len(got))
			for _, p := range got {
				links = append(links, p.Link)
			}
			assert.Equal(t, tt.links, links)
		})
	}
}

func TestFilterEmptyInput(t *testing.T) {
	assert.Empty(t, Filter(nil, config.ModeFilesOnly))
}
