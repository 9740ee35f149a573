package crawler

import (
	"kemograb/pkg/config"
	"kemograb/pkg/kemono"
)

// Filter selects the posts matching the configured mode. The input
// slice is never mutated and listing order is preserved.
func Filter(posts []kemono.PostSummary, mode config.FilterMode) []kemono.PostSummary {
	if mode == config.ModeBoth {
		return posts
	}

	selected := make([]kemono.PostSummary, 0, len(posts))
	for _, post := range posts {
		switch mode {
		case config.ModeFilesOnly:
			if post.HasMedia() {
				selected = append(selected, post)
			}
		case config.ModeNoFiles:
			if !post.HasMedia() {
				selected = append(selected, post)
			}
		}
	}
	return selected
}
