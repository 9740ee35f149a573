// Package kemono knows the hosting site: its URL scheme, its two output
// buckets, its listing and post detail markup, and an HTTP client tuned to
// its tolerance for traffic.
//
// Extraction is deliberately tolerant. The site serves many years of
// heterogeneous markup, so every optional field resolves to a documented
// sentinel when its element is missing rather than failing the post. The
// only hard requirement is the post id meta tag, which keys the
// destination folder on disk.
package kemono
