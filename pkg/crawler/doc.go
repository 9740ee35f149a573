// Package crawler orchestrates a profile run: it walks the paginated
// listing, filters the collected posts by the configured mode and
// feeds the selection to the concurrent download engine.
package crawler
