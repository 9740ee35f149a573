// Package downloader contains the post download engine and the worker
// pool that runs it concurrently. The engine treats an existing post
// folder as proof the post was already fetched, which makes repeated
// runs over the same profile idempotent.
package downloader
