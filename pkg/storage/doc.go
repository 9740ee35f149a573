// Package storage provides the destination filesystem layout for the
// profile crawler.
//
// The storage package handles:
//   - Deriving the deterministic per-post destination folder
//   - The folder-existence resume check
//   - Filename sanitization and collision disambiguation
//   - Atomic file writes using temporary files and rename
//
// Usage:
//
//	manager, err := storage.NewManager(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dir := manager.PostDir("Kemono", "artist", "patreon", "8839201")
//	if !manager.PostExists(dir) {
//	    if err := manager.CreatePostDir(dir); err != nil {
//	        log.Fatal(err)
//	    }
//	    name := storage.UniqueFilename(dir, storage.FilenameFromURL(mediaURL))
//	    err = manager.SaveFile(dir, name, bytes.NewReader(data))
//	}
package storage
