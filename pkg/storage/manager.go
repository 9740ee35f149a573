package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Manager lays out the destination tree under a single root:
//
//	root/{bucket}/{author}-{platform}/posts/{postID}/
//
// Folder existence is the resume marker: a post directory is either
// entirely absent (never attempted) or present (attempted). There is no
// separate manifest.
type Manager struct {
	root string
}

// NewManager creates a storage manager rooted at the given directory
func NewManager(root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output root: %w", err)
	}
	return &Manager{root: root}, nil
}

// Root returns the output root directory
func (m *Manager) Root() string {
	return m.root
}

// PostDir derives the deterministic destination folder for a post
func (m *Manager) PostDir(bucket, author, platform, postID string) string {
	authorFolder := SanitizeFilename(author + "-" + platform)
	return filepath.Join(m.root, bucket, authorFolder, "posts", SanitizeFilename(postID))
}

// PostExists reports whether a post directory is already present
func (m *Manager) PostExists(dir string) bool {
	_, err := os.Stat(dir)
	return err == nil
}

// CreatePostDir creates a post directory including parents. Failure here
// is fatal for the post and is never retried.
func (m *Manager) CreatePostDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create post directory %s: %w", dir, err)
	}
	return nil
}

// SaveFile writes file content into dir under the given name using a
// temporary file and an atomic rename, so a crash never leaves a
// half-written file under its final name.
func (m *Manager) SaveFile(dir, name string, r io.Reader) error {
	final := filepath.Join(dir, name)
	tmp := final + ".tmp"

	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write file data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
