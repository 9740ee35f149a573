package storage

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// maxFilenameLength caps sanitized names at the common filesystem limit
const maxFilenameLength = 255

var forbiddenChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename rewrites forbidden filesystem characters to underscores
// and truncates the result to the maximum filename length.
func SanitizeFilename(name string) string {
	name = forbiddenChars.ReplaceAllString(name, "_")
	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}
	return name
}

// FilenameFromURL resolves a download filename from a URL: the `f` query
// parameter when present, otherwise the path basename. The result is
// sanitized.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return SanitizeFilename(rawURL)
	}

	name := u.Query().Get("f")
	if name == "" {
		name = path.Base(u.Path)
	}

	return SanitizeFilename(name)
}

// UniqueFilename disambiguates a filename against the files already in
// dir by suffixing an incrementing counter before the extension:
// name.ext, name_duplicate1.ext, name_duplicate2.ext, ...
func UniqueFilename(dir, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	candidate := filename
	counter := 1
	for {
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_duplicate%d%s", base, counter, ext)
		counter++
	}
}
