package metadata

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"kemograb/pkg/kemono"
	"kemograb/pkg/storage"
)

// indexSeparator divides post records in the run index file
var indexSeparator = strings.Repeat("-", 40)

// WritePostInfo renders one self-contained HTML document for a post into
// its destination folder, named after the sanitized post title. Optional
// sections are simply omitted when their data is absent.
func WritePostInfo(detail *kemono.PostDetail, dir string) error {
	title := detail.Title
	if title == "" {
		title = "Untitled"
	}
	title = storage.SanitizeFilename(title)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n")
	b.WriteString("<head>\n")
	b.WriteString("    <meta charset=\"UTF-8\">\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", html.EscapeString(title))
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")

	if detail.PublishedAt != "" {
		fmt.Fprintf(&b, "<p><strong>Publication date:</strong> %s</p>\n", html.EscapeString(detail.PublishedAt))
	}
	if detail.ImportedAt != "" {
		fmt.Fprintf(&b, "<p><strong>Import date:</strong> %s</p>\n", html.EscapeString(detail.ImportedAt))
	}

	if len(detail.Tags) > 0 {
		fmt.Fprintf(&b, "<p><strong>Tags:</strong> %s</p>\n", html.EscapeString(strings.Join(detail.Tags, ", ")))
	}

	if len(detail.Attachments) > 0 {
		b.WriteString("<p><strong>Attachments:</strong></p>\n")
		b.WriteString("<ul>\n")
		for _, attachment := range detail.Attachments {
			fmt.Fprintf(&b, "    <li>%s: <a href=\"%s\">%s</a></li>\n",
				html.EscapeString(attachment.Name), attachment.URL, html.EscapeString(attachment.URL))
			if attachment.BrowseURL != "" {
				fmt.Fprintf(&b, "    <li>Attachment content: <a href=\"%s\">%s</a></li>\n",
					attachment.BrowseURL, html.EscapeString(attachment.BrowseURL))
			}
		}
		b.WriteString("</ul>\n")
	}

	if detail.ContentHTML != "" {
		b.WriteString(detail.ContentHTML)
		b.WriteString("\n")
	}

	if len(detail.Comments) > 0 {
		b.WriteString("<p><strong>Comments:</strong></p>\n")
		b.WriteString("<ul>\n")
		for _, comment := range detail.Comments {
			fmt.Fprintf(&b, "    <li>%s (%s): %s</li>\n",
				html.EscapeString(comment.Author), html.EscapeString(comment.Timestamp), html.EscapeString(comment.Text))
		}
		b.WriteString("</ul>\n")
	}

	b.WriteString("</body>\n")
	b.WriteString("</html>\n")

	path := filepath.Join(dir, title+".html")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write post info document: %w", err)
	}

	return nil
}

// WriteRunIndex emits one plain-text record per filtered post, in input
// order. The file is an audit log of the run and is never consulted for
// resume decisions.
func WriteRunIndex(posts []kemono.PostSummary, path string) error {
	var b strings.Builder
	for _, post := range posts {
		fmt.Fprintf(&b, "Link: %s\n", post.Link)
		fmt.Fprintf(&b, "Title: %s\n", post.Title)
		fmt.Fprintf(&b, "Number of attachments: %s\n", post.AttachmentsLabel)
		fmt.Fprintf(&b, "Post date: %s\n", post.PublishedAt)
		fmt.Fprintf(&b, "Cover image: %s\n", post.CoverImage)
		fmt.Fprintf(&b, "\n%s\n\n", indexSeparator)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write run index: %w", err)
	}

	return nil
}
