package kemono

// Sentinel values used when an optional listing field is absent. The
// extractor never fails on a missing optional element; it records one of
// these instead so downstream filtering can reason about presence.
const (
	NoAttachmentsLabel = "No attachments"
	NoDateLabel        = "No date available"
	NoImageLabel       = "No image available"

	UnknownAuthor   = "UnknownAuthor"
	UnknownPlatform = "UnknownPlatform"
)

// PostSummary is one post card from a paginated listing page. Immutable
// once produced by the walker.
type PostSummary struct {
	Link             string
	Title            string
	AttachmentsLabel string
	PublishedAt      string
	CoverImage       string
}

// HasMedia reports whether the post carries downloadable media: a cover
// image or a non-empty attachments label.
func (p PostSummary) HasMedia() bool {
	return p.CoverImage != NoImageLabel || p.AttachmentsLabel != NoAttachmentsLabel
}

// Attachment is a downloadable file linked from a post's detail page.
// BrowseURL is the optional "browse »" companion link resolved against
// the post URL.
type Attachment struct {
	Name      string
	URL       string
	BrowseURL string
}

// Comment is a single flattened comment from a post's footer.
type Comment struct {
	Author    string
	Timestamp string
	Text      string
}

// PostDetail holds everything extracted from a post's detail page. It is
// transient: used only while writing metadata and enumerating download
// targets.
type PostDetail struct {
	Author      string
	Platform    string
	PostID      string
	Title       string
	PublishedAt string
	ImportedAt  string
	Tags        []string
	Attachments []Attachment
	MediaLinks  []string
	ContentHTML string
	Comments    []Comment
}
