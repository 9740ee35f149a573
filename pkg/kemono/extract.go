package kemono

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	errs "kemograb/pkg/errors"
)

// ExtractTotalPosts reads the "Showing X-Y of Z" counter on the first
// listing page. The boolean is false when the counter is absent, in which
// case the walker assumes a single page.
func ExtractTotalPosts(doc *goquery.Document) (int, bool) {
	text := strings.TrimSpace(doc.Find("small").First().Text())
	if text == "" {
		return 0, false
	}

	parts := strings.Split(text, " of ")
	if len(parts) < 2 {
		return 0, false
	}

	total, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return 0, false
	}

	return total, true
}

// ExtractPostSummaries pulls every post card from a listing page. Each
// field is independently optional: a missing element yields its sentinel,
// never an error. Cards without any link are dropped.
func ExtractPostSummaries(doc *goquery.Document, base *url.URL) []PostSummary {
	var posts []PostSummary

	doc.Find("article.post-card.post-card--preview").Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Find("a").First().Attr("href")
		if !ok {
			return
		}

		post := PostSummary{
			Link:             resolveURL(base, href),
			Title:            strings.TrimSpace(card.Find("header.post-card__header").Text()),
			AttachmentsLabel: NoAttachmentsLabel,
			PublishedAt:      NoDateLabel,
			CoverImage:       NoImageLabel,
		}

		card.Find("div").EachWithBreak(func(_ int, div *goquery.Selection) bool {
			text := strings.TrimSpace(div.Text())
			if strings.Contains(strings.ToLower(text), "attachments") {
				post.AttachmentsLabel = text
				return false
			}
			return true
		})

		if datetime, ok := card.Find("time").First().Attr("datetime"); ok {
			post.PublishedAt = datetime
		}

		if src, ok := card.Find("img.post-card__image").First().Attr("src"); ok {
			post.CoverImage = resolveURL(base, src)
		}

		posts = append(posts, post)
	})

	return posts
}

// ExtractPostDetail pulls structured fields from a post detail page. Every
// field except the post id tolerates absence; a missing post id is a hard
// extraction failure because the destination folder is keyed on it.
func ExtractPostDetail(doc *goquery.Document, postURL *url.URL) (*PostDetail, error) {
	postID, ok := doc.Find(`meta[name="id"]`).First().Attr("content")
	if !ok || postID == "" {
		return nil, errs.New(errs.ErrorTypeMissingField, "post id not found in document")
	}

	detail := &PostDetail{
		PostID:   postID,
		Author:   extractAuthor(doc),
		Platform: extractPlatform(doc),
		Title:    extractTitle(doc),
	}

	if published := labeledValue(doc, "div.post__published"); published != "" {
		detail.PublishedAt = published
	}
	if imported := labeledValue(doc, "div.post__added"); imported != "" {
		detail.ImportedAt = imported
	}

	doc.Find("section#post-tags a").Each(func(_ int, a *goquery.Selection) {
		detail.Tags = append(detail.Tags, strings.TrimSpace(a.Text()))
	})

	doc.Find("a.post__attachment-link").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}

		text := strings.TrimSpace(a.Text())
		name := text
		if fields := strings.Fields(text); len(fields) > 0 {
			name = fields[len(fields)-1]
		}

		detail.Attachments = append(detail.Attachments, Attachment{
			Name:      name,
			URL:       resolveURL(postURL, href),
			BrowseURL: browseLink(a, postURL),
		})
	})

	doc.Find("a.fileThumb").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			detail.MediaLinks = append(detail.MediaLinks, resolveURL(postURL, href))
		}
	})

	if content := doc.Find("div.post__content").First(); content.Length() > 0 {
		if html, err := goquery.OuterHtml(content); err == nil {
			detail.ContentHTML = html
		}
	}

	doc.Find("footer.post__footer article.comment").Each(func(_ int, comment *goquery.Selection) {
		timestamp, _ := comment.Find("time.timestamp").First().Attr("datetime")
		detail.Comments = append(detail.Comments, Comment{
			Author:    strings.TrimSpace(comment.Find("a.comment__name").Text()),
			Timestamp: timestamp,
			Text:      strings.TrimSpace(comment.Find("p.comment__message").Text()),
		})
	})

	return detail, nil
}

// extractAuthor resolves the author through the fallback chain: explicit
// author element, og:image-derived name, then the unknown sentinel.
func extractAuthor(doc *goquery.Document) string {
	if author := strings.TrimSpace(doc.Find("a.post__user-name").First().Text()); author != "" {
		return author
	}

	if content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
		segments := strings.Split(content, "/")
		last := segments[len(segments)-1]
		if name := strings.SplitN(last, "-", 2)[0]; name != "" {
			return name
		}
	}

	return UnknownAuthor
}

// extractPlatform derives the platform name from the og:image URL path
func extractPlatform(doc *goquery.Document) string {
	content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	if !ok {
		return UnknownPlatform
	}

	u, err := url.Parse(content)
	if err != nil {
		return UnknownPlatform
	}

	segments := strings.Split(u.Path, "/")
	if len(segments) > 2 && segments[2] != "" {
		return segments[2]
	}

	return UnknownPlatform
}

// extractTitle joins the title spans; posts without a title element fall
// back to "Untitled" so the info document always has a filename.
func extractTitle(doc *goquery.Document) string {
	title := doc.Find("h1.post__title").First()
	if title.Length() == 0 {
		return "Untitled"
	}

	var parts []string
	title.Find("span").Each(func(_ int, span *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(span.Text()))
	})
	if len(parts) == 0 {
		if text := strings.TrimSpace(title.Text()); text != "" {
			return text
		}
		return "Untitled"
	}

	return strings.Join(parts, " ")
}

// labeledValue reads "Label: value" elements like the published and added
// rows, returning only the value part.
func labeledValue(doc *goquery.Document, selector string) string {
	text := strings.TrimSpace(doc.Find(selector).First().Text())
	if _, value, found := strings.Cut(text, ": "); found {
		return strings.TrimSpace(value)
	}
	return ""
}

// browseLink finds the "browse »" companion link that follows an
// attachment anchor, first among its following siblings and then within
// the enclosing element.
func browseLink(attachment *goquery.Selection, postURL *url.URL) string {
	isBrowse := func(_ int, a *goquery.Selection) bool {
		return strings.TrimSpace(a.Text()) == "browse »"
	}

	candidate := attachment.NextAllFiltered("a").FilterFunction(isBrowse).First()
	if candidate.Length() == 0 {
		candidate = attachment.Parent().Find("a").FilterFunction(isBrowse).First()
	}

	href, ok := candidate.Attr("href")
	if !ok {
		return ""
	}

	return resolveURL(postURL, href)
}

// resolveURL resolves a possibly-relative href against a base URL. An
// unparseable href is returned as-is.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
