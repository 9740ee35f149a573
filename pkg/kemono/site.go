package kemono

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// PostsPerPage is the fixed page size of profile listings
	PostsPerPage = 50

	// BucketKemono is the top-level output folder for kemono hosts
	BucketKemono = "Kemono"

	// BucketCoomer is the top-level output folder for everything else
	BucketCoomer = "Coomer"
)

// BucketForHost classifies a host into an output bucket. The two kemono
// hosts map to the Kemono bucket; any other host, including unrecognized
// ones, lands in Coomer.
func BucketForHost(host string) string {
	if strings.Contains(host, "kemono.su") || strings.Contains(host, "kemono.party") {
		return BucketKemono
	}
	return BucketCoomer
}

// IsKnownHost reports whether the host is one of the two supported site
// families. Unknown hosts are still crawled but logged as miscategorized
// candidates.
func IsKnownHost(host string) bool {
	for _, known := range []string{"kemono.su", "kemono.party", "coomer.su", "coomer.party"} {
		if strings.Contains(host, known) {
			return true
		}
	}
	return false
}

// ListingURL builds the URL of one listing page: {base}?o={page*50}
func ListingURL(baseURL string, page int) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid profile URL %q: %w", baseURL, err)
	}

	q := u.Query()
	q.Set("o", strconv.Itoa(page*PostsPerPage))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// TotalPages converts a total post count into a page count, rounding up.
func TotalPages(totalPosts int) int {
	if totalPosts <= 0 {
		return 1
	}
	return (totalPosts + PostsPerPage - 1) / PostsPerPage
}
