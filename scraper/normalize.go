package scraper

import "strings"

// DefaultScheme is prepended to URLs that arrive without one.
const DefaultScheme = "https://"

// NormalizeURL trims surrounding whitespace and prepends DefaultScheme unless
// the URL already starts with "http://" or "https://" (exact, case-sensitive).
// It never fails; malformed hosts pass through and surface at fetch time.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return DefaultScheme + u
}
