package model

import (
	"net/url"
	"strings"
)

const fallbackFavicon = "https://picsum.photos/64/64"

// Hostname extracts the host from a raw URL, with a leading "www." removed.
// Returns "unknown" for unparseable input.
func Hostname(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// FaviconURL builds the favicon service URL for a bookmark.
func FaviconURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return fallbackFavicon
	}
	return "https://www.google.com/s2/favicons?domain=" + parsed.Hostname() + "&sz=128"
}
