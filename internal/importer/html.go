// Package importer reads Netscape bookmark HTML, the interchange format
// every browser exports, and folds it into a storage record.
package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/visualstash/stash/internal/model"
)

// Result holds what a bookmark file parsed into: the folder names seen,
// in document order, and the bookmarks already tagged with a category.
type Result struct {
	Categories []string
	Bookmarks  []model.Bookmark
}

// Parse reads Netscape bookmark HTML. Browser folders map onto flat
// categories: each bookmark takes its innermost folder's name, and
// bookmarks outside any folder land in the inbox.
func Parse(r io.Reader) (*Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	seen := map[string]bool{}

	// Track the current folder chain for category assignment
	var folderStack []string
	var pendingFolder string // folder waiting to be pushed on next DL

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name != "" {
					if !seen[name] {
						seen[name] = true
						res.Categories = append(res.Categories, name)
					}
					// Mark as pending - pushed when we see the next DL
					pendingFolder = name
				}
				return // Don't recurse into H3

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					// Skip bookmarks without URL
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href // fallback to URL as title
				}

				category := model.CategoryInbox
				if len(folderStack) > 0 {
					category = folderStack[len(folderStack)-1]
				}

				// ADD_DATE is epoch seconds
				createdAt := time.Now().UnixMilli()
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						createdAt = ts * 1000
					}
				}

				res.Bookmarks = append(res.Bookmarks, model.Bookmark{
					ID:        model.GenerateUUID(),
					URL:       href,
					Title:     title,
					Hostname:  model.Hostname(href),
					Favicon:   model.FaviconURL(href),
					Category:  category,
					CreatedAt: createdAt,
				})
				return // Don't recurse into A

			case "dl":
				// Definition list - marks folder contents
				pushed := false
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return // Children handled above
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return res, nil
}

// Merge folds a parse result into a record. New categories append to the
// sequence; bookmarks whose (url, category) pair already exists are
// skipped. Returns how many bookmarks were added.
func Merge(rec *model.StorageRecord, res *Result) int {
	for _, cat := range res.Categories {
		if !rec.HasCategory(cat) {
			rec.Categories = append(rec.Categories, cat)
		}
	}

	added := 0
	for _, b := range res.Bookmarks {
		if !rec.HasCategory(b.Category) {
			// Folder seen on a bookmark but never as an H3; rare but some
			// exporters produce it.
			rec.Categories = append(rec.Categories, b.Category)
		}
		if rec.HasBookmark(b.URL, b.Category) {
			continue
		}
		rec.Bookmarks = append(rec.Bookmarks, b)
		added++
	}
	return added
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
