// Package exporter writes a storage record as Netscape bookmark HTML so
// the collection can move back into a browser.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/visualstash/stash/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/stash-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("stash-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the record in Netscape bookmark format: one folder
// per category, in stored order, with bookmarks inside. The secret
// category exports like any other; the file is a local backup.
func ExportHTML(rec *model.StorageRecord) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, category := range rec.Categories {
		writeCategory(&b, rec, category)
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

func writeCategory(b *strings.Builder, rec *model.StorageRecord, category string) {
	prefix := "    "
	fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(category))
	fmt.Fprintf(b, "%s<DL><p>\n", prefix)

	inner := prefix + "    "
	for _, bookmark := range rec.BookmarksInCategory(category) {
		// ADD_DATE is epoch seconds
		fmt.Fprintf(b,
			"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
			inner,
			html.EscapeString(bookmark.URL),
			bookmark.CreatedAt/1000,
			html.EscapeString(bookmark.Title),
		)
	}

	fmt.Fprintf(b, "%s</DL><p>\n", prefix)
}
