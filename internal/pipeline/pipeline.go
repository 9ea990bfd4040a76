package pipeline

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/visualstash/stash/internal/logger"
	"github.com/visualstash/stash/internal/model"
	"github.com/visualstash/stash/internal/storage"
)

// placeholderTitle is what link-click saves carry when nothing better is
// known; it always triggers a title backfill.
const placeholderTitle = "Saved Link"

// maxTitleFetchBytes caps how much of a page body is read for the title
// scrape.
const maxTitleFetchBytes = 1 << 20

// The execution context of the original system had no DOM parser, so the
// title is the first <title> tag by pattern match. Kept that way so output
// matches on malformed markup.
var titleRe = regexp.MustCompile(`(?i)<title>(.*?)</title>`)

// entityPairs are the five entities decoded in scraped titles, applied
// sequentially in this order.
var entityPairs = [][2]string{
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&#39;", "'"},
	{"&quot;", `"`},
}

// Pipeline turns a raw (url, title, category) into a committed bookmark:
// redirect resolution, title backfill, category validation, duplicate
// rejection and the usage bookkeeping around the commit.
type Pipeline struct {
	store  storage.Store
	client *http.Client
	log    logger.Logger
	notify func(Status)
}

// Params holds parameters for creating a Pipeline.
type Params struct {
	Store  storage.Store
	Client *http.Client // optional; defaults to a 10s-timeout client
	Logger logger.Logger
	Notify func(Status) // optional status sink, e.g. (*Badge).Set
}

// New creates a Pipeline.
func New(params Params) *Pipeline {
	client := params.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		store:  params.Store,
		client: client,
		log:    log,
		notify: params.Notify,
	}
}

// Save runs the full pipeline. It never returns an error: every outcome is
// reported through the status sink, and fetch failures degrade to the raw
// input rather than aborting.
func (p *Pipeline) Save(ctx context.Context, rawURL, rawTitle, targetCategory string) {
	if rawURL == "" {
		return
	}

	finalURL, finalTitle := p.resolve(ctx, rawURL, rawTitle)

	// Re-read fresh state immediately before mutating; the read-mutate-write
	// window is the only concurrency control the store offers.
	record, err := p.store.Read()
	if err != nil {
		p.log.Error("save aborted: store read failed", logger.Error(err))
		p.setStatus(StatusError)
		return
	}

	category := record.ValidCategory(targetCategory)

	if record.HasBookmark(finalURL, category) {
		p.log.Info("duplicate save ignored",
			logger.String("url", finalURL),
			logger.String("category", category))
		p.setStatus(StatusDuplicate)
		return
	}

	bookmark := model.NewBookmark(model.NewBookmarkParams{
		URL:      finalURL,
		Title:    finalTitle,
		Category: category,
	})

	record.Bookmarks = append([]model.Bookmark{bookmark}, record.Bookmarks...)
	record.LastSavedCategory = category
	record.CategoryUsage[category] = time.Now().UnixMilli()

	if err := p.store.Write(record); err != nil {
		p.log.Error("save aborted: store write failed", logger.Error(err))
		p.setStatus(StatusError)
		return
	}

	p.log.Info("bookmark saved",
		logger.String("url", finalURL),
		logger.String("category", category))
	p.setStatus(StatusSaved)
}

func (p *Pipeline) setStatus(status Status) {
	if p.notify != nil {
		p.notify(status)
	}
}

// resolve follows redirects with a metadata-only request and backfills
// generic titles from the page body. Any fetch failure falls back to the
// input; the pipeline never aborts here.
func (p *Pipeline) resolve(ctx context.Context, rawURL, rawTitle string) (string, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return rawURL, rawTitle
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn("redirect resolution failed", logger.String("url", rawURL), logger.Error(err))
		return rawURL, rawTitle
	}
	resp.Body.Close()

	finalURL := resp.Request.URL.String()
	finalTitle := rawTitle

	if isGenericTitle(rawTitle, rawURL) {
		if scraped := p.fetchTitle(ctx, finalURL); scraped != "" {
			finalTitle = scraped
		}
	}

	return finalURL, finalTitle
}

// isGenericTitle reports whether a title carries no information worth
// keeping: empty, the URL itself, the link-save placeholder, or a shortener
// artifact.
func isGenericTitle(title, url string) bool {
	return title == "" ||
		title == url ||
		title == placeholderTitle ||
		strings.Contains(title, "t.co") ||
		strings.Contains(title, "http")
}

// fetchTitle downloads the page and extracts the first <title> tag.
// Returns "" when the fetch fails or no tag matches.
func (p *Pipeline) fetchTitle(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn("title fetch failed", logger.String("url", pageURL), logger.Error(err))
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTitleFetchBytes))
	if err != nil {
		return ""
	}

	match := titleRe.FindSubmatch(body)
	if match == nil || len(match[1]) == 0 {
		return ""
	}

	return decodeEntities(strings.TrimSpace(string(match[1])))
}

func decodeEntities(s string) string {
	for _, pair := range entityPairs {
		s = strings.ReplaceAll(s, pair[0], pair[1])
	}
	return s
}
