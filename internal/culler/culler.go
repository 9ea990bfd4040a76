// Package culler probes saved URLs so stale bookmarks can be weeded out.
package culler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/visualstash/stash/internal/logger"
	"github.com/visualstash/stash/internal/model"
)

// Status classifies one probe outcome.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
)

// Result holds the check result for a single bookmark.
type Result struct {
	Bookmark   *model.Bookmark
	Status     Status
	StatusCode int    // HTTP status code (0 if connection failed)
	Error      string // normalized message for unreachable URLs
}

// Params holds parameters for creating a Checker.
type Params struct {
	Client      *http.Client // optional; built from Timeout when nil
	Concurrency int          // worker count, defaults to 8
	Timeout     time.Duration
	// ExcludeDomains lists hosts where a 404/410 means "possibly private"
	// rather than dead (auth-walled repos and the like).
	ExcludeDomains []string
	Logger         logger.Logger
	// OnProgress is called after each probe with (completed, total).
	OnProgress func(completed, total int)
}

// Checker probes bookmark URLs concurrently.
type Checker struct {
	client     *http.Client
	workers    int
	exclude    map[string]bool
	log        logger.Logger
	onProgress func(completed, total int)
}

// New creates a Checker.
func New(params Params) *Checker {
	client := params.Client
	if client == nil {
		client = &http.Client{
			Timeout: params.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	workers := params.Concurrency
	if workers <= 0 {
		workers = 8
	}
	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}
	exclude := make(map[string]bool, len(params.ExcludeDomains))
	for _, domain := range params.ExcludeDomains {
		exclude[strings.ToLower(domain)] = true
	}
	return &Checker{
		client:     client,
		workers:    workers,
		exclude:    exclude,
		log:        log,
		onProgress: params.OnProgress,
	}
}

// Check probes every bookmark and returns one Result per input, in input
// order.
func (c *Checker) Check(ctx context.Context, bookmarks []model.Bookmark) []Result {
	if len(bookmarks) == 0 {
		return nil
	}

	results := make([]Result, len(bookmarks))
	jobs := make(chan int, len(bookmarks))

	var progressMu sync.Mutex
	completed := 0

	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = c.probe(ctx, &bookmarks[idx])

				if c.onProgress != nil {
					progressMu.Lock()
					completed++
					c.onProgress(completed, len(bookmarks))
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range bookmarks {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	c.log.Debug("link check finished", logger.Int("checked", len(results)))
	return results
}

// DeadIDs extracts the bookmark IDs that came back Dead, for feeding
// straight into a bulk delete.
func DeadIDs(results []Result) []string {
	var ids []string
	for _, r := range results {
		if r.Status == Dead {
			ids = append(ids, r.Bookmark.ID)
		}
	}
	return ids
}

// probe issues a HEAD request, falling back to GET for servers that reject
// HEAD, and triages the response.
func (c *Checker) probe(ctx context.Context, bookmark *model.Bookmark) Result {
	result := Result{Bookmark: bookmark}

	resp, err := c.fetch(ctx, http.MethodHead, bookmark.URL)
	if err != nil {
		resp, err = c.fetch(ctx, http.MethodGet, bookmark.URL)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err.Error())
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// Auth-walled hosts answer 404 for pages that still exist.
		if c.isExcluded(bookmark.URL) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		// 5xx and 403s may be transient or auth-gated; never cull on them.
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}

	return result
}

func (c *Checker) fetch(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// isExcluded matches the URL's host against the exclude list, including
// subdomains of excluded entries.
func (c *Checker) isExcluded(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	if c.exclude[host] {
		return true
	}
	for domain := range c.exclude {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError simplifies verbose transport errors into readable
// categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
