package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/store"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultPostSelector = "div.status__content"

	probeTimeout = 2 * time.Second
)

// FeedScraper polls a public feed page and extracts the newest post's
// text. One scraper maps to one feed URL.
type FeedScraper struct {
	url       string
	selector  string
	timeout   time.Duration
	transport *http.Transport

	// Cache validators from the last full fetch, so Ready can probe
	// for new content without downloading the page.
	mu           sync.Mutex
	etag         string
	lastModified string
}

var _ interfaces.Source = (*FeedScraper)(nil)

// NewFeedScraper builds a scraper from the feed section of the config.
func NewFeedScraper(cfg *store.Config) *FeedScraper {
	selector := cfg.Feed.PostSelector
	if selector == "" {
		selector = defaultPostSelector
	}

	return &FeedScraper{
		url:       cfg.Feed.URL,
		selector:  selector,
		timeout:   time.Duration(cfg.Feed.TimeoutSecs) * time.Second,
		transport: &http.Transport{},
	}
}

// Next fetches the feed page and returns the text of the first element
// matching the configured selector. An empty string with nil error
// means the page rendered but carried no matching post.
func (f *FeedScraper) Next(ctx context.Context) (string, error) {
	c := colly.NewCollector(colly.MaxDepth(1))
	c.WithTransport(f.transport)
	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	c.OnResponse(func(r *colly.Response) {
		f.rememberValidators(r.Headers.Get("ETag"), r.Headers.Get("Last-Modified"))
	})

	var post string
	var found bool
	c.OnHTML(f.selector, func(e *colly.HTMLElement) {
		// Only the newest post matters; the feed lists newest first.
		if found {
			return
		}
		found = true
		post = extractText(e.DOM)
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Feed fetch error", err, "url", r.Request.URL.String())
	})

	if err := c.Visit(f.url); err != nil {
		return "", fmt.Errorf("failed to visit %s: %w", f.url, err)
	}
	c.Wait()

	if !found {
		logger.Debug(ctx, "No post matched selector", "selector", f.selector)
		return "", nil
	}
	return post, nil
}

// Ready probes the feed with a HEAD request and reports whether its
// cache validators changed since the last full fetch, meaning new
// content is likely waiting. Cheap enough for a once-per-second check;
// servers exposing no validators simply never signal early.
func (f *FeedScraper) Ready() bool {
	req, err := http.NewRequest(http.MethodHead, f.url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Transport: f.transport, Timeout: probeTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return false
	}

	etag := resp.Header.Get("ETag")
	lastModified := resp.Header.Get("Last-Modified")
	if etag == "" && lastModified == "" {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return (etag != "" && etag != f.etag) ||
		(lastModified != "" && lastModified != f.lastModified)
}

// Close releases pooled connections. Best-effort: callers fire it from
// a detached goroutine at shutdown and never wait on it.
func (f *FeedScraper) Close() {
	f.transport.CloseIdleConnections()
}

func (f *FeedScraper) rememberValidators(etag, lastModified string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.etag = etag
	f.lastModified = lastModified
}

// extractText flattens a post element to plain text. Paragraph children
// are joined with blank lines so multi-paragraph posts keep their
// structure; elements without paragraphs fall back to the whole text.
func extractText(sel *goquery.Selection) string {
	paragraphs := []string{}
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n\n")
	}
	return strings.TrimSpace(sel.Text())
}
