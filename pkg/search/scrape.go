package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/beeper/search-bot/pkg/shared/httputil"
)

// Results page markup. These are the only selectors the scraper depends on.
const (
	selResult    = "div.result:not(.result--ad)"
	selNoResults = ".result--no-result, .no-results"
	selAnchor    = "a.result__a"
	selSnippet   = ".result__snippet"
)


// ScrapeClient extracts the first organic result from the HTML results page.
type ScrapeClient struct {
	cfg       ScrapeConfig
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

func NewScrapeClient(cfg *Config) *ScrapeClient {
	cfg = cfg.WithDefaults()
	return &ScrapeClient{
		cfg:       cfg.Scrape,
		userAgent: cfg.UserAgent,
		http:      httputil.NewClient(cfg.Scrape.TimeoutSecs),
		limiter:   rate.NewLimiter(rate.Limit(cfg.Scrape.RateLimit), cfg.Scrape.Burst),
	}
}

// Resolve fetches the results page for query and extracts its first result.
// A page that explicitly has no results yields NotFound() and a nil error.
func (c *ScrapeClient) Resolve(ctx context.Context, query string) (ScrapedResult, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return ScrapedResult{}, &TransportError{Stage: StageScrape, Err: err}
	}
	pageURL := *base
	params := pageURL.Query()
	params.Set("q", query)
	pageURL.RawQuery = params.Encode()

	if err = c.limiter.Wait(ctx); err != nil {
		return ScrapedResult{}, &TransportError{Stage: StageScrape, Err: fmt.Errorf("waiting for rate limiter: %w", err)}
	}
	data, status, err := httputil.Get(ctx, c.http, pageURL.String(), c.requestHeaders(), c.cfg.MaxPageBytes)
	if err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) {
			status = statusErr.StatusCode
		}
		return ScrapedResult{}, &TransportError{Stage: StageScrape, StatusCode: status, Err: err}
	}

	result, err := ParseResults(bytes.NewReader(data), base)
	if err != nil {
		return ScrapedResult{}, err
	}
	zerolog.Ctx(ctx).Debug().
		Str("title", result.Title).
		Str("url", result.URL).
		Bool("not_found", result.IsNotFound()).
		Msg("Scraped first result")
	return result, nil
}

// requestHeaders mimics a desktop browser; the HTML endpoint rejects bare clients.
func (c *ScrapeClient) requestHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      c.userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

// ParseResults parses a results page and extracts its first organic result.
// base is used to resolve relative result links and may be nil.
func ParseResults(r io.Reader, base *url.URL) (ScrapedResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ScrapedResult{}, newExtractionError(StepContainer, "unparseable html: "+err.Error())
	}
	doc.Url = base
	return ExtractFirstResult(doc)
}

// ExtractFirstResult pulls title, canonical URL and snippet out of the first organic result.
func ExtractFirstResult(doc *goquery.Document) (ScrapedResult, error) {
	container := doc.Find(selResult).First()
	if container.Length() == 0 {
		if doc.Find(selNoResults).Length() > 0 {
			return NotFound(), nil
		}
		return ScrapedResult{}, newExtractionError(StepContainer, "")
	}
	if container.Is(selNoResults) || container.Find(selNoResults).Length() > 0 {
		return NotFound(), nil
	}

	anchor := container.Find(selAnchor).First()
	if anchor.Length() == 0 {
		return ScrapedResult{}, newExtractionError(StepAnchor, "")
	}
	href, ok := anchor.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ScrapedResult{}, newExtractionError(StepHref, "")
	}
	title := strings.TrimSpace(anchor.Text())
	if title == "" {
		return ScrapedResult{}, newExtractionError(StepTitle, "")
	}

	snippet := container.Find(selSnippet).First()
	if snippet.Length() == 0 {
		return ScrapedResult{}, newExtractionError(StepSnippet, "")
	}
	content := strings.TrimSpace(snippet.Text())
	if content == "" {
		return ScrapedResult{}, newExtractionError(StepSnippet, "snippet has no text")
	}

	return ScrapedResult{
		Title:   title,
		URL:     CanonicalURL(href, doc.Url),
		Content: content,
	}, nil
}

// CanonicalURL unwraps the redirect link used on the results page. When the href carries
// a uddg parameter its decoded value is the destination. Otherwise scheme-relative links
// get an https scheme and relative links are resolved against base.
func CanonicalURL(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if dest := parsed.Query().Get("uddg"); dest != "" {
		return dest
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if base != nil && !parsed.IsAbs() {
		return base.ResolveReference(parsed).String()
	}
	return href
}
