// Package scraper crawls same-host pages and extracts their readable text.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xhad/buddy/internal/models"
)

type ScraperConfig struct {
	BaseURL           string
	MaxDepth          int     // 0 fetches only the start page
	RateLimit         float64 // requests per second
	IgnorePatterns    []string
	AllowedExtensions []string
	Timeout           time.Duration
	OnProgress        func(url string)
	Logger            *zap.Logger
}

type Scraper struct {
	config   ScraperConfig
	client   *http.Client
	limiter  *rate.Limiter
	baseHost string
	logger   *zap.Logger
}

func NewWithConfig(config ScraperConfig) (*Scraper, error) {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxDepth < 0 {
		config.MaxDepth = 0
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}
	if len(config.AllowedExtensions) == 0 {
		config.AllowedExtensions = []string{".html", ".htm", "/", ""}
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	parsedURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: missing host", config.BaseURL)
	}

	return &Scraper{
		config:   config,
		client:   &http.Client{Timeout: config.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		baseHost: parsedURL.Host,
		logger:   config.Logger,
	}, nil
}

func (s *Scraper) shouldProcessURL(urlStr string) bool {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	if parsedURL.Host != s.baseHost {
		return false
	}

	ext := strings.ToLower(parsedURL.Path)
	validExt := false
	for _, allowedExt := range s.config.AllowedExtensions {
		if strings.HasSuffix(ext, allowedExt) {
			validExt = true
			break
		}
	}
	if !validExt {
		return false
	}

	for _, pattern := range s.config.IgnorePatterns {
		if strings.Contains(urlStr, pattern) {
			return false
		}
	}

	return true
}

// Scrape fetches the base URL and follows same-host links up to MaxDepth.
// A failing start page is an error; failing linked pages are logged and
// skipped.
func (s *Scraper) Scrape(ctx context.Context) ([]models.Document, error) {
	c := &crawl{visited: make(map[string]bool)}
	if err := s.scrapeRecursive(ctx, c, s.config.BaseURL, 0); err != nil {
		return nil, err
	}
	return c.documents, nil
}

type crawl struct {
	visited   map[string]bool
	documents []models.Document
}

func (s *Scraper) scrapeRecursive(ctx context.Context, c *crawl, urlStr string, depth int) error {
	if depth > s.config.MaxDepth || c.visited[urlStr] {
		return nil
	}
	if !s.shouldProcessURL(urlStr) {
		return nil
	}

	c.visited[urlStr] = true
	if s.config.OnProgress != nil {
		s.config.OnProgress(urlStr)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	doc, header, err := s.fetch(ctx, urlStr)
	if err != nil {
		return err
	}

	c.documents = append(c.documents, models.Document{
		URL:     urlStr,
		Title:   strings.TrimSpace(doc.Find("title").Text()),
		Content: MainContent(doc),
		Metadata: map[string]interface{}{
			"depth":        depth,
			"contentType":  header.Get("Content-Type"),
			"lastModified": header.Get("Last-Modified"),
		},
	})

	base, err := url.Parse(urlStr)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, _ := selection.Attr("href")
		ref, err := url.Parse(href)
		if err != nil {
			s.logger.Debug("Skipping unparsable link", zap.String("href", href), zap.Error(err))
			return
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		links = append(links, abs.String())
	})

	for _, link := range links {
		if err := s.scrapeRecursive(ctx, c, link, depth+1); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("Failed to scrape page", zap.String("url", link), zap.Error(err))
		}
	}
	return nil
}

func (s *Scraper) fetch(ctx context.Context, urlStr string) (*goquery.Document, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, urlStr)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return doc, resp.Header, nil
}

// ParseHTML reads an HTML document and returns its title and main text.
func ParseHTML(r io.Reader) (title, content string, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(doc.Find("title").Text()), MainContent(doc), nil
}

// MainContent returns the text of the first main-content container, or of
// the body when there is none.
func MainContent(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	selectors := []string{
		"main",
		"article",
		".content",
		"#content",
		".documentation",
		"#documentation",
	}

	var content string
	for _, selector := range selectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			content = selected.Text()
			break
		}
	}

	if content == "" {
		content = doc.Find("body").Text()
	}

	return cleanContent(content)
}

func cleanContent(content string) string {
	content = strings.Join(strings.Fields(content), " ")

	noisePatterns := []string{
		"Cookie Policy",
		"Accept Cookies",
		"Privacy Policy",
		"Terms of Service",
	}
	for _, pattern := range noisePatterns {
		content = strings.ReplaceAll(content, pattern, "")
	}

	return strings.TrimSpace(content)
}
