package resources

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/studysync/studysync/internal/path"
)

// ArticleSearcher finds candidate articles for a search query.
type ArticleSearcher interface {
	SearchArticles(ctx context.Context, query string, maxResults int) ([]path.Resource, error)
}

const defaultDuckDuckGoBaseURL = "https://html.duckduckgo.com"

// DuckDuckGoSearcher queries DuckDuckGo's HTML endpoint, which requires no
// API key. Results from excluded domains are dropped.
type DuckDuckGoSearcher struct {
	baseURL  string
	client   *http.Client
	excluded []string
}

// DuckDuckGoOption configures a DuckDuckGoSearcher.
type DuckDuckGoOption func(*DuckDuckGoSearcher)

// WithDuckDuckGoBaseURL sets the base URL (for testing).
func WithDuckDuckGoBaseURL(url string) DuckDuckGoOption {
	return func(s *DuckDuckGoSearcher) {
		s.baseURL = url
	}
}

// WithDuckDuckGoHTTPClient sets a custom HTTP client.
func WithDuckDuckGoHTTPClient(client *http.Client) DuckDuckGoOption {
	return func(s *DuckDuckGoSearcher) {
		s.client = client
	}
}

// WithExcludedDomains drops results whose source matches any given domain.
func WithExcludedDomains(domains []string) DuckDuckGoOption {
	return func(s *DuckDuckGoSearcher) {
		s.excluded = domains
	}
}

// NewDuckDuckGoSearcher creates a DuckDuckGo search client.
func NewDuckDuckGoSearcher(opts ...DuckDuckGoOption) *DuckDuckGoSearcher {
	s := &DuckDuckGoSearcher{
		baseURL: defaultDuckDuckGoBaseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	resultLinkRe    = regexp.MustCompile(`<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.*?)</a>`)
	resultSnippetRe = regexp.MustCompile(`<a[^>]+class="result__snippet"[^>]*>(.*?)</a>`)
	tagRe           = regexp.MustCompile(`<[^>]+>`)
)

// SearchArticles runs a text search and returns up to maxResults articles.
func (s *DuckDuckGoSearcher) SearchArticles(ctx context.Context, query string, maxResults int) ([]path.Resource, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	searchURL := s.baseURL + "/html/?q=" + url.QueryEscape(query)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (compatible; studysync/1.0)")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo search error %d", resp.StatusCode)
	}

	links := resultLinkRe.FindAllStringSubmatch(string(body), -1)
	snippets := resultSnippetRe.FindAllStringSubmatch(string(body), -1)

	var articles []path.Resource
	for i, match := range links {
		target := resolveRedirect(html.UnescapeString(match[1]))
		source := sourceDomain(target)
		if source == "" || s.isExcluded(source) {
			continue
		}

		description := ""
		if i < len(snippets) {
			description = cleanText(snippets[i][1])
		}

		articles = append(articles, path.Resource{
			Type:        "article",
			Title:       cleanText(match[2]),
			URL:         target,
			Description: description,
			Source:      source,
			Platform:    "web",
		})
		if len(articles) >= maxResults {
			break
		}
	}
	return articles, nil
}

func (s *DuckDuckGoSearcher) isExcluded(source string) bool {
	for _, domain := range s.excluded {
		if strings.Contains(source, domain) {
			return true
		}
	}
	return false
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links to the
// final destination.
func resolveRedirect(link string) string {
	if strings.HasPrefix(link, "//") {
		link = "https:" + link
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return link
}

func sourceDomain(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(s, "")))
}
