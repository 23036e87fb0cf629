package resources_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/studysync/studysync/internal/resources"
)

func ddgResultHTML(title, target, snippet string) string {
	redirect := "//duckduckgo.com/l/?uddg=" + url.QueryEscape(target)
	return fmt.Sprintf(`<div class="result">
<a rel="nofollow" class="result__a" href="%s">%s</a>
<a class="result__snippet" href="%s">%s</a>
</div>`, redirect, title, redirect, snippet)
}

func TestDuckDuckGoSearcher_SearchArticles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/html/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if q := r.URL.Query().Get("q"); q != "go slices guide" {
			t.Errorf("q = %q, want 'go slices guide'", q)
		}
		fmt.Fprint(w, "<html><body>")
		fmt.Fprint(w, ddgResultHTML("Go Slices <b>Guide</b>", "https://dev.to/go-slices", "All about slices"))
		fmt.Fprint(w, ddgResultHTML("Another", "https://example.com/post", "Something else"))
		fmt.Fprint(w, "</body></html>")
	}))
	defer server.Close()

	searcher := resources.NewDuckDuckGoSearcher(resources.WithDuckDuckGoBaseURL(server.URL))
	articles, err := searcher.SearchArticles(context.Background(), "go slices guide", 5)
	if err != nil {
		t.Fatalf("SearchArticles() error = %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("len(articles) = %d, want 2", len(articles))
	}
	if articles[0].Title != "Go Slices Guide" {
		t.Errorf("Title = %q, want tags stripped", articles[0].Title)
	}
	if articles[0].URL != "https://dev.to/go-slices" {
		t.Errorf("URL = %q, want redirect unwrapped", articles[0].URL)
	}
	if articles[0].Source != "dev.to" {
		t.Errorf("Source = %q, want dev.to", articles[0].Source)
	}
	if articles[0].Description != "All about slices" {
		t.Errorf("Description = %q", articles[0].Description)
	}
	if articles[0].Type != "article" || articles[0].Platform != "web" {
		t.Errorf("Type/Platform = %q/%q", articles[0].Type, articles[0].Platform)
	}
}

func TestDuckDuckGoSearcher_ExcludesDomains(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ddgResultHTML("Wiki page", "https://en.wikipedia.org/wiki/Go", "wiki"))
		fmt.Fprint(w, ddgResultHTML("Video", "https://www.youtube.com/watch?v=x", "video"))
		fmt.Fprint(w, ddgResultHTML("Real article", "https://realpython.com/go", "article"))
	}))
	defer server.Close()

	searcher := resources.NewDuckDuckGoSearcher(
		resources.WithDuckDuckGoBaseURL(server.URL),
		resources.WithExcludedDomains(resources.DefaultPolicy().ExcludedDomains),
	)
	articles, err := searcher.SearchArticles(context.Background(), "go", 5)
	if err != nil {
		t.Fatalf("SearchArticles() error = %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("len(articles) = %d, want 1 after exclusions", len(articles))
	}
	if articles[0].Source != "realpython.com" {
		t.Errorf("Source = %q, want realpython.com", articles[0].Source)
	}
}

func TestDuckDuckGoSearcher_MaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 5; i++ {
			fmt.Fprint(w, ddgResultHTML("Post", fmt.Sprintf("https://example.com/%d", i), "text"))
		}
	}))
	defer server.Close()

	searcher := resources.NewDuckDuckGoSearcher(resources.WithDuckDuckGoBaseURL(server.URL))
	articles, err := searcher.SearchArticles(context.Background(), "go", 2)
	if err != nil {
		t.Fatalf("SearchArticles() error = %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("len(articles) = %d, want 2", len(articles))
	}
}

func TestDuckDuckGoSearcher_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	searcher := resources.NewDuckDuckGoSearcher(resources.WithDuckDuckGoBaseURL(server.URL))
	if _, err := searcher.SearchArticles(context.Background(), "go", 5); err == nil {
		t.Fatal("expected error on HTTP 403")
	}
}

func TestDuckDuckGoSearcher_DirectLinksPassThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a rel="nofollow" class="result__a" href="https://dev.to/direct">Direct</a>`)
	}))
	defer server.Close()

	searcher := resources.NewDuckDuckGoSearcher(resources.WithDuckDuckGoBaseURL(server.URL))
	articles, err := searcher.SearchArticles(context.Background(), "go", 5)
	if err != nil {
		t.Fatalf("SearchArticles() error = %v", err)
	}
	if len(articles) != 1 || articles[0].URL != "https://dev.to/direct" {
		t.Errorf("articles = %+v", articles)
	}
}
