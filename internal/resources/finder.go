package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/studysync/studysync/internal/ai"
	"github.com/studysync/studysync/internal/path"
	"github.com/studysync/studysync/internal/platform/cache"
)

const (
	videosPerSession   = 2
	articlesPerSession = 1
	searchOverfetch    = 3
	defaultCacheTTL    = 24 * time.Hour
)

// Completer is the slice of the AI router used for relevance checks.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error)
}

// FinderConfig holds the collaborators for a Finder.
type FinderConfig struct {
	Videos   VideoSearcher
	Articles ArticleSearcher
	Policy   Policy

	// Relevance enables LLM filtering of search results. Optional; when
	// nil every result is assumed relevant.
	Relevance Completer

	// Cache stores search results to spare repeated identical queries.
	// Optional.
	Cache    *cache.Cache
	CacheTTL time.Duration
}

// Finder locates and ranks learning resources for session topics. Search
// failures degrade to search-page fallback links so a session always gets
// something to follow.
type Finder struct {
	videos    VideoSearcher
	articles  ArticleSearcher
	policy    Policy
	relevance Completer
	cache     *cache.Cache
	cacheTTL  time.Duration
}

// NewFinder creates a Finder. Videos and Articles searchers are required.
func NewFinder(cfg FinderConfig) (*Finder, error) {
	if cfg.Videos == nil {
		return nil, fmt.Errorf("video searcher is required")
	}
	if cfg.Articles == nil {
		return nil, fmt.Errorf("article searcher is required")
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Finder{
		videos:    cfg.Videos,
		articles:  cfg.Articles,
		policy:    cfg.Policy,
		relevance: cfg.Relevance,
		cache:     cfg.Cache,
		cacheTTL:  ttl,
	}, nil
}

// FindSessionResources returns the best videos and article for one session
// topic: up to two videos and one article, quality-ranked.
func (f *Finder) FindSessionResources(ctx context.Context, mainTopic, sessionTopic string) []path.Resource {
	var resources []path.Resource

	videoQuery := sessionTopic + " tutorial explained"
	videos, err := f.searchVideosCached(ctx, videoQuery, videosPerSession+searchOverfetch)
	if err != nil || len(videos) == 0 {
		if err != nil {
			slog.Warn("video search failed", "topic", sessionTopic, "error", err)
		}
		resources = append(resources, FallbackVideo(sessionTopic))
	} else {
		ranked := f.policy.RankVideos(videos)
		resources = append(resources, f.keepRelevant(ctx, ranked, sessionTopic, mainTopic, videosPerSession)...)
	}

	articleQuery := sessionTopic + " tutorial guide"
	articles, err := f.searchArticlesCached(ctx, articleQuery, articlesPerSession+searchOverfetch)
	if err != nil || len(articles) == 0 {
		if err != nil {
			slog.Warn("article search failed", "topic", sessionTopic, "error", err)
		}
		resources = append(resources, FallbackArticle(sessionTopic))
	} else {
		ranked := f.policy.RankArticles(articles)
		resources = append(resources, f.keepRelevant(ctx, ranked, sessionTopic, mainTopic, articlesPerSession)...)
	}

	return resources
}

// keepRelevant walks ranked results best-first, keeping the first limit
// resources that pass the relevance check.
func (f *Finder) keepRelevant(ctx context.Context, ranked []path.Resource, sessionTopic, mainTopic string, limit int) []path.Resource {
	kept := make([]path.Resource, 0, limit)
	for _, r := range ranked {
		if len(kept) >= limit {
			break
		}
		if f.isRelevant(ctx, r, sessionTopic, mainTopic) {
			kept = append(kept, r)
		}
	}
	return kept
}

// isRelevant asks the model whether a resource actually teaches the topic.
// Errors default to keeping the resource.
func (f *Finder) isRelevant(ctx context.Context, r path.Resource, sessionTopic, mainTopic string) bool {
	if f.relevance == nil {
		return true
	}

	description := r.Description
	if len(description) > 300 {
		description = description[:300]
	}
	if description == "" {
		description = "No description"
	}

	prompt := fmt.Sprintf(`Evaluate if this %s is relevant and useful for learning about "%s" (part of learning %s).

Resource Title: %s
Description: %s

Respond with ONLY "yes" or "no":
- "yes" if the resource directly teaches or explains the topic
- "no" if it's unrelated, tangential, entertainment-focused, or not educational

Answer:`, r.Type, sessionTopic, mainTopic, r.Title, description)

	resp, err := f.relevance.Complete(ctx, ai.CompletionRequest{
		Task:      ai.TaskRelevance,
		MaxTokens: 10,
		Messages:  []ai.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		slog.Warn("relevance check failed, keeping resource", "title", r.Title, "error", err)
		return true
	}

	relevant := strings.HasPrefix(strings.ToLower(strings.TrimSpace(resp.Content)), "yes")
	if !relevant {
		slog.Debug("filtered irrelevant resource", "type", r.Type, "title", r.Title)
	}
	return relevant
}

func (f *Finder) searchVideosCached(ctx context.Context, query string, maxResults int) ([]path.Resource, error) {
	return f.cached(ctx, "search:video:"+query, func() ([]path.Resource, error) {
		return f.videos.SearchVideos(ctx, query, maxResults)
	})
}

func (f *Finder) searchArticlesCached(ctx context.Context, query string, maxResults int) ([]path.Resource, error) {
	return f.cached(ctx, "search:article:"+query, func() ([]path.Resource, error) {
		return f.articles.SearchArticles(ctx, query, maxResults)
	})
}

// cached wraps a search with read-through caching. Cache failures never
// fail the search.
func (f *Finder) cached(ctx context.Context, key string, search func() ([]path.Resource, error)) ([]path.Resource, error) {
	if f.cache != nil {
		if data, err := f.cache.Client.Get(ctx, key).Bytes(); err == nil {
			var results []path.Resource
			if err := json.Unmarshal(data, &results); err == nil {
				return results, nil
			}
		}
	}

	results, err := search()
	if err != nil {
		return nil, err
	}

	if f.cache != nil && len(results) > 0 {
		if data, err := json.Marshal(results); err == nil {
			if err := f.cache.Client.Set(ctx, key, data, f.cacheTTL).Err(); err != nil {
				slog.Warn("caching search results failed", "key", key, "error", err)
			}
		}
	}
	return results, nil
}

// FallbackVideo links to a YouTube search when video discovery fails.
func FallbackVideo(topic string) path.Resource {
	query := strings.ReplaceAll(topic, " ", "+")
	return path.Resource{
		Type:        "video",
		Title:       "Search: " + topic + " tutorials",
		URL:         "https://www.youtube.com/results?search_query=" + query + "+tutorial",
		Description: "Click to search for video tutorials",
		Platform:    "youtube",
		IsFallback:  true,
	}
}

// FallbackArticle links to a web search when article discovery fails.
func FallbackArticle(topic string) path.Resource {
	query := strings.ReplaceAll(topic, " ", "+")
	return path.Resource{
		Type:        "article",
		Title:       "Search: " + topic + " guides",
		URL:         "https://duckduckgo.com/?q=" + query + "+tutorial+guide",
		Description: "Click to search for articles and guides",
		Platform:    "duckduckgo",
		IsFallback:  true,
	}
}
