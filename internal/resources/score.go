package resources

import (
	"sort"
	"strconv"
	"strings"

	"github.com/studysync/studysync/internal/path"
)

// ScoreVideo rates a video's educational quality from its title and
// duration. Tutorial keywords add 2 each, clickbait markers subtract 5, and
// the 5-20 minute range earns the full duration bonus.
func (p Policy) ScoreVideo(video path.Resource) float64 {
	score := 0.0
	title := strings.ToLower(video.Title)

	for _, keyword := range p.TutorialKeywords {
		if strings.Contains(title, keyword) {
			score += 2
		}
	}
	for _, keyword := range p.ClickbaitKeywords {
		if strings.Contains(title, keyword) {
			score -= 5
		}
	}
	score += durationScore(video.Duration)
	return score
}

func durationScore(duration string) float64 {
	parts := strings.Split(duration, ":")
	switch len(parts) {
	case 2: // MM:SS
		minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return 0
		}
		switch {
		case minutes >= 5 && minutes <= 20:
			return 3
		case minutes < 5:
			return 1
		case minutes > 30:
			return -1
		}
	case 3: // HH:MM:SS, too long for a session
		return -2
	}
	return 0
}

// ScoreArticle rates an article by source trust and title keywords. The
// first matching trusted domain contributes 10 minus its list position.
func (p Policy) ScoreArticle(article path.Resource) float64 {
	score := 0.0
	source := strings.ToLower(article.Source)
	title := strings.ToLower(article.Title)

	for i, domain := range p.TrustedDomains {
		if strings.Contains(source, domain) {
			score += float64(10 - i)
			break
		}
	}
	for _, keyword := range p.TutorialKeywords {
		if strings.Contains(title, keyword) {
			score += 2
		}
	}
	return score
}

// RankVideos scores and orders videos best-first. Ties keep their search
// order, so ranking is deterministic.
func (p Policy) RankVideos(videos []path.Resource) []path.Resource {
	return rank(videos, p.ScoreVideo)
}

// RankArticles scores and orders articles best-first.
func (p Policy) RankArticles(articles []path.Resource) []path.Resource {
	return rank(articles, p.ScoreArticle)
}

func rank(items []path.Resource, score func(path.Resource) float64) []path.Resource {
	ranked := make([]path.Resource, len(items))
	copy(ranked, items)
	for i := range ranked {
		ranked[i].QualityScore = score(ranked[i])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].QualityScore > ranked[j].QualityScore
	})
	return ranked
}
