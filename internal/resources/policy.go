// Package resources discovers and ranks external learning resources for
// study sessions: YouTube videos and web articles, scored for educational
// quality.
package resources

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the keyword and domain lists used for quality scoring.
// Operators can override the defaults with a YAML file.
type Policy struct {
	TutorialKeywords  []string `yaml:"tutorial_keywords"`
	ClickbaitKeywords []string `yaml:"clickbait_keywords"`
	TrustedDomains    []string `yaml:"trusted_domains"`
	ExcludedDomains   []string `yaml:"excluded_domains"`
}

// DefaultPolicy returns the built-in scoring lists. Trusted domains are
// ordered: earlier entries score higher.
func DefaultPolicy() Policy {
	return Policy{
		TutorialKeywords: []string{
			"tutorial", "explained", "learn", "beginner", "guide",
			"how to", "introduction", "basics",
		},
		ClickbaitKeywords: []string{
			"shocking", "you won't believe", "gone wrong", "funny",
			"compilation", "react",
		},
		TrustedDomains: []string{
			"freecodecamp.org",
			"dev.to",
			"medium.com",
			"realpython.com",
			"digitalocean.com",
			"geeksforgeeks.org",
			"tutorialspoint.com",
			"w3schools.com",
			"mdn.io",
			"developer.mozilla.org",
		},
		ExcludedDomains: []string{
			"wikipedia.org", "en.wikipedia.org", "simple.wikipedia.org",
			"youtube.com", "youtu.be",
		},
	}
}

// LoadPolicy reads a scoring policy from a YAML file. Empty lists in the
// file keep their defaults, so a partial override is fine.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("reading scoring policy: %w", err)
	}

	var loaded Policy
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Policy{}, fmt.Errorf("parsing scoring policy: %w", err)
	}

	if len(loaded.TutorialKeywords) > 0 {
		policy.TutorialKeywords = loaded.TutorialKeywords
	}
	if len(loaded.ClickbaitKeywords) > 0 {
		policy.ClickbaitKeywords = loaded.ClickbaitKeywords
	}
	if len(loaded.TrustedDomains) > 0 {
		policy.TrustedDomains = loaded.TrustedDomains
	}
	if len(loaded.ExcludedDomains) > 0 {
		policy.ExcludedDomains = loaded.ExcludedDomains
	}

	slog.Info("scoring policy loaded", "path", path,
		"trusted_domains", len(policy.TrustedDomains))
	return policy, nil
}
