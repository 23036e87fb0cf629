package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Router selects the best provider based on task type and availability.
type Router struct {
	providers  map[string]Provider
	fallback   []string // ordered fallback chain
	taskModels map[TaskType]string
	usage      *UsageTracker
	mu         sync.RWMutex
}

// NewRouter creates a new AI router.
func NewRouter() *Router {
	return &Router{
		providers:  make(map[string]Provider),
		taskModels: make(map[TaskType]string),
	}
}

// Register adds a provider to the router.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
	r.fallback = append(r.fallback, name)
}

// PinModel routes all requests for a task type to a specific model unless
// the request names one itself.
func (r *Router) PinModel(task TaskType, model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.taskModels[task] = model
}

// SetUsageTracker enables token accounting for completed requests.
func (r *Router) SetUsageTracker(tracker *UsageTracker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage = tracker
}

// Complete routes a request to the best available provider.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if req.Model == "" {
		req.Model = r.taskModels[req.Task]
	}

	// Try each provider in fallback order.
	for _, name := range r.fallback {
		provider := r.providers[name]

		resp, err := provider.Complete(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return CompletionResponse{}, ctx.Err()
			}
			slog.Warn("AI provider failed, trying next",
				"provider", name,
				"task", req.Task.String(),
				"error", err,
			)
			continue
		}

		if r.usage != nil {
			r.usage.Record(req.Task, resp.TotalTokens())
		}
		slog.Debug("AI request completed",
			"provider", name,
			"task", req.Task.String(),
			"model", resp.Model,
			"input_tokens", resp.InputTokens,
			"output_tokens", resp.OutputTokens,
		)
		return resp, nil
	}

	return CompletionResponse{}, fmt.Errorf("all AI providers failed")
}

// HasProvider returns true if at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}
