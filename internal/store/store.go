// Package store persists learning paths and quiz submissions.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studysync/studysync/internal/path"
)

// Submission is one graded quiz attempt.
type Submission struct {
	ID             string    `json:"id"`
	PathID         string    `json:"path_id"`
	ModuleID       string    `json:"module_id"`
	Score          float64   `json:"score"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	Passed         bool      `json:"passed"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// PathStore persists learning paths, session completion and quiz history.
type PathStore interface {
	CreatePath(lp path.LearningPath) (string, error)
	GetPath(id string) (*path.LearningPath, error)
	ListPaths() ([]path.LearningPath, error)
	CompleteSession(pathID, sessionID string) (*path.LearningPath, error)
	RecordSubmission(sub Submission) (string, error)
	ListSubmissions(pathID string) ([]Submission, error)
}

// MemoryStore is an in-memory PathStore for development and tests.
type MemoryStore struct {
	paths       map[string]*path.LearningPath
	created     map[string]time.Time
	submissions map[string][]Submission
	mu          sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		paths:       make(map[string]*path.LearningPath),
		created:     make(map[string]time.Time),
		submissions: make(map[string][]Submission),
	}
}

func (s *MemoryStore) CreatePath(lp path.LearningPath) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	lp.ID = id
	if lp.Status == "" {
		lp.Status = "active"
	}
	s.paths[id] = &lp
	s.created[id] = time.Now()
	return id, nil
}

func (s *MemoryStore) GetPath(id string) (*path.LearningPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lp, ok := s.paths[id]
	if !ok {
		return nil, fmt.Errorf("learning path not found: %s", id)
	}
	copied := *lp
	return &copied, nil
}

func (s *MemoryStore) ListPaths() ([]path.LearningPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]path.LearningPath, 0, len(s.paths))
	for _, lp := range s.paths {
		paths = append(paths, *lp)
	}
	// Newest first.
	sort.SliceStable(paths, func(i, j int) bool {
		return s.created[paths[i].ID].After(s.created[paths[j].ID])
	})
	return paths, nil
}

// CompleteSession marks one session done and recomputes progress counters.
// The path flips to completed when every session is done.
func (s *MemoryStore) CompleteSession(pathID, sessionID string) (*path.LearningPath, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lp, ok := s.paths[pathID]
	if !ok {
		return nil, fmt.Errorf("learning path not found: %s", pathID)
	}

	found := false
	for i := range lp.Schedule {
		if lp.Schedule[i].SessionID == sessionID {
			lp.Schedule[i].Completed = true
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	recomputeProgress(lp)
	copied := *lp
	return &copied, nil
}

func (s *MemoryStore) RecordSubmission(sub Submission) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.paths[sub.PathID]; !ok {
		return "", fmt.Errorf("learning path not found: %s", sub.PathID)
	}
	sub.ID = uuid.NewString()
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	s.submissions[sub.PathID] = append(s.submissions[sub.PathID], sub)
	return sub.ID, nil
}

func (s *MemoryStore) ListSubmissions(pathID string) ([]Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := s.submissions[pathID]
	out := make([]Submission, len(subs))
	copy(out, subs)
	return out, nil
}

// recomputeProgress refreshes the counters from session state. A module
// counts as completed once all of its sessions are.
func recomputeProgress(lp *path.LearningPath) {
	sessionsDone := 0
	moduleTotal := make(map[string]int)
	moduleDone := make(map[string]int)
	for _, session := range lp.Schedule {
		moduleTotal[session.ModuleID]++
		if session.Completed {
			sessionsDone++
			moduleDone[session.ModuleID]++
		}
	}

	modulesDone := 0
	for id, total := range moduleTotal {
		if total > 0 && moduleDone[id] == total {
			modulesDone++
		}
	}

	lp.Progress.SessionsCompleted = sessionsDone
	lp.Progress.ModulesCompleted = modulesDone
	lp.Progress.TotalSessions = len(lp.Schedule)
	lp.Progress.TotalModules = len(lp.Curriculum.Modules)

	if len(lp.Schedule) > 0 && sessionsDone == len(lp.Schedule) {
		lp.Status = "completed"
	}
}
