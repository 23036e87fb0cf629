package path

import (
	"context"
	"sync"
	"time"
)

// Progress event types.
const (
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

// Pipeline phases reported in progress events.
const (
	PhaseProfiling   = "profiling"
	PhaseCurriculum  = "curriculum"
	PhaseScheduling  = "scheduling"
	PhaseResources   = "resources"
	PhaseAssessments = "assessments"
	PhaseComplete    = "complete"
	PhaseError       = "error"
)

// ProgressEvent is one update pushed by a pipeline stage.
type ProgressEvent struct {
	Type      string         `json:"type"`
	Phase     string         `json:"phase"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

const progressBufferSize = 100

// ProgressBus is a bounded event channel between pipeline stages and a
// stream consumer. Producers never block: when the buffer is full the oldest
// queued event is evicted, on the grounds that recent updates matter more.
// All methods are safe on a nil receiver, which acts as a discard sink.
type ProgressBus struct {
	mu    sync.Mutex
	queue chan ProgressEvent
	done  chan struct{}
	once  sync.Once
}

// NewProgressBus creates a bus with the default buffer capacity.
func NewProgressBus() *ProgressBus {
	return &ProgressBus{
		queue: make(chan ProgressEvent, progressBufferSize),
		done:  make(chan struct{}),
	}
}

// Emit publishes an event without blocking, evicting the oldest queued
// event if the buffer is full. Events emitted after Close are dropped.
func (b *ProgressBus) Emit(event ProgressEvent) {
	if b == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case <-b.done:
		return
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		select {
		case b.queue <- event:
			return
		default:
			// Buffer full: drop the oldest and retry.
			select {
			case <-b.queue:
			default:
			}
		}
	}
}

// Progress emits a progress event for the given phase.
func (b *ProgressBus) Progress(phase, message string, data map[string]any) {
	b.Emit(ProgressEvent{Type: EventProgress, Phase: phase, Message: message, Data: data})
}

// Complete emits the terminal success event.
func (b *ProgressBus) Complete(message string, data map[string]any) {
	b.Emit(ProgressEvent{Type: EventComplete, Phase: PhaseComplete, Message: message, Data: data})
}

// Error emits the terminal failure event.
func (b *ProgressBus) Error(message string, data map[string]any) {
	b.Emit(ProgressEvent{Type: EventError, Phase: PhaseError, Message: message, Data: data})
}

// Stream returns a channel yielding events in FIFO order. The channel is
// closed after a complete or error event has been delivered (inclusive),
// when the context is cancelled, or when the bus is closed.
func (b *ProgressBus) Stream(ctx context.Context) <-chan ProgressEvent {
	out := make(chan ProgressEvent)
	if b == nil {
		close(out)
		return out
	}
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.done:
				return
			case event := <-b.queue:
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
				if event.Type == EventComplete || event.Type == EventError {
					return
				}
			}
		}
	}()
	return out
}

// Close stops the bus. It is idempotent and makes in-flight Stream
// consumers terminate promptly even without a terminal event.
func (b *ProgressBus) Close() {
	if b == nil {
		return
	}
	b.once.Do(func() { close(b.done) })
}
