package orchestrator

import (
	"sync"

	"github.com/mrz1836/forja/internal/domain"
)

// EventSink receives progress events and chat messages as they happen.
// Implementations must be safe for concurrent use.
type EventSink interface {
	Progress(ev domain.ProgressEvent)
	Message(msg domain.ChatMessage)
}

// NoopSink discards events.
type NoopSink struct{}

// Progress implements EventSink.
func (NoopSink) Progress(domain.ProgressEvent) {}

// Message implements EventSink.
func (NoopSink) Message(domain.ChatMessage) {}

// SinkFuncs adapts optional callbacks to EventSink.
type SinkFuncs struct {
	OnProgress func(domain.ProgressEvent)
	OnMessage  func(domain.ChatMessage)
}

// Progress implements EventSink.
func (s SinkFuncs) Progress(ev domain.ProgressEvent) {
	if s.OnProgress != nil {
		s.OnProgress(ev)
	}
}

// Message implements EventSink.
func (s SinkFuncs) Message(msg domain.ChatMessage) {
	if s.OnMessage != nil {
		s.OnMessage(msg)
	}
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu       sync.Mutex
	progress []domain.ProgressEvent
	messages []domain.ChatMessage
}

// Progress implements EventSink.
func (r *Recorder) Progress(ev domain.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, ev)
}

// Message implements EventSink.
func (r *Recorder) Message(msg domain.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Events returns copies of the recorded events.
func (r *Recorder) Events() ([]domain.ProgressEvent, []domain.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ProgressEvent(nil), r.progress...), append([]domain.ChatMessage(nil), r.messages...)
}

// teeSink forwards to several sinks in order.
type teeSink []EventSink

func (t teeSink) Progress(ev domain.ProgressEvent) {
	for _, s := range t {
		s.Progress(ev)
	}
}

func (t teeSink) Message(msg domain.ChatMessage) {
	for _, s := range t {
		s.Message(msg)
	}
}

var (
	_ EventSink = NoopSink{}
	_ EventSink = SinkFuncs{}
	_ EventSink = (*Recorder)(nil)
	_ EventSink = teeSink(nil)
)
