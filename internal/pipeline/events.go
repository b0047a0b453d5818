package pipeline

import "fundamental-grader/internal/domain"

// EventType names a pipeline lifecycle event.
type EventType string

// EventType values, in emission order for a successful run.
const (
	EventRunStarted      EventType = "run_started"
	EventBaselinesBuilt  EventType = "baselines_built"
	EventCompaniesGraded EventType = "companies_graded"
	EventRatingsComposed EventType = "ratings_composed"
	EventRunCompleted    EventType = "run_completed"
	EventRunFailed       EventType = "run_failed"
)

// Event is one pipeline progress notification.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id"`
	DatasetID string         `json:"dataset_id"`
	Variant   domain.Variant `json:"variant"`
	At        int64          `json:"at"` // Unix ms

	Companies          int     `json:"companies,omitempty"`
	Issues             int     `json:"issues,omitempty"`
	UndefinedBaselines int     `json:"undefined_baselines,omitempty"`
	ElapsedMs          float64 `json:"elapsed_ms,omitempty"`
	Error              string  `json:"error,omitempty"`
}

// Observer receives pipeline events. Implementations must not block.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnEvent calls f(e).
func (f ObserverFunc) OnEvent(e Event) { f(e) }
