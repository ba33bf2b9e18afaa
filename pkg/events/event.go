package events

import "time"

// Event defines the contract for all operational events the bot emits.
type Event interface {
	// EventType returns the unique code for this event (e.g. "CORPUS_UPDATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type codes.
const (
	TypeCorpusUpdated        = "CORPUS_UPDATED"
	TypeClassifierRetrained  = "CLASSIFIER_RETRAINED"
	TypeAcquisitionStarted   = "ACQUISITION_STARTED"
	TypeAcquisitionCompleted = "ACQUISITION_COMPLETED"
)

// BaseEvent is the common implementation used by the constructors below.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewCorpusUpdated fires when a stored answer record is created or changed.
func NewCorpusUpdated(label string) Event {
	return BaseEvent{
		Type:       TypeCorpusUpdated,
		Data:       map[string]interface{}{"label": label},
		OccurredAt: time.Now(),
	}
}

// NewClassifierRetrained fires after a retrain swapped in a fresh model.
func NewClassifierRetrained(records int) Event {
	return BaseEvent{
		Type:       TypeClassifierRetrained,
		Data:       map[string]interface{}{"records": records},
		OccurredAt: time.Now(),
	}
}

// NewAcquisitionStarted fires when the community is asked for an answer.
func NewAcquisitionStarted(id, kind string) Event {
	return BaseEvent{
		Type:       TypeAcquisitionStarted,
		Data:       map[string]interface{}{"id": id, "kind": kind},
		OccurredAt: time.Now(),
	}
}

// NewAcquisitionCompleted fires when a community answer was folded into the
// corpus.
func NewAcquisitionCompleted(id, label string) Event {
	return BaseEvent{
		Type:       TypeAcquisitionCompleted,
		Data:       map[string]interface{}{"id": id, "label": label},
		OccurredAt: time.Now(),
	}
}
