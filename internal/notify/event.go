// Package notify publishes draft events to companion tooling.
// Events are serialized as NDJSON and sent fire-and-forget over a local
// socket so that saving a draft never blocks the editor.
package notify

// DraftEvent is one draft lifecycle event. It is serialized to NDJSON
// and written to the companion socket.
type DraftEvent struct {
	// Version is the event format version (currently 1).
	Version int `json:"v"`

	// Type is the event type (e.g., "draft_saved").
	Type string `json:"type"`

	// Ts is the timestamp in Unix milliseconds.
	Ts int64 `json:"ts"`

	// DraftID identifies the draft.
	DraftID string `json:"draft_id"`

	// Title is the draft title at the time of the event.
	Title string `json:"title,omitempty"`

	// Words is the word count of the draft body.
	Words int `json:"words"`

	// Revision is the snapshot sequence number, when the save produced one.
	Revision int64 `json:"revision,omitempty"`

	// Origin labels what produced the snapshot: manual, assist, or revise.
	Origin string `json:"origin,omitempty"`
}

// EventType constants for the Type field.
const (
	EventTypeDraftSaved   = "draft_saved"
	EventTypeDraftDeleted = "draft_deleted"
)

// EventVersion is the current event format version.
const EventVersion = 1

// NewDraftEvent creates a new DraftEvent with default values.
func NewDraftEvent() *DraftEvent {
	return &DraftEvent{
		Version: EventVersion,
		Type:    EventTypeDraftSaved,
	}
}
