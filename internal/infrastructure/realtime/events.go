package realtime

import "encoding/json"

// Kind identifies a realtime event. Using a dedicated type instead of raw
// strings keeps dispatch sites checkable and the set of events in one place.
type Kind string

const (
	TaskCreated        Kind = "task:created"
	TaskUpdated        Kind = "task:updated"
	TaskDeleted        Kind = "task:deleted"
	MilestoneCreated   Kind = "milestone:created"
	MilestoneUpdated   Kind = "milestone:updated"
	MilestoneDeleted   Kind = "milestone:deleted"
	ActivityCreated    Kind = "activity:created"
	SuggestionCreated  Kind = "suggestion:created"
	SuggestionDeleted  Kind = "suggestion:deleted"
	CollectionCreated  Kind = "collection:created"
	CollectionUpdated  Kind = "collection:updated"
	CollectionDeleted  Kind = "collection:deleted"
	InboxCreated       Kind = "inbox:created"
	InboxUpdated       Kind = "inbox:updated"
	InboxDeleted       Kind = "inbox:deleted"
	MemoryCreated      Kind = "memory:created"
	MemoryUpdated      Kind = "memory:updated"
	MemoryDeleted      Kind = "memory:deleted"
	CoupleCoupled      Kind = "couple:coupled"
	CoupleUncoupled    Kind = "couple:uncoupled"
	PreferencesUpdated Kind = "preferences:updated"
)

// Envelope is the wire frame: {event, data}
type Envelope struct {
	Event Kind            `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handler receives the raw payload of one event
type Handler func(data json.RawMessage)
