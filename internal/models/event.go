package models

import "time"

// Event types published on the in-process event stream
const (
	EventItemIngested  = "item.ingested"
	EventItemDeleted   = "item.deleted"
	EventIndexRebuilt  = "index.rebuilt"
	EventQueryAnswered = "query.answered"
)

// Event is one notification pushed to connected websocket clients
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
