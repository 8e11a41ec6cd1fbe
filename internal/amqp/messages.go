package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Event kinds understood by the sync worker.
const (
	KindSync   = "sync"
	KindDelete = "delete"
)

// EntryEvent is the lightweight message published when an entry
// changes locally. It carries only the key and version; the worker
// reads the current entry from the repository, so a burst of edits
// collapses into one remote write.
type EntryEvent struct {
	Kind      string    `json:"kind"`
	Username  string    `json:"username"`
	Date      string    `json:"date"`
	Version   int64     `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSyncEvent(username, date string, version int64) *EntryEvent {
	return &EntryEvent{
		Kind:      KindSync,
		Username:  username,
		Date:      date,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func NewDeleteEvent(username, date string) *EntryEvent {
	return &EntryEvent{
		Kind:      KindDelete,
		Username:  username,
		Date:      date,
		Timestamp: time.Now(),
	}
}

func (e *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var e EntryEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Kind != KindSync && e.Kind != KindDelete {
		return nil, errors.New("unknown event kind: " + e.Kind)
	}
	if e.Username == "" || e.Date == "" {
		return nil, errors.New("event is missing username or date")
	}
	return &e, nil
}
