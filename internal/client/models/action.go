package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionKind discriminates the queued mutation variants.
type ActionKind string

const (
	ActionCreate ActionKind = "CREATE"
	ActionUpdate ActionKind = "UPDATE"
	ActionDelete ActionKind = "DELETE"
)

// CreateAction creates a new entry. TempID is the local identifier the entry
// and its attachments are filed under until the server assigns a real one.
type CreateAction struct {
	TempID EntryID   `json:"tempId"`
	Data   EntryData `json:"data"`
}

// UpdateAction replaces an existing entry's fields. The target may still be a
// temporary ID when the update was captured before the owning create synced;
// the sync engine rewrites it once the real ID is known.
type UpdateAction struct {
	ID   EntryID   `json:"id"`
	Data EntryData `json:"data"`
}

// DeleteAction removes an entry.
type DeleteAction struct {
	ID EntryID `json:"id"`
}

// Action is a tagged union over the three mutation kinds. Exactly one of the
// pointers matching Kind is set; Validate enforces this on construction and
// after decoding.
type Action struct {
	Kind   ActionKind    `json:"kind"`
	Create *CreateAction `json:"create,omitempty"`
	Update *UpdateAction `json:"update,omitempty"`
	Delete *DeleteAction `json:"delete,omitempty"`
}

func NewCreateAction(tempID EntryID, data EntryData) Action {
	return Action{Kind: ActionCreate, Create: &CreateAction{TempID: tempID, Data: data}}
}

func NewUpdateAction(id EntryID, data EntryData) Action {
	return Action{Kind: ActionUpdate, Update: &UpdateAction{ID: id, Data: data}}
}

func NewDeleteAction(id EntryID) Action {
	return Action{Kind: ActionDelete, Delete: &DeleteAction{ID: id}}
}

// Validate checks that exactly the variant named by Kind is present.
func (a Action) Validate() error {
	set := 0
	if a.Create != nil {
		set++
	}
	if a.Update != nil {
		set++
	}
	if a.Delete != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("action must carry exactly one variant, got %d", set)
	}

	switch a.Kind {
	case ActionCreate:
		if a.Create == nil {
			return fmt.Errorf("kind %s without create payload", a.Kind)
		}
	case ActionUpdate:
		if a.Update == nil {
			return fmt.Errorf("kind %s without update payload", a.Kind)
		}
		if a.Update.ID.IsZero() {
			return fmt.Errorf("update action without target id")
		}
	case ActionDelete:
		if a.Delete == nil {
			return fmt.Errorf("kind %s without delete payload", a.Kind)
		}
		if a.Delete.ID.IsZero() {
			return fmt.Errorf("delete action without target id")
		}
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	return nil
}

// Label is the short human-readable description reported as sync progress.
func (a Action) Label() string {
	switch a.Kind {
	case ActionCreate:
		if name := a.Create.Data.FullName(); name != "" {
			return fmt.Sprintf("%s: %s", a.Kind, name)
		}
	case ActionUpdate:
		if name := a.Update.Data.FullName(); name != "" {
			return fmt.Sprintf("%s: %s", a.Kind, name)
		}
		return fmt.Sprintf("%s: %s", a.Kind, a.Update.ID)
	case ActionDelete:
		return fmt.Sprintf("%s: %s", a.Kind, a.Delete.ID)
	}
	return string(a.Kind)
}

// EncodeAction serializes a validated action to its queue payload form.
func EncodeAction(a Action) ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(a)
}

// DecodeAction parses a queue payload back into a validated action.
func DecodeAction(b []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(b, &a); err != nil {
		return Action{}, fmt.Errorf("decode queued action: %w", err)
	}
	if err := a.Validate(); err != nil {
		return Action{}, fmt.Errorf("decode queued action: %w", err)
	}
	return a, nil
}

// QueueStatus is the replay state of one queued action.
type QueueStatus string

const (
	QueuePending QueueStatus = "pending"
	QueueSyncing QueueStatus = "syncing"
	QueueFailed  QueueStatus = "failed"
)

// QueuedAction is one durable entry of the mutation queue.
type QueuedAction struct {
	ID         string
	Action     Action
	Status     QueueStatus
	RetryCount int
	CreatedAt  time.Time
}
