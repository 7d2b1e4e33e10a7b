package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// localIDPrefix marks identifiers assigned on this device before the server
// has allocated a real ID. The prefix is a storage convention only; code
// should branch on EntryID.IsLocal, never on the raw string.
const localIDPrefix = "TEMP-"

// EntryID is a two-namespace entry identifier: either a locally generated
// temporary ID or a server-assigned one. A local ID can address cached state
// and queue entries but can never be rendered for the remote service;
// Remote() refuses it.
type EntryID struct {
	value string
	local bool
}

// NewLocalID returns a fresh temporary identifier.
func NewLocalID() EntryID {
	return EntryID{value: localIDPrefix + uuid.NewString(), local: true}
}

// RemoteID wraps a server-assigned identifier.
func RemoteID(id string) EntryID {
	return EntryID{value: id}
}

// ParseEntryID reconstructs an EntryID from its stored string form.
func ParseEntryID(s string) EntryID {
	if strings.HasPrefix(s, localIDPrefix) {
		return EntryID{value: s, local: true}
	}
	return EntryID{value: s}
}

// IsLocal reports whether the ID is a device-assigned temporary one.
func (id EntryID) IsLocal() bool { return id.local }

// IsZero reports whether the ID is unset.
func (id EntryID) IsZero() bool { return id.value == "" }

// String returns the storage form, valid as a local-store key for both
// namespaces.
func (id EntryID) String() string { return id.value }

// Remote returns the server-assigned identifier, or an error when the ID is
// still temporary.
func (id EntryID) Remote() (string, error) {
	if id.local {
		return "", fmt.Errorf("temporary id %q cannot be sent to the remote service", id.value)
	}
	if id.value == "" {
		return "", fmt.Errorf("empty entry id")
	}
	return id.value, nil
}

func (id EntryID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

func (id *EntryID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*id = ParseEntryID(s)
	return nil
}
