// Package models defines the data shapes shared by the local store, the
// mutation queue and the remote registry client.
package models

import (
	"strings"
	"time"

	"github.com/emezab/registro/internal/textx"
)

// SyncStatus tags a locally cached entry with its relation to the remote
// authoritative copy.
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusFailed  SyncStatus = "failed"
)

// EntryData carries the user-editable fields of an affiliate entry. JSON tags
// match the wire format of the registry API, which keeps the original Spanish
// field names.
type EntryData struct {
	Folio            string `json:"folio,omitempty"`
	FirstName        string `json:"nombre"`
	MiddleName       string `json:"segundoNombre,omitempty"`
	LastNames        string `json:"apellidos"`
	Phone            string `json:"telefono,omitempty"`
	ContactMethod    string `json:"metodoContacto,omitempty"`
	BirthDate        string `json:"fechaNacimiento,omitempty"`
	ElectoralSection string `json:"seccionElectoral,omitempty"`
	PollingPlace     string `json:"casilla,omitempty"`
	Zone             string `json:"zona,omitempty"`
	Role             string `json:"cargo,omitempty"`
	SupportNotes     string `json:"notasApoyos,omitempty"`
	Locality         string `json:"localidad,omitempty"`

	PortraitURL string `json:"selfieUrl,omitempty"`
	PortraitKey string `json:"selfieS3Key,omitempty"`
	FrontIDURL  string `json:"ineFrontUrl,omitempty"`
	FrontIDKey  string `json:"ineFrontS3Key,omitempty"`
	BackIDURL   string `json:"ineBackUrl,omitempty"`
	BackIDKey   string `json:"ineBackS3Key,omitempty"`
}

// FullName joins the present name parts with single spaces.
func (d *EntryData) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{d.FirstName, d.MiddleName, d.LastNames} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Entry is the server-side representation of an affiliate entry.
type Entry struct {
	EntryData
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LocalEntry is the locally cached copy of an Entry plus its sync state.
type LocalEntry struct {
	Entry
	SyncStatus SyncStatus `json:"syncStatus"`
}

// SearchText is the normalized folio + full name string stored alongside the
// cached entry for accent-insensitive substring search.
func (e *LocalEntry) SearchText() string {
	return textx.Normalize(e.Folio + " " + e.FullName())
}

// Attachments holds locally captured image blobs for one entry, keyed by the
// owning entry's (temporary or real) ID. A nil slot means "no change" on save
// and "absent" on load.
type Attachments struct {
	OwnerID  string
	FrontID  []byte
	BackID   []byte
	Portrait []byte
}

// Empty reports whether no slot carries data.
func (a *Attachments) Empty() bool {
	return a == nil || (a.FrontID == nil && a.BackID == nil && a.Portrait == nil)
}

// StorageStats reports per-collection record counts for the local store.
type StorageStats struct {
	Entries     int `json:"entriesCount"`
	Queue       int `json:"queueCount"`
	Attachments int `json:"photosCount"`
}
