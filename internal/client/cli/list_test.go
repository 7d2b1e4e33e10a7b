package cli

import (
	"bytes"
	"testing"

	"github.com/emezab/registro/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func TestFolioLabel(t *testing.T) {
	assert.Equal(t, "000042", folioLabel(&models.LocalEntry{
		Entry: models.Entry{EntryData: models.EntryData{Folio: "000042"}},
	}))
	assert.Equal(t, "pendiente", folioLabel(&models.LocalEntry{}))
}

func TestStatusMark(t *testing.T) {
	assert.Equal(t, " ", statusMark(models.SyncStatusSynced))
	assert.Equal(t, "~", statusMark(models.SyncStatusPending))
	assert.Equal(t, "!", statusMark(models.SyncStatusFailed))
}

func TestPrintEntries(t *testing.T) {
	var out bytes.Buffer
	a := &App{out: &out}

	a.printEntries([]*models.LocalEntry{
		{
			Entry: models.Entry{EntryData: models.EntryData{
				Folio: "000042", FirstName: "Ana", LastNames: "García", Locality: "Centro",
			}},
			SyncStatus: models.SyncStatusSynced,
		},
		{
			Entry: models.Entry{EntryData: models.EntryData{
				FirstName: "Luis", LastNames: "Pérez",
			}},
			SyncStatus: models.SyncStatusPending,
		},
	})

	s := out.String()
	assert.Contains(t, s, "000042")
	assert.Contains(t, s, "Ana García")
	assert.Contains(t, s, "pendiente")
	assert.Contains(t, s, "~")
	assert.Contains(t, s, "2 entries")
}

func TestPrintEntries_Empty(t *testing.T) {
	var out bytes.Buffer
	a := &App{out: &out}

	a.printEntries(nil)
	assert.Contains(t, out.String(), "No entries.")
}
