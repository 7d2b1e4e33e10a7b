package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/emezab/registro/internal/client/models"
)

// promptEntryData walks the capture form. Existing values (for updates) are
// offered as defaults; empty input keeps them.
func (a *App) promptEntryData(existing *models.EntryData) (*models.EntryData, error) {
	data := &models.EntryData{}
	if existing != nil {
		*data = *existing
	}

	fields := []struct {
		prompt   string
		value    *string
		required bool
	}{
		{"First name (nombre)", &data.FirstName, true},
		{"Middle name", &data.MiddleName, false},
		{"Last names (apellidos)", &data.LastNames, true},
		{"Phone", &data.Phone, false},
		{"Contact method", &data.ContactMethod, false},
		{"Birth date (YYYY-MM-DD)", &data.BirthDate, false},
		{"Electoral section", &data.ElectoralSection, false},
		{"Polling place", &data.PollingPlace, false},
		{"Zone", &data.Zone, false},
		{"Role (cargo)", &data.Role, false},
		{"Support notes", &data.SupportNotes, false},
		{"Locality", &data.Locality, false},
	}

	for _, f := range fields {
		value, err := GetTextWithDefault(a.reader, f.prompt, *f.value, a.out)
		if err != nil {
			return nil, err
		}
		if f.required && value == "" {
			return nil, fmt.Errorf("%s is required", f.prompt)
		}
		*f.value = value
	}
	return data, nil
}

// promptAttachments asks for optional photo file paths and loads them.
func (a *App) promptAttachments() (*models.Attachments, error) {
	att := &models.Attachments{}

	slots := []struct {
		prompt string
		target *[]byte
	}{
		{"Path to ID front photo (empty to skip)", &att.FrontID},
		{"Path to ID back photo (empty to skip)", &att.BackID},
		{"Path to portrait photo (empty to skip)", &att.Portrait},
	}

	for _, s := range slots {
		path, err := GetSimpleText(a.reader, s.prompt, a.out)
		if err != nil {
			return nil, err
		}
		if path == "" {
			continue
		}
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		*s.target = blob
	}
	return att, nil
}

func (a *App) add(ctx context.Context) {
	data, err := a.promptEntryData(nil)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	att, err := a.promptAttachments()
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	local, err := a.entries.Create(ctx, data, att)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	fmt.Fprintf(a.out, "Saved %s as %s.\n", local.FullName(), local.ID)
	a.drainIfOnline(ctx)
}

func (a *App) update(ctx context.Context, id string) {
	existing, err := a.entries.Get(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	data, err := a.promptEntryData(&existing.EntryData)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	if _, err := a.entries.Update(ctx, id, data, nil); err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	fmt.Fprintf(a.out, "Updated %s.\n", id)
	a.drainIfOnline(ctx)
}

// drainIfOnline pushes queued work right away when the connection is up so
// captures made online reach the server without waiting for the ticker.
func (a *App) drainIfOnline(ctx context.Context) {
	if !a.coord.Online() {
		fmt.Fprintln(a.out, "Offline: change queued, will sync when the connection returns.")
		return
	}
	if _, err := a.coord.SyncNow(ctx); err != nil {
		a.log.Warn(ctx, "sync after capture failed", "error", err)
	}
}
