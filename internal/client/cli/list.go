package cli

import (
	"context"
	"fmt"

	"github.com/emezab/registro/internal/client/models"
)

// folioLabel renders the folio column; entries captured offline have no
// folio until their create replays.
func folioLabel(e *models.LocalEntry) string {
	if e.Folio == "" {
		return "pendiente"
	}
	return e.Folio
}

func statusMark(s models.SyncStatus) string {
	switch s {
	case models.SyncStatusPending:
		return "~"
	case models.SyncStatusFailed:
		return "!"
	default:
		return " "
	}
}

func (a *App) printEntries(entries []*models.LocalEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No entries.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "%s %-9s  %-30s  %s\n",
			statusMark(e.SyncStatus), folioLabel(e), e.FullName(), e.Locality)
	}
	fmt.Fprintf(a.out, "%d entries ('~' pending sync, '!' failed)\n", len(entries))
}

func (a *App) list(ctx context.Context) {
	entries, err := a.entries.List(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	a.printEntries(entries)
}

func (a *App) search(ctx context.Context, query string) {
	entries, err := a.entries.Search(ctx, query)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	a.printEntries(entries)
}

func (a *App) show(ctx context.Context, id string) {
	e, err := a.entries.Get(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	fmt.Fprintf(a.out, "ID:               %s\n", e.ID)
	fmt.Fprintf(a.out, "Folio:            %s\n", folioLabel(e))
	fmt.Fprintf(a.out, "Name:             %s\n", e.FullName())
	fmt.Fprintf(a.out, "Phone:            %s\n", e.Phone)
	fmt.Fprintf(a.out, "Contact method:   %s\n", e.ContactMethod)
	fmt.Fprintf(a.out, "Birth date:       %s\n", e.BirthDate)
	fmt.Fprintf(a.out, "Section:          %s\n", e.ElectoralSection)
	fmt.Fprintf(a.out, "Polling place:    %s\n", e.PollingPlace)
	fmt.Fprintf(a.out, "Zone:             %s\n", e.Zone)
	fmt.Fprintf(a.out, "Role:             %s\n", e.Role)
	fmt.Fprintf(a.out, "Locality:         %s\n", e.Locality)
	fmt.Fprintf(a.out, "Support notes:    %s\n", e.SupportNotes)
	fmt.Fprintf(a.out, "Sync status:      %s\n", e.SyncStatus)
	if e.PortraitURL != "" {
		fmt.Fprintf(a.out, "Portrait:         %s\n", e.PortraitURL)
	}
	if e.FrontIDURL != "" {
		fmt.Fprintf(a.out, "ID front:         %s\n", e.FrontIDURL)
	}
	if e.BackIDURL != "" {
		fmt.Fprintf(a.out, "ID back:          %s\n", e.BackIDURL)
	}

	att, err := a.entries.Attachments(ctx, e.ID)
	if err == nil && !att.Empty() {
		fmt.Fprintln(a.out, "Local photos awaiting upload:")
		if att.FrontID != nil {
			fmt.Fprintf(a.out, "  ID front (%d bytes)\n", len(att.FrontID))
		}
		if att.BackID != nil {
			fmt.Fprintf(a.out, "  ID back (%d bytes)\n", len(att.BackID))
		}
		if att.Portrait != nil {
			fmt.Fprintf(a.out, "  portrait (%d bytes)\n", len(att.Portrait))
		}
	}
}
