package cli

import (
	"context"
	"fmt"
)

func (a *App) delete(ctx context.Context, id string) {
	entry, err := a.entries.Get(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %s (%s)?", entry.FullName(), folioLabel(entry)), a.out)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return
	}

	if err := a.entries.Delete(ctx, id); err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	fmt.Fprintln(a.out, "Deleted.")
	a.drainIfOnline(ctx)
}
