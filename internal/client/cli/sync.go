package cli

import (
	"context"
	"fmt"
	"time"
)

func (a *App) sync(ctx context.Context) {
	res, err := a.coord.SyncNow(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	fmt.Fprintf(a.out, "Synced: %d ok, %d failed.\n", res.Succeeded, res.Failed)
}

func (a *App) retry(ctx context.Context) {
	n, err := a.coord.RetryFailed(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	if n == 0 {
		fmt.Fprintln(a.out, "Nothing to retry.")
		return
	}
	fmt.Fprintf(a.out, "Requeued %d failed items.\n", n)
}

func (a *App) status(ctx context.Context) {
	st, err := a.coord.Status(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	mode := "offline"
	if st.Online {
		mode = "online"
	}
	fmt.Fprintf(a.out, "Connection:     %s\n", mode)
	fmt.Fprintf(a.out, "Pending items:  %d\n", st.Pending)
	fmt.Fprintf(a.out, "Failed items:   %d\n", st.Failed)
	if st.LastSync.IsZero() {
		fmt.Fprintln(a.out, "Last sync:      never")
	} else {
		fmt.Fprintf(a.out, "Last sync:      %s\n", st.LastSync.Local().Format(time.RFC822))
	}
	fmt.Fprintf(a.out, "Local storage:  %d entries, %d queued, %d photo sets\n",
		st.Stats.Entries, st.Stats.Queue, st.Stats.Attachments)
	if st.Syncing && st.Progress != nil {
		fmt.Fprintf(a.out, "Syncing now:    %d/%d (%s)\n",
			st.Progress.Completed+st.Progress.Failed, st.Progress.Total, st.Progress.Current)
	}
}

func (a *App) showReferences(ctx context.Context) {
	locs, err := a.refs.Localities(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	fmt.Fprintln(a.out, "Localities:")
	for _, l := range locs {
		fmt.Fprintln(a.out, " ", l)
	}

	secs, err := a.refs.ElectoralSections(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	fmt.Fprintln(a.out, "Electoral sections:")
	for _, s := range secs {
		fmt.Fprintln(a.out, " ", s)
	}
}

// clearCache wipes the local database. This is the escape hatch for devices
// that run out of storage; queued unsynced work is lost, so it asks twice.
func (a *App) clearCache(ctx context.Context) {
	st, err := a.coord.Status(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	if st.Pending > 0 || st.Failed > 0 {
		fmt.Fprintf(a.out, "Warning: %d unsynced changes will be lost.\n", st.Pending+st.Failed)
	}

	ok, err := Confirm(a.reader, "Wipe the local cache?", a.out)
	if err != nil || !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return
	}

	if err := a.store.ClearAll(ctx); err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	fmt.Fprintln(a.out, "Local cache cleared.")
}
