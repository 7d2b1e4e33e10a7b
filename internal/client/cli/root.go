package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Root runs the read-eval-print loop until EOF or an exit command.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Registro CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "registro %s> ", a.statusLine(ctx))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.help()
		case "list", "l":
			a.list(ctx)
		case "show":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: show <id>")
				continue
			}
			a.show(ctx, args[0])
		case "search":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: search <text>")
				continue
			}
			a.search(ctx, strings.Join(args, " "))
		case "add":
			a.add(ctx)
		case "update":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: update <id>")
				continue
			}
			a.update(ctx, args[0])
		case "delete":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: delete <id>")
				continue
			}
			a.delete(ctx, args[0])
		case "sync":
			a.sync(ctx)
		case "retry":
			a.retry(ctx)
		case "status":
			a.status(ctx)
		case "refs":
			a.showReferences(ctx)
		case "clear":
			a.clearCache(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Available commands:")
	fmt.Fprintln(a.out, "  (l)ist              list all entries")
	fmt.Fprintln(a.out, "  show <id>           show one entry")
	fmt.Fprintln(a.out, "  search <text>       search by folio or name")
	fmt.Fprintln(a.out, "  add                 capture a new entry")
	fmt.Fprintln(a.out, "  update <id>         edit an entry")
	fmt.Fprintln(a.out, "  delete <id>         delete an entry")
	fmt.Fprintln(a.out, "  sync                replay queued changes now")
	fmt.Fprintln(a.out, "  retry               retry failed queue items")
	fmt.Fprintln(a.out, "  status              show sync status and storage stats")
	fmt.Fprintln(a.out, "  refs                show locality and section lists")
	fmt.Fprintln(a.out, "  clear               wipe the local cache")
	fmt.Fprintln(a.out, "  exit                leave the program")
}
