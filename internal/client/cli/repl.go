package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	hasDraft() bool
	ListDrafts(ctx context.Context) error
	NewDraft(ctx context.Context) error
	OpenDraft(ctx context.Context, id string) error
	Info(ctx context.Context) error
	Score(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error
	Attach(ctx context.Context, args []string) error
	Detach(ctx context.Context, args []string) error
	Show(ctx context.Context) error
	Save(ctx context.Context) error
	Sync(ctx context.Context) error
	Refresh(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a read–eval–print loop for the liftaudit CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Always:
//	  - help           show available commands
//	  - list           list local draft audits
//	  - new            create a draft and open it
//	  - open <id>      open a draft by (prefix of) its id
//	  - sync           push local drafts to the server
//	  - refresh        refresh the catalog cache
//	  - status         connectivity and queue overview
//	  - exit | quit    leave the program
//
//	With an open draft:
//	  - info                     edit object info
//	  - score <q> <n|->         set or clear a question score
//	  - comment <q> <text>      set a question comment
//	  - attach <q> <file>       attach a photo
//	  - detach <q> <id>         remove an attachment
//	  - show                    print the checklist state
//	  - save                    validate and save the draft
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("audit %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.hasDraft() {
				printlnFn("Available commands: list, new, open, info, score, comment, attach, detach, show, save, sync, refresh, status, exit")
			} else {
				printlnFn("Available commands: list, new, open, sync, refresh, status, exit")
			}
		case "list":
			err = a.ListDrafts(ctx)
		case "new":
			err = a.NewDraft(ctx)
		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <draft id>")
				continue
			}
			err = a.OpenDraft(ctx, args[0])
		case "info":
			err = a.Info(ctx)
		case "score":
			err = a.Score(ctx, args)
		case "comment":
			err = a.Comment(ctx, args)
		case "attach":
			err = a.Attach(ctx, args)
		case "detach":
			err = a.Detach(ctx, args)
		case "show":
			err = a.Show(ctx)
		case "save":
			err = a.Save(ctx)
		case "sync":
			err = a.Sync(ctx)
		case "refresh":
			err = a.Refresh(ctx)
		case "status":
			err = a.Status(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
