// Package cli provides the interactive liftaudit command-line client.
//
// It wires configuration, the local SQLite store, the HTTP API client and an
// interactive REPL that supports online/offline operation. Typical flow:
// open or create a draft, fill in object info and checklist answers (all
// persisted locally as you type), then sync when connectivity allows.
//
// Key features:
//   - List / create / open draft audits
//   - Edit object info, including offline building/elevator additions
//   - Score questions, add comments and photo attachments
//   - Sync with the server and refresh the catalog cache
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
