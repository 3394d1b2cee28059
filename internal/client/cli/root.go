package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) getStatus() string {
	s := string(a.currentMode())
	if a.draftID != "" {
		s = s + " " + shortID(a.draftID)
	}
	return fmt.Sprintf("(%s)", s)
}

// Root seeds the catalog, starts the connectivity watcher and runs the REPL
// until the user exits.
func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to liftaudit CLI (type 'help' for commands)")

	if err := a.catalog.Refresh(ctx); err != nil {
		log.Printf("catalog refresh: %s", err.Error())
	}

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
