package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/liftaudit/internal/client/client"
	"github.com/dmitrijs2005/liftaudit/internal/client/config"
	"github.com/dmitrijs2005/liftaudit/internal/client/models"
	"github.com/dmitrijs2005/liftaudit/internal/client/services"
	"github.com/dmitrijs2005/liftaudit/internal/client/store"
	"github.com/dmitrijs2005/liftaudit/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config    *config.Config
	log       logging.Logger
	st        *store.Store
	api       client.API
	catalog   *services.CatalogCache
	engine    *services.SyncEngine
	structure *models.ChecklistStructure

	// Active editing session; nil until a draft is opened.
	draftID string
	form    *services.ChecklistForm
	binder  *services.Binder

	reader *bufio.Reader

	// mode is written by the status watcher goroutine and read by the REPL.
	modeMu sync.Mutex
	mode   Mode
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	st, err := store.Open(ctx, c.DatabaseFile)
	if err != nil {
		log.Printf("error opening database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(c.ServerBaseURL, c.SyncPath, c.SnapshotPath, c.CSRFCookieName)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	structure, err := loadChecklist(c.ChecklistFile)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &App{
		config:    c,
		log:       logger,
		st:        st,
		api:       apiClient,
		catalog:   services.NewCatalogCache(st, apiClient, logger),
		engine:    services.NewSyncEngine(st, apiClient, logger),
		structure: structure,
		reader:    bufio.NewReader(os.Stdin),
		mode:      ModeOffline,
	}, nil
}

// loadChecklist reads the checklist structure from a local JSON file. A
// missing file yields an empty structure: the catalog and sync commands
// still work, only checklist editing is unavailable.
func loadChecklist(path string) (*models.ChecklistStructure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &models.ChecklistStructure{}, nil
		}
		return nil, err
	}
	var s models.ChecklistStructure
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) currentMode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) Run(ctx context.Context) {
	defer a.st.Close()
	a.Root(ctx)
}

func (a *App) hasDraft() bool {
	return a.binder != nil
}

// StartOnlineStatusWatcher probes server reachability on a fixed interval and
// flips the mode indicator accordingly.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.api.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
