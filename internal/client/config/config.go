package config

import "time"

// Config holds runtime settings for the liftaudit CLI.
type Config struct {
	// ServerBaseURL is the scheme://host[:port] of the audit backend.
	ServerBaseURL string

	// DatabaseFile is the local SQLite database path.
	DatabaseFile string

	// SyncPath and SnapshotPath are the endpoint paths on the backend.
	SyncPath     string
	SnapshotPath string

	// CSRFCookieName is the cookie whose value is replayed as the CSRF header.
	CSRFCookieName string

	// ChecklistFile is a local JSON file holding the checklist structure.
	ChecklistFile string

	// Attachment limits, mirroring what the server enforces.
	MaxAttachmentsPerQuestion int
	MaxAttachmentsPerAudit    int
	MaxAttachmentBytes        int

	// OnlineCheckInterval is how often the client probes server reachability.
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000"
	c.DatabaseFile = "audits.db"
	c.SyncPath = "/audits/api/sync/"
	c.SnapshotPath = "/audits/api/snapshot/"
	c.CSRFCookieName = "csrftoken"
	c.ChecklistFile = "checklist.json"
	c.MaxAttachmentsPerQuestion = 10
	c.MaxAttachmentsPerAudit = 100
	c.MaxAttachmentBytes = 8 << 20
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
