package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/liftaudit/internal/flagx"
	"github.com/dmitrijs2005/liftaudit/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL             string         `json:"server_base_url"`
	DatabaseFile              string         `json:"database_file"`
	SyncPath                  string         `json:"sync_path"`
	SnapshotPath              string         `json:"snapshot_path"`
	CSRFCookieName            string         `json:"csrf_cookie_name"`
	ChecklistFile             string         `json:"checklist_file"`
	MaxAttachmentsPerQuestion int            `json:"max_attachments_per_question"`
	MaxAttachmentsPerAudit    int            `json:"max_attachments_per_audit"`
	MaxAttachmentBytes        int            `json:"max_attachment_bytes"`
	OnlineCheckInterval       timex.Duration `json:"online_check_interval"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. No flag means no JSON. Read or unmarshal errors panic; the
// file was explicitly requested, so a silent fallback would hide a typo.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabaseFile != "" {
		cfg.DatabaseFile = jc.DatabaseFile
	}
	if jc.SyncPath != "" {
		cfg.SyncPath = jc.SyncPath
	}
	if jc.SnapshotPath != "" {
		cfg.SnapshotPath = jc.SnapshotPath
	}
	if jc.CSRFCookieName != "" {
		cfg.CSRFCookieName = jc.CSRFCookieName
	}
	if jc.ChecklistFile != "" {
		cfg.ChecklistFile = jc.ChecklistFile
	}
	if jc.MaxAttachmentsPerQuestion != 0 {
		cfg.MaxAttachmentsPerQuestion = jc.MaxAttachmentsPerQuestion
	}
	if jc.MaxAttachmentsPerAudit != 0 {
		cfg.MaxAttachmentsPerAudit = jc.MaxAttachmentsPerAudit
	}
	if jc.MaxAttachmentBytes != 0 {
		cfg.MaxAttachmentBytes = jc.MaxAttachmentBytes
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
}
