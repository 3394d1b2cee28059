package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
	"github.com/dmitrijs2005/liftaudit/internal/common"
	"github.com/dmitrijs2005/liftaudit/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const draftColumns = `client_id, elevator_id, building_id, object_info, planned_date,
	started_at, finished_at, status, sync_state, sync_error,
	attachment_count, has_checklist, created_at, updated_at`

// CreateOrUpdate upserts a draft by client_id. On conflict all mutable
// columns are updated; created_at keeps its original value.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, d *models.Draft) error {
	objectInfo, err := encodeObjectInfo(d.ObjectInfo)
	if err != nil {
		return fmt.Errorf("failed to encode object info: %w", err)
	}

	query := ` INSERT INTO drafts (` + draftColumns + `)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(client_id) DO UPDATE SET elevator_id = excluded.elevator_id,
				building_id = excluded.building_id,
				object_info = excluded.object_info,
				planned_date = excluded.planned_date,
				started_at = excluded.started_at,
				finished_at = excluded.finished_at,
				status = excluded.status,
				sync_state = excluded.sync_state,
				sync_error = excluded.sync_error,
				attachment_count = excluded.attachment_count,
				has_checklist = excluded.has_checklist,
				updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		d.ClientID, d.ElevatorID, d.BuildingID, objectInfo, d.PlannedDate,
		d.StartedAt, d.FinishedAt, d.Status, d.SyncState, d.SyncError,
		d.AttachmentCount, d.HasChecklist, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert draft: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByClientID(ctx context.Context, clientID string) (*models.Draft, error) {
	query := `select ` + draftColumns + ` from drafts where client_id=?`
	row := r.db.QueryRowContext(ctx, query, clientID)

	d, err := scanDraft(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select draft: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Draft, error) {
	query := `select ` + draftColumns + ` from drafts order by created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select drafts: %w", err)
	}
	defer rows.Close()

	var result []models.Draft
	for rows.Next() {
		d, err := scanDraft(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetAllUnsynced returns drafts awaiting reconciliation, oldest first.
func (r *SQLiteRepository) GetAllUnsynced(ctx context.Context) ([]*models.Draft, error) {
	query := `select ` + draftColumns + ` from drafts where sync_state != ? order by created_at`
	rows, err := r.db.QueryContext(ctx, query, models.SyncStateSynced)
	if err != nil {
		return nil, fmt.Errorf("failed to select unsynced drafts: %w", err)
	}
	defer rows.Close()

	var pending []*models.Draft
	for rows.Next() {
		d, err := scanDraft(rows.Scan)
		if err != nil {
			return nil, err
		}
		pending = append(pending, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}

// SetSyncState expects exactly one row to be affected.
func (r *SQLiteRepository) SetSyncState(ctx context.Context, clientID string, state models.SyncState, reason string) error {
	query := `update drafts set sync_state=?, sync_error=? where client_id=?`
	res, err := r.db.ExecContext(ctx, query, state, reason, clientID)
	if err != nil {
		return fmt.Errorf("failed to update sync state: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByClientID(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx, `delete from drafts where client_id=?`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func encodeObjectInfo(info map[string]any) (string, error) {
	if info == nil {
		return "{}", nil
	}
	b, err := json.Marshal(info)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func scanDraft(scan func(dest ...any) error) (*models.Draft, error) {
	d := &models.Draft{}
	var objectInfo string
	err := scan(&d.ClientID, &d.ElevatorID, &d.BuildingID, &objectInfo, &d.PlannedDate,
		&d.StartedAt, &d.FinishedAt, &d.Status, &d.SyncState, &d.SyncError,
		&d.AttachmentCount, &d.HasChecklist, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(objectInfo), &d.ObjectInfo); err != nil {
		return nil, fmt.Errorf("failed to decode object info: %w", err)
	}
	return d, nil
}
