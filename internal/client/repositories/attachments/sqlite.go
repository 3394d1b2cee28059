package attachments

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
	"github.com/dmitrijs2005/liftaudit/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert keeps an already-assigned offline UUID when the incoming record does
// not carry one, so retried flushes cannot erase the idempotency token.
func (r *SQLiteRepository) Upsert(ctx context.Context, a *models.Attachment) error {
	query := ` INSERT INTO attachments (key, client_id, local_id, question_id, name,
				size, mime_type, last_modified, data, offline_uuid, caption, created_at)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET question_id = excluded.question_id,
				name = excluded.name,
				size = excluded.size,
				mime_type = excluded.mime_type,
				last_modified = excluded.last_modified,
				data = excluded.data,
				offline_uuid = CASE WHEN excluded.offline_uuid != '' THEN excluded.offline_uuid ELSE attachments.offline_uuid END,
				caption = excluded.caption
	`
	_, err := r.db.ExecContext(ctx, query,
		a.Key(), a.ClientID, a.LocalID, a.QuestionID, a.Name,
		a.Size, a.MimeType, a.LastModified, a.Data, a.OfflineUUID, a.Caption, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert attachment: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListByDraft(ctx context.Context, clientID string) ([]models.Attachment, error) {
	query := `select client_id, local_id, question_id, name, size, mime_type,
				last_modified, data, offline_uuid, caption, created_at
			from attachments where client_id=? order by created_at, local_id`
	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	var result []models.Attachment
	for rows.Next() {
		var item models.Attachment
		// last_modified is nullable: rows written before the column carried a
		// value must still restore.
		var lastModified sql.NullTime
		if err := rows.Scan(&item.ClientID, &item.LocalID, &item.QuestionID, &item.Name,
			&item.Size, &item.MimeType, &lastModified, &item.Data, &item.OfflineUUID,
			&item.Caption, &item.CreatedAt); err != nil {
			return nil, err
		}
		if lastModified.Valid {
			item.LastModified = lastModified.Time
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListKeysByDraft(ctx context.Context, clientID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `select key from attachments where client_id=?`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachment keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// SetOfflineUUID expects exactly one row to be affected.
func (r *SQLiteRepository) SetOfflineUUID(ctx context.Context, key, offlineUUID string) error {
	res, err := r.db.ExecContext(ctx, `update attachments set offline_uuid=? where key=?`, offlineUUID, key)
	if err != nil {
		return fmt.Errorf("failed to set offline uuid: %w", err)
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

func (r *SQLiteRepository) DeleteKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	_, err := r.db.ExecContext(ctx, `delete from attachments where key in (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to delete attachments: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByDraft(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx, `delete from attachments where client_id=?`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete draft attachments: %w", err)
	}
	return nil
}
