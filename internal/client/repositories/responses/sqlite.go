package responses

import (
	"context"
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

func (r *SQLiteRepository) Upsert(ctx context.Context, resp *models.Response) error {
	query := ` INSERT INTO responses (key, client_id, question_id, score, comment,
				requires_comment, is_flagged, question_type, max_score, updated_at)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET score = excluded.score,
				comment = excluded.comment,
				requires_comment = excluded.requires_comment,
				is_flagged = excluded.is_flagged,
				question_type = excluded.question_type,
				max_score = excluded.max_score,
				updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		resp.Key(), resp.ClientID, resp.QuestionID, resp.Score, resp.Comment,
		resp.RequiresComment, resp.IsFlagged, resp.QuestionType, resp.MaxScore, resp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert response: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListByDraft(ctx context.Context, clientID string) ([]models.Response, error) {
	query := `select client_id, question_id, score, comment, requires_comment,
				is_flagged, question_type, max_score, updated_at
			from responses where client_id=? order by question_id`
	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to select responses: %w", err)
	}
	defer rows.Close()

	var result []models.Response
	for rows.Next() {
		var item models.Response
		if err := rows.Scan(&item.ClientID, &item.QuestionID, &item.Score, &item.Comment,
			&item.RequiresComment, &item.IsFlagged, &item.QuestionType, &item.MaxScore,
			&item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListKeysByDraft(ctx context.Context, clientID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `select key from responses where client_id=?`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to select response keys: %w", err)
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

func (r *SQLiteRepository) DeleteKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	_, err := r.db.ExecContext(ctx, `delete from responses where key in (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to delete responses: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByDraft(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx, `delete from responses where client_id=?`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete draft responses: %w", err)
	}
	return nil
}
