package additions

import (
	"context"
	"fmt"

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

const additionColumns = `local_id, type, client_id, address, entrance, notes,
	identifier, description, status, building_local_id, building_id, created_at`

func (r *SQLiteRepository) Create(ctx context.Context, a *models.CatalogAddition) error {
	query := ` INSERT INTO catalog_additions (` + additionColumns + `)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.LocalID, a.Type, a.ClientID, a.Address, a.Entrance, a.Notes,
		a.Identifier, a.Description, a.Status, a.BuildingLocalID, a.BuildingID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert catalog addition: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.CatalogAddition, error) {
	query := `select ` + additionColumns + ` from catalog_additions order by created_at, local_id`
	return r.list(ctx, query)
}

func (r *SQLiteRepository) ListByDraft(ctx context.Context, clientID string) ([]models.CatalogAddition, error) {
	query := `select ` + additionColumns + ` from catalog_additions where client_id=? order by created_at, local_id`
	return r.list(ctx, query, clientID)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.CatalogAddition, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select catalog additions: %w", err)
	}
	defer rows.Close()

	var result []models.CatalogAddition
	for rows.Next() {
		var item models.CatalogAddition
		if err := rows.Scan(&item.LocalID, &item.Type, &item.ClientID, &item.Address,
			&item.Entrance, &item.Notes, &item.Identifier, &item.Description, &item.Status,
			&item.BuildingLocalID, &item.BuildingID, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByDraft(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx, `delete from catalog_additions where client_id=?`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete draft additions: %w", err)
	}
	return nil
}
