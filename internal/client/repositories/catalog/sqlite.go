package catalog

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

// SQLiteRepository implements Repository. Unlike the other repositories it
// holds the *sql.DB itself: ReplaceAll spans several statements that must
// commit or roll back as one unit.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// ReplaceAll clears and refills buildings, elevators and object fields inside
// a single transaction. Clearing only happens here, after the caller has
// fully decoded the new payload, so no partial snapshot is ever persisted.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, snap *models.Snapshot) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range []string{"buildings", "elevators", "object_fields"} {
			if _, err := tx.ExecContext(ctx, `delete from `+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		for _, b := range snap.Buildings {
			_, err := tx.ExecContext(ctx, ` INSERT INTO buildings (id, address, entrance, notes, label, review_status)
					values (?, ?, ?, ?, ?, ?)`,
				b.ID, b.Address, b.Entrance, b.Notes, b.Label, b.ReviewStatus)
			if err != nil {
				return fmt.Errorf("failed to insert building: %w", err)
			}
		}

		for _, e := range snap.Elevators {
			_, err := tx.ExecContext(ctx, ` INSERT INTO elevators (id, building_id, identifier, description, status, label, building_label, review_status)
					values (?, ?, ?, ?, ?, ?, ?, ?)`,
				e.ID, e.BuildingID, e.Identifier, e.Description, e.Status, e.Label, e.BuildingLabel, e.ReviewStatus)
			if err != nil {
				return fmt.Errorf("failed to insert elevator: %w", err)
			}
		}

		for _, f := range snap.ObjectFields {
			choices, err := json.Marshal(f.Choices)
			if err != nil {
				return fmt.Errorf("failed to encode field choices: %w", err)
			}
			_, err = tx.ExecContext(ctx, ` INSERT INTO object_fields (code, label, field_type, is_required, ord, choices)
					values (?, ?, ?, ?, ?, ?)`,
				f.Code, f.Label, f.FieldType, f.IsRequired, f.Order, string(choices))
			if err != nil {
				return fmt.Errorf("failed to insert object field: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx, ` INSERT INTO metadata (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			common.MetaKeySnapshotGenerated, []byte(snap.GeneratedAt))
		if err != nil {
			return fmt.Errorf("failed to store generation timestamp: %w", err)
		}

		return nil
	})
}

func (r *SQLiteRepository) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`select (select count(*) from buildings) + (select count(*) from elevators) + (select count(*) from object_fields)`,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count catalog records: %w", err)
	}
	return n == 0, nil
}

func (r *SQLiteRepository) ListBuildings(ctx context.Context) ([]models.Building, error) {
	rows, err := r.db.QueryContext(ctx,
		`select id, address, entrance, notes, label, review_status from buildings order by rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select buildings: %w", err)
	}
	defer rows.Close()

	var result []models.Building
	for rows.Next() {
		var item models.Building
		if err := rows.Scan(&item.ID, &item.Address, &item.Entrance, &item.Notes,
			&item.Label, &item.ReviewStatus); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListElevatorsByBuilding(ctx context.Context, buildingID int64) ([]models.Elevator, error) {
	rows, err := r.db.QueryContext(ctx,
		`select id, building_id, identifier, description, status, label, building_label, review_status
			from elevators where building_id=? order by rowid`, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to select elevators: %w", err)
	}
	defer rows.Close()

	var result []models.Elevator
	for rows.Next() {
		var item models.Elevator
		if err := rows.Scan(&item.ID, &item.BuildingID, &item.Identifier, &item.Description,
			&item.Status, &item.Label, &item.BuildingLabel, &item.ReviewStatus); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetElevator(ctx context.Context, id int64) (*models.Elevator, error) {
	row := r.db.QueryRowContext(ctx,
		`select id, building_id, identifier, description, status, label, building_label, review_status
			from elevators where id=?`, id)

	e := &models.Elevator{}
	err := row.Scan(&e.ID, &e.BuildingID, &e.Identifier, &e.Description,
		&e.Status, &e.Label, &e.BuildingLabel, &e.ReviewStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select elevator: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListFields(ctx context.Context) ([]models.ObjectInfoField, error) {
	rows, err := r.db.QueryContext(ctx,
		`select code, label, field_type, is_required, ord, choices from object_fields order by ord, label`)
	if err != nil {
		return nil, fmt.Errorf("failed to select object fields: %w", err)
	}
	defer rows.Close()

	var result []models.ObjectInfoField
	for rows.Next() {
		var item models.ObjectInfoField
		var choices string
		if err := rows.Scan(&item.Code, &item.Label, &item.FieldType, &item.IsRequired,
			&item.Order, &choices); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(choices), &item.Choices); err != nil {
			return nil, fmt.Errorf("failed to decode field choices: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Generation(ctx context.Context) (string, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`select value from metadata where key=?`, common.MetaKeySnapshotGenerated).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get generation timestamp: %w", err)
	}
	return string(value), nil
}
