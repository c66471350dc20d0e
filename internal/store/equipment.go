package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
)

const equipmentColumns = `id, name, type, status, last_maintenance, next_maintenance,
	time_remaining, COALESCE(notes, '') AS notes, COALESCE(image_mime, '') AS image_mime,
	created_at, updated_at`

// CreateEquipment inserts a new piece of equipment. A supplied last maintenance
// date schedules the next one.
func CreateEquipment(ctx context.Context, db *sqlx.DB, in model.EquipmentInput) (*model.Equipment, error) {
	e := in.Equipment()
	ts := now()

	result, err := db.ExecContext(ctx,
		`INSERT INTO equipment (name, type, status, last_maintenance, next_maintenance,
		                        time_remaining, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.Type, e.Status, e.LastMaintenance, e.NextMaintenance,
		e.TimeRemaining, nullString(e.Notes), ts, ts,
	)
	if err != nil {
		return nil, classify("creating equipment", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting equipment id: %w", err)
	}
	return GetEquipment(ctx, db, id)
}

// GetEquipment returns equipment by ID with its maintenance status.
func GetEquipment(ctx context.Context, db sqlx.QueryerContext, id int64) (*model.Equipment, error) {
	var e model.Equipment
	err := sqlx.GetContext(ctx, db, &e, `SELECT `+equipmentColumns+` FROM equipment WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting equipment: %w", err)
	}
	e.Derive(now())
	return &e, nil
}

// ListEquipment returns equipment matching the filter, ordered by name. The
// maintenance filter is applied after deriving each status.
func ListEquipment(ctx context.Context, db *sqlx.DB, f model.EquipmentFilter) ([]model.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY name, id`
	if f.Maintenance == "" {
		query, args = paginate(query, args, f.Page)
	}

	var list []model.Equipment
	if err := db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, fmt.Errorf("listing equipment: %w", err)
	}

	ts := now()
	for i := range list {
		list[i].Derive(ts)
	}
	if f.Maintenance == "" {
		return list, nil
	}

	filtered := list[:0]
	for _, e := range list {
		if e.MaintenanceStatus == f.Maintenance {
			filtered = append(filtered, e)
		}
	}
	return pageSlice(filtered, f.Page), nil
}

// UpdateEquipment applies a patch to equipment in one transaction.
func UpdateEquipment(ctx context.Context, db *sqlx.DB, id int64, patch model.EquipmentPatch) (*model.Equipment, error) {
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		e, err := GetEquipment(ctx, tx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("updating equipment %d: %w", id, ErrNotFound)
		}

		patch.Apply(e)

		_, err = tx.ExecContext(ctx,
			`UPDATE equipment SET name = ?, type = ?, status = ?, last_maintenance = ?,
			                      next_maintenance = ?, time_remaining = ?, notes = ?, updated_at = ?
			 WHERE id = ?`,
			e.Name, e.Type, e.Status, e.LastMaintenance,
			e.NextMaintenance, e.TimeRemaining, nullString(e.Notes), now(), id,
		)
		if err != nil {
			return classify("updating equipment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetEquipment(ctx, db, id)
}

// DeleteEquipment removes equipment.
func DeleteEquipment(ctx context.Context, db *sqlx.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM equipment WHERE id = ?`, id)
	if err != nil {
		return classify("deleting equipment", err)
	}
	return mustAffect("deleting equipment", result)
}

// SetEquipmentImage stores a processed photo for equipment.
func SetEquipmentImage(ctx context.Context, db *sqlx.DB, id int64, data []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE equipment SET image = ?, image_mime = ?, updated_at = ? WHERE id = ?`,
		data, mime, now(), id,
	)
	if err != nil {
		return fmt.Errorf("setting equipment image: %w", err)
	}
	return mustAffect("setting equipment image", result)
}

// GetEquipmentImage returns the stored photo of equipment. It returns nil data
// when the equipment has no photo and ErrNotFound when it does not exist.
func GetEquipmentImage(ctx context.Context, db *sqlx.DB, id int64) ([]byte, string, error) {
	var row struct {
		Image []byte         `db:"image"`
		Mime  sql.NullString `db:"image_mime"`
	}
	err := db.GetContext(ctx, &row, `SELECT image, image_mime FROM equipment WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("getting equipment image %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting equipment image: %w", err)
	}
	return row.Image, row.Mime.String, nil
}

// pageSlice applies p to an in-memory result.
func pageSlice[T any](items []T, p model.Page) []T {
	if p.Offset >= len(items) {
		return items[:0]
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}
