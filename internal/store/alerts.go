package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
)

const alertSelect = `SELECT a.id, a.item_id, a.alert_type, a.message, a.created_at,
	a.acknowledged, a.acknowledged_at, a.acknowledged_by, i.name AS item_name
	FROM inventory_alerts a
	JOIN inventory_items i ON i.id = a.item_id`

func insertLowStockAlert(ctx context.Context, tx *sqlx.Tx, item *model.InventoryItem, ts time.Time) (*model.InventoryAlert, error) {
	alert := &model.InventoryAlert{
		ItemID:    item.ID,
		AlertType: model.AlertTypeLowStock,
		Message:   model.LowStockMessage(item),
		CreatedAt: ts,
		ItemName:  item.Name,
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO inventory_alerts (item_id, alert_type, message, created_at) VALUES (?, ?, ?, ?)`,
		alert.ItemID, alert.AlertType, alert.Message, alert.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating low stock alert: %w", err)
	}

	alert.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting alert id: %w", err)
	}
	return alert, nil
}

// ListAlerts returns inventory alerts, newest first. A nil acknowledged
// returns all alerts.
func ListAlerts(ctx context.Context, db *sqlx.DB, acknowledged *bool, page model.Page) ([]model.InventoryAlert, error) {
	query := alertSelect
	var args []any
	if acknowledged != nil {
		query += ` WHERE a.acknowledged = ?`
		args = append(args, *acknowledged)
	}
	query, args = paginate(query+` ORDER BY a.created_at DESC, a.id DESC`, args, page)

	var alerts []model.InventoryAlert
	if err := db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	return alerts, nil
}

// GetAlert returns an inventory alert by ID.
func GetAlert(ctx context.Context, db sqlx.QueryerContext, id int64) (*model.InventoryAlert, error) {
	var alert model.InventoryAlert
	err := sqlx.GetContext(ctx, db, &alert, alertSelect+` WHERE a.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting alert: %w", err)
	}
	return &alert, nil
}

// AcknowledgeAlert marks an alert as acknowledged by userID, which may be nil
// for an anonymous actor. Acknowledging an already acknowledged alert keeps
// the first acknowledgement.
func AcknowledgeAlert(ctx context.Context, db *sqlx.DB, id int64, userID *int64) (*model.InventoryAlert, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE inventory_alerts SET acknowledged = 1, acknowledged_at = ?, acknowledged_by = ?
		 WHERE id = ? AND acknowledged = 0`,
		now(), userID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("acknowledging alert: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("acknowledging alert: %w", err)
	} else if n == 0 {
		alert, err := GetAlert(ctx, db, id)
		if err != nil {
			return nil, err
		}
		if alert == nil {
			return nil, fmt.Errorf("acknowledging alert %d: %w", id, ErrNotFound)
		}
		return alert, nil
	}
	return GetAlert(ctx, db, id)
}
