package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
)

const inventoryColumns = `id, name, category, unit, quantity, minimum_level, unit_cost,
	COALESCE(location, '') AS location, COALESCE(supplier, '') AS supplier,
	last_restocked, COALESCE(notes, '') AS notes, created_at, updated_at`

// stockStatusClause filters on the derived stock status in SQL so pagination
// stays correct. It must agree with model.StockStatus.
var stockStatusClause = map[string]string{
	model.StockCritical: `quantity <= minimum_level * 0.5`,
	model.StockLow:      `quantity <= minimum_level AND quantity > minimum_level * 0.5`,
	model.StockOK:       `quantity > minimum_level`,
}

// CreateInventoryItem inserts a new inventory item.
func CreateInventoryItem(ctx context.Context, db *sqlx.DB, in model.InventoryItemInput) (*model.InventoryItem, error) {
	ts := now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO inventory_items (name, category, unit, quantity, minimum_level, unit_cost,
		                              location, supplier, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Category, in.Unit, in.Quantity, in.MinimumLevel, in.UnitCost,
		nullString(in.Location), nullString(in.Supplier), nullString(in.Notes), ts, ts,
	)
	if err != nil {
		return nil, classify("creating inventory item", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting inventory item id: %w", err)
	}
	return GetInventoryItem(ctx, db, id)
}

// GetInventoryItem returns an inventory item by ID with its stock status.
func GetInventoryItem(ctx context.Context, db sqlx.QueryerContext, id int64) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := sqlx.GetContext(ctx, db, &item, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inventory item: %w", err)
	}
	item.Derive()
	return &item, nil
}

// ListInventory returns inventory items matching the filter, ordered by
// category and name.
func ListInventory(ctx context.Context, db *sqlx.DB, f model.InventoryFilter) ([]model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE 1=1`
	var args []any

	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Status != "" {
		clause, ok := stockStatusClause[f.Status]
		if !ok {
			return nil, &model.ValidationError{Field: "status", Message: "invalid stock status"}
		}
		query += ` AND ` + clause
	}

	query, args = paginate(query+` ORDER BY category, name, id`, args, f.Page)
	return selectInventory(ctx, db, query, args...)
}

// ListLowStock returns items whose stock status is low or critical, most
// depleted first.
func ListLowStock(ctx context.Context, db *sqlx.DB, page model.Page) ([]model.InventoryItem, error) {
	query, args := paginate(
		`SELECT `+inventoryColumns+` FROM inventory_items
		 WHERE quantity <= minimum_level
		 ORDER BY CASE WHEN minimum_level > 0 THEN quantity / minimum_level ELSE 0 END, name, id`,
		nil, page)
	return selectInventory(ctx, db, query, args...)
}

func selectInventory(ctx context.Context, db *sqlx.DB, query string, args ...any) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if err := db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	for i := range items {
		items[i].Derive()
	}
	return items, nil
}

// UpdateInventoryItem applies a patch to an inventory item. A quantity change
// stamps last_restocked, and a downward crossing of the minimum level records
// one low-stock alert in the same transaction. It returns the updated item
// and the alert, which is nil when none was raised.
func UpdateInventoryItem(ctx context.Context, db *sqlx.DB, id int64, patch model.InventoryItemPatch) (*model.InventoryItem, *model.InventoryAlert, error) {
	var alert *model.InventoryAlert
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		item, err := GetInventoryItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("updating inventory item %d: %w", id, ErrNotFound)
		}

		ts := now()
		crossed := patch.Apply(item, ts)

		_, err = tx.ExecContext(ctx,
			`UPDATE inventory_items SET name = ?, category = ?, unit = ?, quantity = ?,
			                            minimum_level = ?, unit_cost = ?, location = ?, supplier = ?,
			                            last_restocked = ?, notes = ?, updated_at = ?
			 WHERE id = ?`,
			item.Name, item.Category, item.Unit, item.Quantity,
			item.MinimumLevel, item.UnitCost, nullString(item.Location), nullString(item.Supplier),
			item.LastRestocked, nullString(item.Notes), ts, id,
		)
		if err != nil {
			return classify("updating inventory item", err)
		}

		if crossed {
			alert, err = insertLowStockAlert(ctx, tx, item, ts)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	item, err := GetInventoryItem(ctx, db, id)
	if err != nil {
		return nil, nil, err
	}
	return item, alert, nil
}

// DeleteInventoryItem removes an inventory item and its alerts.
func DeleteInventoryItem(ctx context.Context, db *sqlx.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return classify("deleting inventory item", err)
	}
	return mustAffect("deleting inventory item", result)
}
