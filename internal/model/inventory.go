package model

import (
	"fmt"
	"time"
)

// InventoryItem is a consumable stock record (detergent, bags, linen...).
type InventoryItem struct {
	ID            int64      `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Category      string     `json:"category" db:"category"`
	Unit          string     `json:"unit" db:"unit"`
	Quantity      float64    `json:"quantity" db:"quantity"`
	MinimumLevel  float64    `json:"minimum_level" db:"minimum_level"`
	UnitCost      float64    `json:"unit_cost" db:"unit_cost"`
	Location      string     `json:"location,omitempty" db:"location"`
	Supplier      string     `json:"supplier,omitempty" db:"supplier"`
	LastRestocked *time.Time `json:"last_restocked,omitempty" db:"last_restocked"`
	Notes         string     `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`

	// Status is derived at read time, never stored.
	Status string `json:"status" db:"-"`
}

// Stock statuses.
const (
	StockOK       = "ok"
	StockLow      = "low"
	StockCritical = "critical"
)

// StockStatus classifies a quantity against its minimum level.
func StockStatus(quantity, minimumLevel float64) string {
	switch {
	case quantity <= minimumLevel*0.5:
		return StockCritical
	case quantity <= minimumLevel:
		return StockLow
	default:
		return StockOK
	}
}

// Derive fills the read-time fields of the item.
func (i *InventoryItem) Derive() {
	i.Status = StockStatus(i.Quantity, i.MinimumLevel)
}

// SetQuantity changes the quantity, stamping LastRestocked when it differs.
// It reports whether the change crossed the minimum level downwards.
func (i *InventoryItem) SetQuantity(quantity float64, now time.Time) (crossedBelow bool) {
	if quantity == i.Quantity {
		return false
	}
	crossedBelow = quantity <= i.MinimumLevel && i.Quantity > i.MinimumLevel
	i.Quantity = quantity
	stamp := now
	i.LastRestocked = &stamp
	return crossedBelow
}

// InventoryItemInput is the body of an inventory item creation request.
type InventoryItemInput struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
	MinimumLevel float64 `json:"minimum_level"`
	UnitCost     float64 `json:"unit_cost"`
	Location     string  `json:"location"`
	Supplier     string  `json:"supplier"`
	Notes        string  `json:"notes"`
}

// Validate checks required fields and non-negative amounts.
func (in *InventoryItemInput) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"name", in.Name}, {"category", in.Category}, {"unit", in.Unit},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	return nonNegative(map[string]float64{
		"quantity": in.Quantity, "minimum_level": in.MinimumLevel, "unit_cost": in.UnitCost,
	})
}

// InventoryItemPatch holds optional inventory item field updates.
type InventoryItemPatch struct {
	Name         *string  `json:"name"`
	Category     *string  `json:"category"`
	Unit         *string  `json:"unit"`
	Quantity     *float64 `json:"quantity"`
	MinimumLevel *float64 `json:"minimum_level"`
	UnitCost     *float64 `json:"unit_cost"`
	Location     *string  `json:"location"`
	Supplier     *string  `json:"supplier"`
	Notes        *string  `json:"notes"`
}

// Validate checks the patch without applying it.
func (p *InventoryItemPatch) Validate() error {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"name", p.Name}, {"category", p.Category}, {"unit", p.Unit},
	} {
		if f.value != nil {
			if err := required(f.name, *f.value); err != nil {
				return err
			}
		}
	}
	amounts := map[string]float64{}
	if p.Quantity != nil {
		amounts["quantity"] = *p.Quantity
	}
	if p.MinimumLevel != nil {
		amounts["minimum_level"] = *p.MinimumLevel
	}
	if p.UnitCost != nil {
		amounts["unit_cost"] = *p.UnitCost
	}
	return nonNegative(amounts)
}

// Apply writes the patch into i. The minimum level is applied before the
// quantity so that the threshold crossing is judged against the new level.
// It reports whether the quantity crossed the minimum level downwards.
func (p *InventoryItemPatch) Apply(i *InventoryItem, now time.Time) (crossedBelow bool) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Category != nil {
		i.Category = *p.Category
	}
	if p.Unit != nil {
		i.Unit = *p.Unit
	}
	if p.MinimumLevel != nil {
		i.MinimumLevel = *p.MinimumLevel
	}
	if p.UnitCost != nil {
		i.UnitCost = *p.UnitCost
	}
	if p.Location != nil {
		i.Location = *p.Location
	}
	if p.Supplier != nil {
		i.Supplier = *p.Supplier
	}
	if p.Notes != nil {
		i.Notes = *p.Notes
	}
	if p.Quantity != nil {
		crossedBelow = i.SetQuantity(*p.Quantity, now)
	}
	return crossedBelow
}

// InventoryFilter narrows inventory list queries.
type InventoryFilter struct {
	Category string
	Status   string // derived stock status
	Page     Page
}

// InventoryAlert records that an item's stock crossed below its minimum level.
type InventoryAlert struct {
	ID             int64      `json:"id" db:"id"`
	ItemID         int64      `json:"item_id" db:"item_id"`
	AlertType      string     `json:"alert_type" db:"alert_type"`
	Message        string     `json:"message" db:"message"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	Acknowledged   bool       `json:"acknowledged" db:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty" db:"acknowledged_at"`
	AcknowledgedBy *int64     `json:"acknowledged_by,omitempty" db:"acknowledged_by"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty" db:"item_name"`
}

// AlertTypeLowStock is the alert type emitted on a downward threshold crossing.
const AlertTypeLowStock = "low_stock"

// LowStockMessage formats the human-readable text of a low-stock alert.
func LowStockMessage(i *InventoryItem) string {
	return fmt.Sprintf("%s is low on stock: %g %s remaining (minimum %g)", i.Name, i.Quantity, i.Unit, i.MinimumLevel)
}

func nonNegative(values map[string]float64) error {
	for name, v := range values {
		if v < 0 {
			return invalid(name, name+" must not be negative")
		}
	}
	return nil
}
