package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/db"
	"github.com/erazemk/pralnica/internal/model"
)

func mustItem(t *testing.T, database *sqlx.DB, name string, quantity, minLevel float64) *model.InventoryItem {
	t.Helper()
	item, err := CreateInventoryItem(context.Background(), database, model.InventoryItemInput{
		Name: name, Category: "detergent", Unit: "l", Quantity: quantity, MinimumLevel: minLevel, UnitCost: 2,
	})
	if err != nil {
		t.Fatalf("CreateInventoryItem: %v", err)
	}
	return item
}

func TestLowStockAlertOncePerCrossing(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	item := mustItem(t, database, "Softener", 100, 50)

	steps := []struct {
		quantity float64
		alert    bool
	}{
		{40, true},
		{30, false},
		{60, false},
		{45, true},
		{50, false},
	}
	for _, s := range steps {
		_, alert, err := UpdateInventoryItem(ctx, database, item.ID, model.InventoryItemPatch{Quantity: ptr(s.quantity)})
		if err != nil {
			t.Fatalf("UpdateInventoryItem(%g): %v", s.quantity, err)
		}
		if (alert != nil) != s.alert {
			t.Errorf("quantity %g: alert = %v, want %v", s.quantity, alert != nil, s.alert)
		}
	}

	alerts, err := ListAlerts(ctx, database, nil, model.Page{})
	if err != nil {
		t.Fatalf("ListAlerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected 2 stored alerts, got %d", len(alerts))
	}
	for _, a := range alerts {
		if a.AlertType != model.AlertTypeLowStock || a.Acknowledged || a.ItemName != "Softener" {
			t.Errorf("unexpected alert %+v", a)
		}
	}
}

func TestUpdateInventoryStampsRestock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	ts := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	setClock(t, ts)

	item := mustItem(t, database, "Bags", 10, 5)
	if item.LastRestocked != nil {
		t.Fatal("new item should not have a restock stamp")
	}

	item, _, err := UpdateInventoryItem(ctx, database, item.ID, model.InventoryItemPatch{Notes: ptr("moved")})
	if err != nil {
		t.Fatal(err)
	}
	if item.LastRestocked != nil {
		t.Error("update without quantity change stamped last_restocked")
	}

	item, _, err = UpdateInventoryItem(ctx, database, item.ID, model.InventoryItemPatch{Quantity: ptr(float64(80))})
	if err != nil {
		t.Fatal(err)
	}
	if item.LastRestocked == nil || !item.LastRestocked.Equal(ts) {
		t.Errorf("expected last_restocked %v, got %v", ts, item.LastRestocked)
	}
	if item.Status != model.StockOK {
		t.Errorf("expected status ok, got %s", item.Status)
	}
}

func TestUpdateInventoryNotFound(t *testing.T) {
	database := db.NewTestDB(t)
	_, _, err := UpdateInventoryItem(context.Background(), database, 1, model.InventoryItemPatch{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListInventoryByStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	mustItem(t, database, "plenty", 100, 10)
	mustItem(t, database, "low", 8, 10)
	mustItem(t, database, "critical", 2, 10)

	tests := []struct {
		status string
		want   string
	}{
		{model.StockOK, "plenty"},
		{model.StockLow, "low"},
		{model.StockCritical, "critical"},
	}
	for _, tt := range tests {
		items, err := ListInventory(ctx, database, model.InventoryFilter{Status: tt.status})
		if err != nil {
			t.Fatalf("ListInventory(%s): %v", tt.status, err)
		}
		if len(items) != 1 || items[0].Name != tt.want || items[0].Status != tt.status {
			t.Errorf("status %s: got %+v", tt.status, items)
		}
	}

	low, err := ListLowStock(ctx, database, model.Page{})
	if err != nil {
		t.Fatalf("ListLowStock: %v", err)
	}
	if len(low) != 2 || low[0].Name != "critical" {
		t.Errorf("expected [critical low], got %+v", low)
	}

	var ve *model.ValidationError
	if _, err := ListInventory(ctx, database, model.InventoryFilter{Status: "bogus"}); !errors.As(err, &ve) {
		t.Errorf("expected validation error for unknown status, got %v", err)
	}
}

func TestAcknowledgeAlert(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := mustUser(t, database, "keeper", model.RoleInventory)
	item := mustItem(t, database, "Bleach", 20, 10)

	_, alert, err := UpdateInventoryItem(ctx, database, item.ID, model.InventoryItemPatch{Quantity: ptr(float64(5))})
	if err != nil || alert == nil {
		t.Fatalf("expected alert, got %v (err %v)", alert, err)
	}

	acked, err := AcknowledgeAlert(ctx, database, alert.ID, &user.ID)
	if err != nil {
		t.Fatalf("AcknowledgeAlert: %v", err)
	}
	if !acked.Acknowledged || acked.AcknowledgedBy == nil || *acked.AcknowledgedBy != user.ID {
		t.Errorf("unexpected acknowledgement %+v", acked)
	}

	open, _ := ListAlerts(ctx, database, ptr(false), model.Page{})
	if len(open) != 0 {
		t.Errorf("expected no open alerts, got %d", len(open))
	}

	if _, err := AcknowledgeAlert(ctx, database, 999, &user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteInventoryItemRemovesAlerts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	item := mustItem(t, database, "Bleach", 20, 10)
	UpdateInventoryItem(ctx, database, item.ID, model.InventoryItemPatch{Quantity: ptr(float64(5))})

	if err := DeleteInventoryItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteInventoryItem: %v", err)
	}
	alerts, _ := ListAlerts(ctx, database, nil, model.Page{})
	if len(alerts) != 0 {
		t.Errorf("expected alerts to cascade, got %d", len(alerts))
	}
}
