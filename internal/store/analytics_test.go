package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/pralnica/internal/db"
	"github.com/erazemk/pralnica/internal/model"
)

func TestDashboardStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	today := time.Date(2025, 4, 15, 14, 0, 0, 0, time.UTC)
	dept := mustDepartment(t, database, "Surgery")

	setClock(t, today.AddDate(0, 0, -1))
	mustTask(t, database, model.TaskInput{Description: "yesterday", DepartmentID: dept.ID, Status: model.TaskStatusCompleted})

	setClock(t, today.Add(-2*time.Hour))
	mustTask(t, database, model.TaskInput{Description: "p", DepartmentID: dept.ID})
	mustTask(t, database, model.TaskInput{Description: "ip", DepartmentID: dept.ID, Status: model.TaskStatusInProgress})
	mustTask(t, database, model.TaskInput{Description: "d", DepartmentID: dept.ID, Status: model.TaskStatusDelayed})
	mustTask(t, database, model.TaskInput{Description: "c", DepartmentID: dept.ID, Status: model.TaskStatusCompleted})

	mustItem(t, database, "full", 40, 10)     // 200% capped to 100
	mustItem(t, database, "half", 10, 10)     // 50
	mustItem(t, database, "no minimum", 0, 0) // 100

	if _, err := CreateCostAllocation(ctx, database, model.CostAllocationInput{
		DepartmentID: dept.ID, Month: "2025-04", TotalCost: 1200.5, TotalWeight: 100,
	}); err != nil {
		t.Fatal(err)
	}

	stats, err := DashboardStats(ctx, database, today)
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.PendingTasks != 2 {
		t.Errorf("pending: expected 2, got %d", stats.PendingTasks)
	}
	if stats.CompletedToday != 1 {
		t.Errorf("completed today: expected 1, got %d", stats.CompletedToday)
	}
	if stats.InventoryStatus != 83.33 {
		t.Errorf("inventory status: expected 83.33, got %v", stats.InventoryStatus)
	}
	if stats.MonthlyCost != 1200.5 || stats.MonthlyCostMonth != "2025-04" {
		t.Errorf("monthly cost: got %v for %s", stats.MonthlyCost, stats.MonthlyCostMonth)
	}
}

func TestDashboardMonthlyCostFallback(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	a := mustDepartment(t, database, "A")
	b := mustDepartment(t, database, "B")

	for _, in := range []model.CostAllocationInput{
		{DepartmentID: a.ID, Month: "2025-02", TotalCost: 300, TotalWeight: 10},
		{DepartmentID: b.ID, Month: "2025-02", TotalCost: 200, TotalWeight: 10},
		{DepartmentID: a.ID, Month: "2025-01", TotalCost: 999, TotalWeight: 10},
	} {
		if _, err := CreateCostAllocation(ctx, database, in); err != nil {
			t.Fatal(err)
		}
	}

	// March 31st: the previous month must be February, not March 3rd.
	stats, err := DashboardStats(ctx, database, time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.MonthlyCost != 500 || stats.MonthlyCostMonth != "2025-02" {
		t.Errorf("expected fallback 500 for 2025-02, got %v for %s", stats.MonthlyCost, stats.MonthlyCostMonth)
	}
}

func TestDashboardStatsEmpty(t *testing.T) {
	database := db.NewTestDB(t)
	stats, err := DashboardStats(context.Background(), database, time.Now())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.PendingTasks != 0 || stats.InventoryStatus != 0 || stats.MonthlyCost != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestDepartmentUsage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	ts := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)
	setClock(t, ts)

	busy := mustDepartment(t, database, "Busy")
	costly := mustDepartment(t, database, "Costly")
	mustDepartment(t, database, "Idle")

	for i := 0; i < 3; i++ {
		mustTask(t, database, model.TaskInput{Description: "t", DepartmentID: busy.ID})
	}
	if _, err := CreateCostAllocation(ctx, database, model.CostAllocationInput{
		DepartmentID: costly.ID, Month: "2025-04", TotalCost: 45000, TotalWeight: 100,
	}); err != nil {
		t.Fatal(err)
	}

	usage, err := DepartmentUsage(ctx, database, model.PeriodMonthly, ts)
	if err != nil {
		t.Fatalf("DepartmentUsage: %v", err)
	}
	if len(usage) != 3 {
		t.Fatalf("expected 3 departments, got %d", len(usage))
	}
	if usage[0].DepartmentName != "Costly" || usage[0].Usage != 45 {
		t.Errorf("expected Costly first with 45, got %+v", usage[0])
	}
	if usage[1].DepartmentName != "Busy" || usage[1].Usage != 30 || usage[1].TaskCount != 3 {
		t.Errorf("expected Busy second with 30, got %+v", usage[1])
	}
	if usage[2].Usage != 0 {
		t.Errorf("expected idle department at 0, got %+v", usage[2])
	}

	if _, err := DepartmentUsage(ctx, database, "yearly", ts); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestTaskCompletion(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	today := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)
	dept := mustDepartment(t, database, "Surgery")

	setClock(t, today.AddDate(0, 0, -2))
	old := mustTask(t, database, model.TaskInput{Description: "old", DepartmentID: dept.ID})
	setClock(t, today)
	mustTask(t, database, model.TaskInput{Description: "new", DepartmentID: dept.ID})
	if _, err := UpdateTask(ctx, database, old.ID, model.TaskPatch{Status: ptr(model.TaskStatusCompleted)}, nil); err != nil {
		t.Fatal(err)
	}

	daily, err := TaskCompletion(ctx, database, model.PeriodDaily, today)
	if err != nil {
		t.Fatalf("TaskCompletion: %v", err)
	}
	if len(daily) != 7 {
		t.Fatalf("expected 7 daily buckets, got %d", len(daily))
	}
	if daily[6].Label != "2025-04-15" || daily[6].Created != 1 || daily[6].Completed != 1 {
		t.Errorf("today bucket: %+v", daily[6])
	}
	if daily[4].Label != "2025-04-13" || daily[4].Created != 1 || daily[4].Completed != 0 {
		t.Errorf("two days ago bucket: %+v", daily[4])
	}

	weekly, _ := TaskCompletion(ctx, database, model.PeriodWeekly, today)
	if len(weekly) != 4 || weekly[3].Created != 2 || weekly[3].Completed != 1 {
		t.Errorf("weekly: %+v", weekly)
	}

	monthly, _ := TaskCompletion(ctx, database, model.PeriodMonthly, today)
	if len(monthly) != 6 || monthly[0].Label != "2024-11" || monthly[5].Label != "2025-04" || monthly[5].Created != 2 {
		t.Errorf("monthly: %+v", monthly)
	}

	if _, err := TaskCompletion(ctx, database, "hourly", today); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestInventoryUsage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, in := range []model.InventoryItemInput{
		{Name: "Soap", Category: "chemicals", Unit: "l", Quantity: 10, MinimumLevel: 20, UnitCost: 1.5},
		{Name: "Bleach", Category: "chemicals", Unit: "l", Quantity: 30, MinimumLevel: 20, UnitCost: 2},
		{Name: "Bags", Category: "supplies", Unit: "pcs", Quantity: 100, UnitCost: 0.1},
	} {
		if _, err := CreateInventoryItem(ctx, database, in); err != nil {
			t.Fatal(err)
		}
	}

	usage, err := InventoryUsage(ctx, database)
	if err != nil {
		t.Fatalf("InventoryUsage: %v", err)
	}
	if len(usage) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(usage))
	}
	chem := usage[0]
	if chem.Category != "chemicals" || chem.Items != 2 || chem.TotalQuantity != 40 || chem.StockValue != 75 || chem.CriticalItems != 1 {
		t.Errorf("chemicals: %+v", chem)
	}
	if usage[1].StockValue != 10 {
		t.Errorf("supplies stock value: expected 10, got %v", usage[1].StockValue)
	}
}
