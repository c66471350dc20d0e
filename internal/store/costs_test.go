package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/pralnica/internal/db"
	"github.com/erazemk/pralnica/internal/model"
)

func TestCostAllocationCostPerKg(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	dept := mustDepartment(t, database, "Radiology")

	c, err := CreateCostAllocation(ctx, database, model.CostAllocationInput{
		DepartmentID: dept.ID, Month: "2025-03", TotalWeight: 200, TotalCost: 1000, CostPerKg: ptr(99.0),
	})
	if err != nil {
		t.Fatalf("CreateCostAllocation: %v", err)
	}
	if c.CostPerKg != 5 {
		t.Errorf("expected cost per kg 5, got %v", c.CostPerKg)
	}
	if c.DepartmentName != "Radiology" {
		t.Errorf("expected joined department name, got %q", c.DepartmentName)
	}

	c, err = UpdateCostAllocation(ctx, database, c.ID, model.CostAllocationPatch{TotalWeight: ptr(0.0), CostPerKg: ptr(7.0)})
	if err != nil {
		t.Fatalf("UpdateCostAllocation: %v", err)
	}
	if c.CostPerKg != 0 {
		t.Errorf("expected cost per kg 0 for zero weight, got %v", c.CostPerKg)
	}

	c, err = UpdateCostAllocation(ctx, database, c.ID, model.CostAllocationPatch{TotalWeight: ptr(3.0), TotalCost: ptr(100.0)})
	if err != nil {
		t.Fatalf("UpdateCostAllocation: %v", err)
	}
	if c.CostPerKg != 33.3333 {
		t.Errorf("expected 33.3333, got %v", c.CostPerKg)
	}
}

func TestCostAllocationUniquePerMonth(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	dept := mustDepartment(t, database, "Radiology")

	in := model.CostAllocationInput{DepartmentID: dept.ID, Month: "2025-03", TotalWeight: 1, TotalCost: 1}
	if _, err := CreateCostAllocation(ctx, database, in); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateCostAllocation(ctx, database, in); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCostAllocationUnknownDepartment(t *testing.T) {
	database := db.NewTestDB(t)
	_, err := CreateCostAllocation(context.Background(), database, model.CostAllocationInput{DepartmentID: 5, Month: "2025-03"})
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListCostAllocations(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	a := mustDepartment(t, database, "A")
	b := mustDepartment(t, database, "B")

	for _, in := range []model.CostAllocationInput{
		{DepartmentID: a.ID, Month: "2025-02", TotalCost: 10, TotalWeight: 1},
		{DepartmentID: a.ID, Month: "2025-03", TotalCost: 10, TotalWeight: 1},
		{DepartmentID: b.ID, Month: "2025-03", TotalCost: 10, TotalWeight: 1},
	} {
		if _, err := CreateCostAllocation(ctx, database, in); err != nil {
			t.Fatal(err)
		}
	}

	list, err := ListCostAllocations(ctx, database, model.CostFilter{Month: "2025-03"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 for month, got %d", len(list))
	}

	list, _ = ListCostAllocations(ctx, database, model.CostFilter{DepartmentID: a.ID})
	if len(list) != 2 || list[0].Month != "2025-03" {
		t.Errorf("expected newest month first for department, got %+v", list)
	}
}
