package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostAllocation is a monthly billing record for one department.
type CostAllocation struct {
	ID           int64     `json:"id" db:"id"`
	DepartmentID int64     `json:"department_id" db:"department_id"`
	Month        string    `json:"month" db:"month"`
	TotalWeight  float64   `json:"total_weight" db:"total_weight"`
	TotalCost    float64   `json:"total_cost" db:"total_cost"`
	CostPerKg    float64   `json:"cost_per_kg" db:"cost_per_kg"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields (not always populated).
	DepartmentName string `json:"department_name,omitempty" db:"department_name"`
}

// MonthLayout is the time layout of CostAllocation.Month.
const MonthLayout = "2006-01"

// CostPrecision is the number of decimal places kept in cost per kg.
const CostPrecision = 4

// CostPerKg divides cost by weight, returning 0 for a zero weight.
func CostPerKg(totalCost, totalWeight float64) float64 {
	if totalWeight <= 0 {
		return 0
	}
	return decimal.NewFromFloat(totalCost).
		DivRound(decimal.NewFromFloat(totalWeight), CostPrecision).
		InexactFloat64()
}

// Recompute derives CostPerKg from the totals. Any previously set value is
// discarded.
func (c *CostAllocation) Recompute() {
	c.CostPerKg = CostPerKg(c.TotalCost, c.TotalWeight)
}

// ValidMonth reports whether s is a YYYY-MM month.
func ValidMonth(s string) bool {
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}

// CostAllocationInput is the body of a cost allocation creation request.
// CostPerKg is accepted for compatibility and ignored.
type CostAllocationInput struct {
	DepartmentID int64    `json:"department_id"`
	Month        string   `json:"month"`
	TotalWeight  float64  `json:"total_weight"`
	TotalCost    float64  `json:"total_cost"`
	CostPerKg    *float64 `json:"cost_per_kg,omitempty"`
}

// Validate checks required fields and amounts.
func (in *CostAllocationInput) Validate() error {
	if in.DepartmentID <= 0 {
		return invalid("department_id", "department_id required")
	}
	if !ValidMonth(in.Month) {
		return invalid("month", "month must be formatted as YYYY-MM")
	}
	return nonNegative(map[string]float64{"total_weight": in.TotalWeight, "total_cost": in.TotalCost})
}

// Allocation builds a new record with a derived cost per kg.
func (in *CostAllocationInput) Allocation() *CostAllocation {
	c := &CostAllocation{
		DepartmentID: in.DepartmentID,
		Month:        in.Month,
		TotalWeight:  in.TotalWeight,
		TotalCost:    in.TotalCost,
	}
	c.Recompute()
	return c
}

// CostAllocationPatch holds optional cost allocation updates. CostPerKg is
// accepted for compatibility and ignored.
type CostAllocationPatch struct {
	DepartmentID *int64   `json:"department_id"`
	Month        *string  `json:"month"`
	TotalWeight  *float64 `json:"total_weight"`
	TotalCost    *float64 `json:"total_cost"`
	CostPerKg    *float64 `json:"cost_per_kg,omitempty"`
}

// Validate checks the patch without applying it.
func (p *CostAllocationPatch) Validate() error {
	if p.DepartmentID != nil && *p.DepartmentID <= 0 {
		return invalid("department_id", "invalid department_id")
	}
	if p.Month != nil && !ValidMonth(*p.Month) {
		return invalid("month", "month must be formatted as YYYY-MM")
	}
	amounts := map[string]float64{}
	if p.TotalWeight != nil {
		amounts["total_weight"] = *p.TotalWeight
	}
	if p.TotalCost != nil {
		amounts["total_cost"] = *p.TotalCost
	}
	return nonNegative(amounts)
}

// Apply writes the patch into c and recomputes the cost per kg.
func (p *CostAllocationPatch) Apply(c *CostAllocation) {
	if p.DepartmentID != nil {
		c.DepartmentID = *p.DepartmentID
	}
	if p.Month != nil {
		c.Month = *p.Month
	}
	if p.TotalWeight != nil {
		c.TotalWeight = *p.TotalWeight
	}
	if p.TotalCost != nil {
		c.TotalCost = *p.TotalCost
	}
	c.Recompute()
}

// CostFilter narrows cost allocation list queries.
type CostFilter struct {
	Month        string
	DepartmentID int64
	Page         Page
}
