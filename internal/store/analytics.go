package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/erazemk/pralnica/internal/model"
)

// Department usage weights.
const (
	usageTaskWeight  = 10
	usageCostDivisor = 1000
	usageDecimals    = 3
)

// periodDays is the look-back window of each department usage period.
var periodDays = map[string]int{
	model.PeriodWeekly:    7,
	model.PeriodMonthly:   30,
	model.PeriodQuarterly: 90,
}

// DashboardStats computes the headline dashboard figures as of now.
func DashboardStats(ctx context.Context, db *sqlx.DB, now time.Time) (*model.DashboardStats, error) {
	var stats model.DashboardStats

	err := db.GetContext(ctx, &stats.PendingTasks,
		`SELECT COUNT(*) FROM tasks WHERE status IN (?, ?)`,
		model.TaskStatusPending, model.TaskStatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("counting pending tasks: %w", err)
	}

	today := model.StartOfDay(now)
	err = db.GetContext(ctx, &stats.CompletedToday,
		`SELECT COUNT(*) FROM tasks
		 WHERE status = ? AND completed_at >= ? AND completed_at < ?`,
		model.TaskStatusCompleted, today.UTC(), today.AddDate(0, 0, 1).UTC())
	if err != nil {
		return nil, fmt.Errorf("counting tasks completed today: %w", err)
	}

	stats.InventoryStatus, err = inventoryStatus(ctx, db)
	if err != nil {
		return nil, err
	}

	month := firstOfMonth(now)
	cost, err := monthlyCost(ctx, db, month.Format(model.MonthLayout))
	if err != nil {
		return nil, err
	}
	if cost.IsZero() {
		month = month.AddDate(0, -1, 0)
		cost, err = monthlyCost(ctx, db, month.Format(model.MonthLayout))
		if err != nil {
			return nil, err
		}
	}
	stats.MonthlyCost = cost.InexactFloat64()
	stats.MonthlyCostMonth = month.Format(model.MonthLayout)

	return &stats, nil
}

// inventoryStatus averages min(100, q / (2 × min) × 100) over all items,
// counting items without a minimum level as fully stocked.
func inventoryStatus(ctx context.Context, db *sqlx.DB) (float64, error) {
	var levels []struct {
		Quantity     float64 `db:"quantity"`
		MinimumLevel float64 `db:"minimum_level"`
	}
	if err := db.SelectContext(ctx, &levels, `SELECT quantity, minimum_level FROM inventory_items`); err != nil {
		return 0, fmt.Errorf("loading stock levels: %w", err)
	}
	if len(levels) == 0 {
		return 0, nil
	}

	hundred := decimal.NewFromInt(100)
	sum := decimal.Zero
	for _, l := range levels {
		if l.MinimumLevel <= 0 {
			sum = sum.Add(hundred)
			continue
		}
		pct := decimal.NewFromFloat(l.Quantity).
			Div(decimal.NewFromFloat(l.MinimumLevel).Mul(decimal.NewFromInt(2))).
			Mul(hundred)
		sum = sum.Add(decimal.Min(pct, hundred))
	}
	return sum.Div(decimal.NewFromInt(int64(len(levels)))).Round(2).InexactFloat64(), nil
}

func monthlyCost(ctx context.Context, db *sqlx.DB, month string) (decimal.Decimal, error) {
	var costs []float64
	if err := db.SelectContext(ctx, &costs, `SELECT total_cost FROM cost_allocations WHERE month = ?`, month); err != nil {
		return decimal.Zero, fmt.Errorf("summing costs for %s: %w", month, err)
	}
	return sumCosts(costs), nil
}

// DepartmentUsage scores every department by its tasks created and cost
// allocated within period before now, highest first.
func DepartmentUsage(ctx context.Context, db *sqlx.DB, period string, now time.Time) ([]model.DepartmentUsage, error) {
	days, ok := periodDays[period]
	if !ok {
		return nil, &model.ValidationError{Field: "period", Message: "period must be weekly, monthly or quarterly"}
	}
	since := now.AddDate(0, 0, -days)

	var usage []model.DepartmentUsage
	err := db.SelectContext(ctx, &usage,
		`SELECT d.id AS department_id, d.name AS department_name,
		        (SELECT COUNT(*) FROM tasks t WHERE t.department_id = d.id AND t.created_at >= ?) AS task_count,
		        0 AS total_cost
		 FROM departments d`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("counting department tasks: %w", err)
	}

	var costs []struct {
		DepartmentID int64   `db:"department_id"`
		TotalCost    float64 `db:"total_cost"`
	}
	err = db.SelectContext(ctx, &costs,
		`SELECT department_id, total_cost FROM cost_allocations WHERE month >= ?`,
		since.Format(model.MonthLayout))
	if err != nil {
		return nil, fmt.Errorf("loading department costs: %w", err)
	}

	byDept := make(map[int64]decimal.Decimal)
	for _, c := range costs {
		byDept[c.DepartmentID] = byDept[c.DepartmentID].Add(decimal.NewFromFloat(c.TotalCost))
	}

	for i := range usage {
		u := &usage[i]
		cost := byDept[u.DepartmentID]
		u.TotalCost = cost.InexactFloat64()
		u.Usage = decimal.NewFromInt(int64(u.TaskCount * usageTaskWeight)).
			Add(cost.Div(decimal.NewFromInt(usageCostDivisor))).
			Round(usageDecimals).
			InexactFloat64()
	}

	sort.SliceStable(usage, func(i, j int) bool {
		if usage[i].Usage != usage[j].Usage {
			return usage[i].Usage > usage[j].Usage
		}
		return usage[i].DepartmentName < usage[j].DepartmentName
	})
	return usage, nil
}

// TaskCompletion returns created and completed task counts bucketed by period:
// the last 7 days for daily, the last 4 weeks for weekly and the last 6 months
// for monthly. Buckets are oldest first and always all present.
func TaskCompletion(ctx context.Context, db *sqlx.DB, period string, now time.Time) ([]model.CompletionPoint, error) {
	buckets, err := completionBuckets(period, now)
	if err != nil {
		return nil, err
	}
	start := buckets[0].start

	var rows []struct {
		CreatedAt   time.Time  `db:"created_at"`
		CompletedAt *time.Time `db:"completed_at"`
	}
	err = db.SelectContext(ctx, &rows,
		`SELECT created_at, completed_at FROM tasks WHERE created_at >= ? OR completed_at >= ?`,
		start.UTC(), start.UTC())
	if err != nil {
		return nil, fmt.Errorf("loading task timeline: %w", err)
	}

	points := make([]model.CompletionPoint, len(buckets))
	for i, b := range buckets {
		points[i].Label = b.label
	}
	for _, r := range rows {
		if i := bucketIndex(buckets, r.CreatedAt.In(now.Location())); i >= 0 {
			points[i].Created++
		}
		if r.CompletedAt != nil {
			if i := bucketIndex(buckets, r.CompletedAt.In(now.Location())); i >= 0 {
				points[i].Completed++
			}
		}
	}
	return points, nil
}

type bucket struct {
	label      string
	start, end time.Time
}

func completionBuckets(period string, now time.Time) ([]bucket, error) {
	today := model.StartOfDay(now)
	var buckets []bucket

	switch period {
	case model.PeriodDaily:
		for i := 6; i >= 0; i-- {
			d := today.AddDate(0, 0, -i)
			buckets = append(buckets, bucket{d.Format(time.DateOnly), d, d.AddDate(0, 0, 1)})
		}
	case model.PeriodWeekly:
		for i := 3; i >= 0; i-- {
			end := today.AddDate(0, 0, 1-7*i)
			start := end.AddDate(0, 0, -7)
			buckets = append(buckets, bucket{start.Format(time.DateOnly), start, end})
		}
	case model.PeriodMonthly:
		month := firstOfMonth(now)
		for i := 5; i >= 0; i-- {
			m := month.AddDate(0, -i, 0)
			buckets = append(buckets, bucket{m.Format(model.MonthLayout), m, m.AddDate(0, 1, 0)})
		}
	default:
		return nil, &model.ValidationError{Field: "period", Message: "period must be daily, weekly or monthly"}
	}
	return buckets, nil
}

func bucketIndex(buckets []bucket, t time.Time) int {
	for i, b := range buckets {
		if !t.Before(b.start) && t.Before(b.end) {
			return i
		}
	}
	return -1
}

// InventoryUsage summarises stock per category, ordered by category.
func InventoryUsage(ctx context.Context, db *sqlx.DB) ([]model.CategoryUsage, error) {
	items, err := ListInventory(ctx, db, model.InventoryFilter{})
	if err != nil {
		return nil, err
	}

	type totals struct {
		usage    model.CategoryUsage
		quantity decimal.Decimal
		value    decimal.Decimal
	}
	byCategory := make(map[string]*totals)
	var order []string
	for _, item := range items {
		t, ok := byCategory[item.Category]
		if !ok {
			t = &totals{usage: model.CategoryUsage{Category: item.Category}}
			byCategory[item.Category] = t
			order = append(order, item.Category)
		}
		q := decimal.NewFromFloat(item.Quantity)
		t.usage.Items++
		t.quantity = t.quantity.Add(q)
		t.value = t.value.Add(q.Mul(decimal.NewFromFloat(item.UnitCost)))
		switch item.Status {
		case model.StockLow:
			t.usage.LowItems++
		case model.StockCritical:
			t.usage.CriticalItems++
		}
	}

	usage := make([]model.CategoryUsage, 0, len(order))
	for _, c := range order {
		t := byCategory[c]
		t.usage.TotalQuantity = t.quantity.InexactFloat64()
		t.usage.StockValue = t.value.Round(2).InexactFloat64()
		usage = append(usage, t.usage)
	}
	return usage, nil
}

func sumCosts(costs []float64) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range costs {
		sum = sum.Add(decimal.NewFromFloat(c))
	}
	return sum
}

func firstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
