package model

// DashboardStats are the headline figures of the dashboard.
type DashboardStats struct {
	PendingTasks     int     `json:"pending_tasks"`
	CompletedToday   int     `json:"completed_today"`
	InventoryStatus  float64 `json:"inventory_status"`
	MonthlyCost      float64 `json:"monthly_cost"`
	MonthlyCostMonth string  `json:"monthly_cost_month"`
}

// DepartmentUsage scores how heavily a department used the laundry in a
// period: tasks × 10 + cost / 1000.
type DepartmentUsage struct {
	DepartmentID   int64   `json:"department_id" db:"department_id"`
	DepartmentName string  `json:"department_name" db:"department_name"`
	TaskCount      int     `json:"task_count" db:"task_count"`
	TotalCost      float64 `json:"total_cost" db:"total_cost"`
	Usage          float64 `json:"usage"`
}

// CompletionPoint is one bucket of the task completion time series.
type CompletionPoint struct {
	Label     string `json:"label"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// CategoryUsage summarises the stock of one inventory category.
type CategoryUsage struct {
	Category      string  `json:"category"`
	Items         int     `json:"items"`
	TotalQuantity float64 `json:"total_quantity"`
	StockValue    float64 `json:"stock_value"`
	LowItems      int     `json:"low_items"`
	CriticalItems int     `json:"critical_items"`
}

// Analytics periods.
const (
	PeriodDaily     = "daily"
	PeriodWeekly    = "weekly"
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
)
