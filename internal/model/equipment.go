package model

import "time"

// Equipment is a laundry machine (washer, dryer, ironer...).
type Equipment struct {
	ID              int64      `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Type            string     `json:"type" db:"type"`
	Status          string     `json:"status" db:"status"`
	LastMaintenance *time.Time `json:"last_maintenance,omitempty" db:"last_maintenance"`
	NextMaintenance *time.Time `json:"next_maintenance,omitempty" db:"next_maintenance"`
	TimeRemaining   *int       `json:"time_remaining,omitempty" db:"time_remaining"`
	Notes           string     `json:"notes,omitempty" db:"notes"`
	ImageMime       string     `json:"image_mime,omitempty" db:"image_mime"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`

	// MaintenanceStatus is derived at read time, never stored.
	MaintenanceStatus string `json:"maintenance_status" db:"-"`
}

// Equipment statuses.
const (
	EquipmentStatusActive      = "active"
	EquipmentStatusMaintenance = "maintenance"
	EquipmentStatusAvailable   = "available"
	EquipmentStatusInQueue     = "in_queue"
)

// ValidEquipmentStatus reports whether s is a known equipment status.
func ValidEquipmentStatus(s string) bool {
	switch s {
	case EquipmentStatusActive, EquipmentStatusMaintenance, EquipmentStatusAvailable, EquipmentStatusInQueue:
		return true
	}
	return false
}

// Maintenance statuses.
const (
	MaintenanceOverdue     = "overdue"
	MaintenanceUpcoming    = "upcoming"
	MaintenanceOK          = "ok"
	MaintenanceUnscheduled = "unscheduled"
)

// MaintenanceIntervalDays is the fixed period between services.
const MaintenanceIntervalDays = 90

// UpcomingWindowDays is how far ahead a service counts as upcoming.
const UpcomingWindowDays = 7

// NextMaintenanceAfter returns the service date following last.
func NextMaintenanceAfter(last time.Time) time.Time {
	return last.AddDate(0, 0, MaintenanceIntervalDays)
}

// MaintenanceStatus classifies a scheduled service date against the calendar
// day of now.
func MaintenanceStatus(next *time.Time, now time.Time) string {
	if next == nil {
		return MaintenanceUnscheduled
	}
	days := daysBetween(now, next.In(now.Location()))
	switch {
	case days < 0:
		return MaintenanceOverdue
	case days <= UpcomingWindowDays:
		return MaintenanceUpcoming
	default:
		return MaintenanceOK
	}
}

// Derive fills the read-time fields of the equipment.
func (e *Equipment) Derive(now time.Time) {
	e.MaintenanceStatus = MaintenanceStatus(e.NextMaintenance, now)
}

// SetLastMaintenance records a service. When the date differs from the stored
// one the next service is rescheduled a fixed interval later.
func (e *Equipment) SetLastMaintenance(last time.Time) {
	if e.LastMaintenance != nil && e.LastMaintenance.Equal(last) {
		return
	}
	next := NextMaintenanceAfter(last)
	e.LastMaintenance = &last
	e.NextMaintenance = &next
}

// EquipmentInput is the body of an equipment creation request.
type EquipmentInput struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	LastMaintenance *time.Time `json:"last_maintenance"`
	NextMaintenance *time.Time `json:"next_maintenance"`
	TimeRemaining   *int       `json:"time_remaining"`
	Notes           string     `json:"notes"`
}

// Validate checks the input and fills defaults.
func (in *EquipmentInput) Validate() error {
	if err := required("name", in.Name); err != nil {
		return err
	}
	if err := required("type", in.Type); err != nil {
		return err
	}
	if in.Status == "" {
		in.Status = EquipmentStatusAvailable
	}
	if !ValidEquipmentStatus(in.Status) {
		return invalid("status", "invalid status")
	}
	if in.TimeRemaining != nil && *in.TimeRemaining < 0 {
		return invalid("time_remaining", "time_remaining must not be negative")
	}
	return nil
}

// Equipment builds a new record from the input, deriving the next service date.
func (in *EquipmentInput) Equipment() *Equipment {
	e := &Equipment{
		Name:            in.Name,
		Type:            in.Type,
		Status:          in.Status,
		NextMaintenance: in.NextMaintenance,
		TimeRemaining:   in.TimeRemaining,
		Notes:           in.Notes,
	}
	if in.LastMaintenance != nil {
		e.SetLastMaintenance(*in.LastMaintenance)
	}
	return e
}

// EquipmentPatch holds optional equipment field updates.
type EquipmentPatch struct {
	Name            *string    `json:"name"`
	Type            *string    `json:"type"`
	Status          *string    `json:"status"`
	LastMaintenance *time.Time `json:"last_maintenance"`
	NextMaintenance *time.Time `json:"next_maintenance"`
	TimeRemaining   *int       `json:"time_remaining"`
	Notes           *string    `json:"notes"`
}

// Validate checks the patch without applying it.
func (p *EquipmentPatch) Validate() error {
	if p.Name != nil {
		if err := required("name", *p.Name); err != nil {
			return err
		}
	}
	if p.Type != nil {
		if err := required("type", *p.Type); err != nil {
			return err
		}
	}
	if p.Status != nil && !ValidEquipmentStatus(*p.Status) {
		return invalid("status", "invalid status")
	}
	if p.TimeRemaining != nil && *p.TimeRemaining < 0 {
		return invalid("time_remaining", "time_remaining must not be negative")
	}
	return nil
}

// Apply writes the patch into e. A changed last maintenance date wins over an
// explicitly supplied next maintenance date.
func (p *EquipmentPatch) Apply(e *Equipment) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.TimeRemaining != nil {
		v := *p.TimeRemaining
		e.TimeRemaining = &v
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.NextMaintenance != nil {
		next := *p.NextMaintenance
		e.NextMaintenance = &next
	}
	if p.LastMaintenance != nil {
		e.SetLastMaintenance(*p.LastMaintenance)
	}
}

// EquipmentFilter narrows equipment list queries.
type EquipmentFilter struct {
	Status      string
	Maintenance string // derived maintenance status
	Page        Page
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, ignoring clock time and DST.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}
