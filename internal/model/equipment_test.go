package model

import (
	"testing"
	"time"
)

func TestSetLastMaintenanceSchedulesNext(t *testing.T) {
	d := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	e := &Equipment{}
	e.SetLastMaintenance(d)

	want := d.AddDate(0, 0, 90)
	if e.NextMaintenance == nil || !e.NextMaintenance.Equal(want) {
		t.Fatalf("next maintenance = %v, want %v", e.NextMaintenance, want)
	}
	if !want.Equal(time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected interval arithmetic: %v", want)
	}
}

func TestPatchKeepsManualNextWhenLastUnchanged(t *testing.T) {
	last := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	e := &Equipment{}
	e.SetLastMaintenance(last)

	manual := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	(&EquipmentPatch{LastMaintenance: &last, NextMaintenance: &manual}).Apply(e)
	if !e.NextMaintenance.Equal(manual) {
		t.Errorf("expected manual next %v, got %v", manual, e.NextMaintenance)
	}

	newLast := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	(&EquipmentPatch{LastMaintenance: &newLast, NextMaintenance: &manual}).Apply(e)
	if want := newLast.AddDate(0, 0, 90); !e.NextMaintenance.Equal(want) {
		t.Errorf("expected derived next %v, got %v", want, e.NextMaintenance)
	}
}

func TestMaintenanceStatus(t *testing.T) {
	now := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)
	at := func(days int) *time.Time {
		v := now.AddDate(0, 0, days)
		return &v
	}

	tests := []struct {
		name string
		next *time.Time
		want string
	}{
		{"yesterday", at(-1), MaintenanceOverdue},
		{"today", at(0), MaintenanceUpcoming},
		{"in 3 days", at(3), MaintenanceUpcoming},
		{"in 7 days", at(7), MaintenanceUpcoming},
		{"in 8 days", at(8), MaintenanceOK},
		{"in 30 days", at(30), MaintenanceOK},
		{"unscheduled", nil, MaintenanceUnscheduled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaintenanceStatus(tt.next, now); got != tt.want {
				t.Errorf("MaintenanceStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMaintenanceStatusEarlierToday(t *testing.T) {
	now := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)
	earlier := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	if got := MaintenanceStatus(&earlier, now); got != MaintenanceUpcoming {
		t.Errorf("service due earlier today should not be overdue, got %q", got)
	}
}
