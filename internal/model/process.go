package model

import "time"

// LaundryProcess is a configurable wash-cycle template.
type LaundryProcess struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description,omitempty" db:"description"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Temperature     int       `json:"temperature" db:"temperature"`
	DetergentAmount float64   `json:"detergent_amount" db:"detergent_amount"`
	SoftenerAmount  float64   `json:"softener_amount" db:"softener_amount"`
	BleachAmount    float64   `json:"bleach_amount" db:"bleach_amount"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// LaundryProcessInput is the body of a process creation request.
type LaundryProcessInput struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	Temperature     int     `json:"temperature"`
	DetergentAmount float64 `json:"detergent_amount"`
	SoftenerAmount  float64 `json:"softener_amount"`
	BleachAmount    float64 `json:"bleach_amount"`
	IsActive        *bool   `json:"is_active"`
}

// Validate checks required fields and amounts.
func (in *LaundryProcessInput) Validate() error {
	if err := required("name", in.Name); err != nil {
		return err
	}
	if in.DurationMinutes <= 0 {
		return invalid("duration_minutes", "duration_minutes must be positive")
	}
	return nonNegative(map[string]float64{
		"detergent_amount": in.DetergentAmount,
		"softener_amount":  in.SoftenerAmount,
		"bleach_amount":    in.BleachAmount,
	})
}

// Process builds a new record from the input. Processes are active unless
// stated otherwise.
func (in *LaundryProcessInput) Process() *LaundryProcess {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &LaundryProcess{
		Name:            in.Name,
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		Temperature:     in.Temperature,
		DetergentAmount: in.DetergentAmount,
		SoftenerAmount:  in.SoftenerAmount,
		BleachAmount:    in.BleachAmount,
		IsActive:        active,
	}
}

// LaundryProcessPatch holds optional process field updates.
type LaundryProcessPatch struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	DurationMinutes *int     `json:"duration_minutes"`
	Temperature     *int     `json:"temperature"`
	DetergentAmount *float64 `json:"detergent_amount"`
	SoftenerAmount  *float64 `json:"softener_amount"`
	BleachAmount    *float64 `json:"bleach_amount"`
	IsActive        *bool    `json:"is_active"`
}

// Validate checks the patch without applying it.
func (p *LaundryProcessPatch) Validate() error {
	if p.Name != nil {
		if err := required("name", *p.Name); err != nil {
			return err
		}
	}
	if p.DurationMinutes != nil && *p.DurationMinutes <= 0 {
		return invalid("duration_minutes", "duration_minutes must be positive")
	}
	amounts := map[string]float64{}
	if p.DetergentAmount != nil {
		amounts["detergent_amount"] = *p.DetergentAmount
	}
	if p.SoftenerAmount != nil {
		amounts["softener_amount"] = *p.SoftenerAmount
	}
	if p.BleachAmount != nil {
		amounts["bleach_amount"] = *p.BleachAmount
	}
	return nonNegative(amounts)
}

// Apply writes the patch into lp.
func (p *LaundryProcessPatch) Apply(lp *LaundryProcess) {
	if p.Name != nil {
		lp.Name = *p.Name
	}
	if p.Description != nil {
		lp.Description = *p.Description
	}
	if p.DurationMinutes != nil {
		lp.DurationMinutes = *p.DurationMinutes
	}
	if p.Temperature != nil {
		lp.Temperature = *p.Temperature
	}
	if p.DetergentAmount != nil {
		lp.DetergentAmount = *p.DetergentAmount
	}
	if p.SoftenerAmount != nil {
		lp.SoftenerAmount = *p.SoftenerAmount
	}
	if p.BleachAmount != nil {
		lp.BleachAmount = *p.BleachAmount
	}
	if p.IsActive != nil {
		lp.IsActive = *p.IsActive
	}
}
