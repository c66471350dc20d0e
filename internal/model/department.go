package model

import "time"

// Department is a hospital unit that requests laundry work and is billed for it.
type Department struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Location    string    `json:"location,omitempty" db:"location"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// DepartmentInput is the writable part of a department.
type DepartmentInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Validate checks required fields.
func (in *DepartmentInput) Validate() error {
	return required("name", in.Name)
}

// DepartmentPatch holds optional department field updates.
type DepartmentPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

// Apply validates the patch and writes its fields into d.
func (p *DepartmentPatch) Apply(d *Department) error {
	if p.Name != nil {
		if err := required("name", *p.Name); err != nil {
			return err
		}
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Location != nil {
		d.Location = *p.Location
	}
	return nil
}
