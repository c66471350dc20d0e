package model

import (
	"fmt"
	"time"
)

// User is an authenticated account. A user may belong to a department.
type User struct {
	ID           int64      `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Name         string     `json:"name,omitempty" db:"name"`
	Email        string     `json:"email,omitempty" db:"email"`
	Role         string     `json:"role" db:"role"`
	DepartmentID *int64     `json:"department_id,omitempty" db:"department_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Roles.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSupervisor = "supervisor"
	RoleStaff      = "staff"
	RoleDepartment = "department"
	RoleInventory  = "inventory"
	RoleTechnician = "technician"
	RoleBilling    = "billing"
	RoleReports    = "reports"
)

// roleLevels orders roles for coarse gating. Specialist roles share a level.
var roleLevels = map[string]int{
	RoleAdmin:      100,
	RoleManager:    80,
	RoleSupervisor: 60,
	RoleInventory:  40,
	RoleTechnician: 40,
	RoleBilling:    40,
	RoleStaff:      30,
	RoleReports:    20,
	RoleDepartment: 10,
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	_, ok := roleLevels[role]
	return ok
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
// Unknown roles never pass.
func RoleAtLeast(role, minimum string) bool {
	have, ok := roleLevels[role]
	if !ok {
		return false
	}
	need, ok := roleLevels[minimum]
	if !ok {
		return false
	}
	return have >= need
}

// Features gate access to parts of the API.
const (
	FeatureDashboard   = "dashboard"
	FeatureTasks       = "tasks"
	FeatureTaskCreate  = "task_create"
	FeatureTaskAssign  = "task_assign"
	FeatureInventory   = "inventory"
	FeatureEquipment   = "equipment"
	FeatureProcesses   = "processes"
	FeatureBilling     = "billing"
	FeatureReports     = "reports"
	FeatureDepartments = "departments"
	FeatureUsers       = "users"
)

var roleFeatures = map[string][]string{
	RoleAdmin: {
		FeatureDashboard, FeatureTasks, FeatureTaskCreate, FeatureTaskAssign,
		FeatureInventory, FeatureEquipment, FeatureProcesses, FeatureBilling,
		FeatureReports, FeatureDepartments, FeatureUsers,
	},
	RoleManager: {
		FeatureDashboard, FeatureTasks, FeatureTaskCreate, FeatureTaskAssign,
		FeatureInventory, FeatureEquipment, FeatureProcesses, FeatureBilling,
		FeatureReports, FeatureDepartments,
	},
	RoleSupervisor: {
		FeatureDashboard, FeatureTasks, FeatureTaskCreate, FeatureTaskAssign,
		FeatureInventory, FeatureEquipment, FeatureProcesses,
	},
	RoleStaff:      {FeatureDashboard, FeatureTasks, FeatureTaskCreate},
	RoleDepartment: {FeatureDashboard, FeatureTasks, FeatureTaskCreate},
	RoleInventory:  {FeatureDashboard, FeatureInventory},
	RoleTechnician: {FeatureDashboard, FeatureEquipment},
	RoleBilling:    {FeatureDashboard, FeatureBilling, FeatureReports},
	RoleReports:    {FeatureDashboard, FeatureReports},
}

// CanAccess reports whether role grants feature.
func CanAccess(role, feature string) bool {
	for _, f := range roleFeatures[role] {
		if f == feature {
			return true
		}
	}
	return false
}

// Features returns the features granted to role.
func Features(role string) []string {
	return append([]string(nil), roleFeatures[role]...)
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	return nil
}
