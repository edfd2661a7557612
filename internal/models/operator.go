package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is an operator's role in the ledger.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAccountant Role = "accountant"
	RoleDriver     Role = "driver"
	RoleViewer     Role = "viewer"
)

// Ledger permissions checked by the API middleware.
const (
	PermViewLedger     = "view_ledger"
	PermManageReceipts = "manage_receipts"
	PermManageVehicles = "manage_vehicles"
	PermManageTrips    = "manage_trips"
)

// Operator is an account allowed to use the ledger API.
type Operator struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	DisplayName  string             `bson:"display_name" json:"display_name"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string   `json:"token"`
	Operator Operator `json:"operator"`
}

// Claims are the identity fields carried in an access token.
type Claims struct {
	OperatorID string `json:"operator_id"`
	Username   string `json:"username"`
	Role       Role   `json:"role"`
	Exp        int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleOwner, RoleAccountant, RoleDriver, RoleViewer:
		return true
	default:
		return false
	}
}

// RoleAllows reports whether the role grants the permission.
func RoleAllows(role Role, permission string) bool {
	switch role {
	case RoleOwner:
		return true
	case RoleAccountant:
		return permission == PermViewLedger || permission == PermManageReceipts
	case RoleDriver:
		return permission == PermViewLedger || permission == PermManageTrips
	case RoleViewer:
		return permission == PermViewLedger
	default:
		return false
	}
}

// HasPermission checks if the operator may perform an action.
func (o *Operator) HasPermission(permission string) bool {
	return o.IsActive && RoleAllows(o.Role, permission)
}
