package model

import (
	"time"

	"github.com/google/uuid"
)

// VestColor is the safety vest classification recorded for a driver
type VestColor string

const (
	VestGreen  VestColor = "green"
	VestYellow VestColor = "yellow"
	VestOrange VestColor = "orange"
	VestRed    VestColor = "red"
	VestOther  VestColor = "other"
)

// Valid reports whether c is one of the known vest colors
func (c VestColor) Valid() bool {
	switch c {
	case VestGreen, VestYellow, VestOrange, VestRed, VestOther:
		return true
	}
	return false
}

// Vehicle represents a tracked van in the roster
type Vehicle struct {
	ID               int64
	Plate            string
	DriverName       string
	VestColor        VestColor
	ResponsibleName  *string
	DriverPhone      *string
	ResponsiblePhone *string
	LastSeen         *time.Time
	PreviousSeen     *time.Time
}

// VehicleFields holds the admin-editable columns of a vehicle.
// Sighting timestamps are deliberately absent.
type VehicleFields struct {
	Plate            string
	DriverName       string
	VestColor        VestColor
	ResponsibleName  *string
	DriverPhone      *string
	ResponsiblePhone *string
}

// CodeType distinguishes daily team codes from the admin code
type CodeType string

const (
	CodeTypeDaily CodeType = "daily"
	CodeTypeAdmin CodeType = "admin"
)

// AccessCode is a shared login secret scoped to a calendar date
type AccessCode struct {
	ID        uuid.UUID
	Code      string
	Type      CodeType
	Date      string // YYYY-MM-DD
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role is the session role carried in the auth_role cookie
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// AccessLogEntry records a successful team login
type AccessLogEntry struct {
	ID         uuid.UUID
	CodeUsed   string
	UserType   CodeType
	AccessedAt time.Time
	IP         string
}
