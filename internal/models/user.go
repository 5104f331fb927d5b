package models

import (
	"time"
)

// Role values for User.Role.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Account status values.
const (
	AccountActive    = "active"
	AccountSuspended = "suspended"
	AccountDeleted   = "deleted"
)

// Risk tier values.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

type User struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Email         string `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password      string `gorm:"not null" json:"-"`
	FirstName     string `gorm:"size:100" json:"first_name"`
	LastName      string `gorm:"size:100" json:"last_name"`
	Bio           string `gorm:"size:500" json:"bio"`
	RiskTier      string `gorm:"size:10;default:'LOW'" json:"risk_tier"`
	Role          string `gorm:"size:20;default:'user'" json:"role"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`
	IsAdmin       bool   `gorm:"default:false" json:"is_admin"`
	AccountStatus string `gorm:"size:20;default:'active'" json:"account_status"`

	EmailVerified    bool       `gorm:"default:false" json:"email_verified"`
	VerificationCode string     `gorm:"size:6" json:"-"`
	CodeExpiresAt    *time.Time `json:"-"`

	// Opaque token embedded in the forward+<token>@domain address.
	ForwardToken *string `gorm:"size:64;uniqueIndex" json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login"`
}

// DisplayName is the name shown on reports and leaderboards.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return "Anonymous"
	}
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin || u.IsAdmin
}

func (u *User) HasAdminAccess() bool {
	return u.IsAdmin || u.Role == RoleAdmin
}
