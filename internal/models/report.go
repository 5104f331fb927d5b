package models

import (
	"time"
)

// Report status values.
const (
	ReportPending  = "pending"
	ReportApproved = "approved"
	ReportVerified = "verified"
	ReportRejected = "rejected"
)

// Urgency values.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Vote directions.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Report is a community-submitted scam/threat report.
type Report struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	ThreatType  string `gorm:"not null;size:100;index" json:"threat_type"`
	Description string `gorm:"not null;type:text" json:"description"`
	Location    string `gorm:"size:255" json:"location"`
	Urgency     string `gorm:"size:10;default:'medium';index" json:"urgency"`
	Status      string `gorm:"size:20;default:'pending';index" json:"status"`
	Verified    bool   `gorm:"default:false" json:"verified"`
	Upvotes     int    `gorm:"default:0" json:"upvotes"`
	Downvotes   int    `gorm:"default:0" json:"downvotes"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Report) TableName() string { return "community_reports" }

// ReportVote records a single user's vote on a report.
// At most one row exists per (report, user).
type ReportVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReportID  uint      `gorm:"not null;uniqueIndex:idx_report_votes_report_user" json:"report_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_report_votes_report_user" json:"user_id"`
	Direction string    `gorm:"not null;size:4" json:"direction"`
	CreatedAt time.Time `json:"created_at"`
}

func (ReportVote) TableName() string { return "report_votes" }

type ReportMedia struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReportID  uint      `gorm:"not null;index" json:"report_id"`
	URL       string    `gorm:"not null;size:1024" json:"url"`
	MediaType string    `gorm:"size:10;default:'image'" json:"media_type"`
	CreatedAt time.Time `json:"created_at"`
}

func (ReportMedia) TableName() string { return "community_report_media" }

type ReportComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReportID  uint      `gorm:"not null;index" json:"report_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Body      string    `gorm:"not null;type:text" json:"body"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ReportComment) TableName() string { return "community_report_comments" }
