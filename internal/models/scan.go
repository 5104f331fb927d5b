package models

import (
	"time"

	"gorm.io/datatypes"
)

// Scan is a persisted classifier run, either from the analyze endpoint or
// from the inbound-email webhook. Message is capped at 10k characters and
// RiskScore is stored as a 0-100 integer.
type Scan struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Message    string         `gorm:"type:text" json:"message"`
	RiskLevel  string         `gorm:"size:20;index" json:"risk_level"`
	RiskScore  int            `gorm:"default:0" json:"risk_score"`
	ThreatType string         `gorm:"size:100" json:"threat_type"`
	Analysis   datatypes.JSON `json:"analysis"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (Scan) TableName() string { return "user_scans" }
