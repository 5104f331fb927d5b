package models

import "time"

// PointLogEntry is the append-only reputation ledger. A user's displayed
// points are always the sum of their rows; nothing else stores a total.
type PointLogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ReportID  *uint     `gorm:"index" json:"report_id,omitempty"`
	Points    int       `gorm:"not null" json:"points"`
	Reason    string    `gorm:"not null;size:255" json:"reason"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (PointLogEntry) TableName() string { return "user_point_log" }
