package models

import "time"

// CommunityAlert is a moderator-published notice shown on the community feed.
type CommunityAlert struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null;size:255" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	Severity  string    `gorm:"size:10;default:'medium'" json:"severity"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (CommunityAlert) TableName() string { return "community_alerts" }

// Threat is a curated threat-intel entry backing the community stats page.
type Threat struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Category    string    `gorm:"size:100;index" json:"category"`
	Description string    `gorm:"type:text" json:"description"`
	Severity    string    `gorm:"size:10;default:'medium'" json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Threat) TableName() string { return "threats" }
