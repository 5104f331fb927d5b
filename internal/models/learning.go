package models

import "time"

type LearningModule struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null;size:255" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:100" json:"category"`
	Difficulty  string    `gorm:"size:20;default:'beginner'" json:"difficulty"`
	Position    int       `gorm:"default:0" json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

func (LearningModule) TableName() string { return "learning_modules" }

type LearningProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_learning_progress_user_module" json:"user_id"`
	ModuleID    uint       `gorm:"not null;uniqueIndex:idx_learning_progress_user_module" json:"module_id"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	Score       int        `gorm:"default:0" json:"score"`
	CompletedAt *time.Time `json:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (LearningProgress) TableName() string { return "learning_progress" }
