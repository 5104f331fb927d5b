package services

import (
	"errors"
	"time"

	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrModuleNotFound = errors.New("learning module not found")

type LearnService struct {
	db *gorm.DB
}

func NewLearnService(db *gorm.DB) *LearnService {
	return &LearnService{db: db}
}

// Modules lists every module with the user's progress merged in.
func (s *LearnService) Modules(userID uint) ([]dto.LearningModuleResponse, error) {
	var modules []models.LearningModule
	err := s.db.Order("position ASC, id ASC").Find(&modules).Error
	if err != nil {
		return nil, err
	}

	var progress []models.LearningProgress
	if err := s.db.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return nil, err
	}
	byModule := make(map[uint]models.LearningProgress, len(progress))
	for _, p := range progress {
		byModule[p.ModuleID] = p
	}

	out := make([]dto.LearningModuleResponse, 0, len(modules))
	for _, m := range modules {
		resp := dto.LearningModuleResponse{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Category:    m.Category,
			Difficulty:  m.Difficulty,
			Position:    m.Position,
		}
		if p, ok := byModule[m.ID]; ok {
			resp.Completed = p.Completed
			resp.Score = p.Score
		}
		out = append(out, resp)
	}
	return out, nil
}

// UpdateProgress upserts the user's progress row for a module. Scores only
// ever move up.
func (s *LearnService) UpdateProgress(userID, moduleID uint, req *dto.UpdateProgressRequest) (*dto.LearningModuleResponse, error) {
	var module models.LearningModule
	if err := s.db.First(&module, moduleID).Error; err != nil {
		return nil, ErrModuleNotFound
	}

	now := time.Now().UTC()

	var existing models.LearningProgress
	err := s.db.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		existing = models.LearningProgress{
			UserID:    userID,
			ModuleID:  moduleID,
			Completed: req.Completed,
			Score:     req.Score,
		}
		if req.Completed {
			existing.CompletedAt = &now
		}
		err = s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed", "score", "completed_at", "updated_at"}),
		}).Create(&existing).Error
	case err == nil:
		if req.Score > existing.Score {
			existing.Score = req.Score
		}
		if req.Completed && !existing.Completed {
			existing.Completed = true
			existing.CompletedAt = &now
		}
		err = s.db.Save(&existing).Error
	}
	if err != nil {
		return nil, err
	}

	return &dto.LearningModuleResponse{
		ID:          module.ID,
		Title:       module.Title,
		Description: module.Description,
		Category:    module.Category,
		Difficulty:  module.Difficulty,
		Position:    module.Position,
		Completed:   existing.Completed,
		Score:       existing.Score,
	}, nil
}
