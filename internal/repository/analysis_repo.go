package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/repoeval_go_server/internal/model"
)

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// CreateWithScore 在同一事务里先写分析结果再写评分，保证外键顺序
func (r *AnalysisRepository) CreateWithScore(result *model.AnalysisResult, score *model.Score) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		score.AnalysisResultID = result.ID
		return tx.Create(score).Error
	})
}

func (r *AnalysisRepository) GetByID(id int64) (*model.AnalysisResult, error) {
	var result model.AnalysisResult
	err := r.db.Preload("Score").Where("id = ? AND deleted = ?", id, false).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByRepositoryID 仓库的分析版本历史，最新在前
func (r *AnalysisRepository) ListByRepositoryID(repositoryID int64) ([]*model.AnalysisResult, error) {
	var results []*model.AnalysisResult
	err := r.db.Preload("Score").
		Where("repository_id = ? AND deleted = ?", repositoryID, false).
		Order("create_date DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetLatestByRepositoryID 仓库的当前版本
func (r *AnalysisRepository) GetLatestByRepositoryID(repositoryID int64) (*model.AnalysisResult, error) {
	var result model.AnalysisResult
	err := r.db.Preload("Score").
		Where("repository_id = ? AND deleted = ?", repositoryID, false).
		Order("create_date DESC").First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *AnalysisRepository) CountByRepositoryID(repositoryID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.AnalysisResult{}).
		Where("repository_id = ? AND deleted = ?", repositoryID, false).
		Count(&count).Error
	return count, err
}

// SoftDelete 软删除单个分析版本
func (r *AnalysisRepository) SoftDelete(id int64) error {
	return r.db.Model(&model.AnalysisResult{}).Where("id = ?", id).
		Update("deleted", true).Error
}
