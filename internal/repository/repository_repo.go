package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/repoeval_go_server/internal/model"
)

type RepositoryRepository struct {
	db *gorm.DB
}

func NewRepositoryRepository(db *gorm.DB) *RepositoryRepository {
	return &RepositoryRepository{db: db}
}

func (r *RepositoryRepository) Create(repo *model.Repository) error {
	return r.db.Create(repo).Error
}

func (r *RepositoryRepository) Update(repo *model.Repository) error {
	return r.db.Save(repo).Error
}

func (r *RepositoryRepository) GetByID(id int64) (*model.Repository, error) {
	var repo model.Repository
	err := r.db.Where("id = ? AND deleted = ?", id, false).First(&repo).Error
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

// GetByHTMLURLAndUserID 按唯一键查找，包含已软删除的记录：
// 重复分析同一仓库时复用原记录（必要时复活），保证唯一约束不被破坏
func (r *RepositoryRepository) GetByHTMLURLAndUserID(htmlURL string, userID int64) (*model.Repository, error) {
	var repo model.Repository
	err := r.db.Where("html_url = ? AND user_id = ?", htmlURL, userID).First(&repo).Error
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

// ListByUserID 用户的仓库列表，按最近更新排序
func (r *RepositoryRepository) ListByUserID(userID int64) ([]*model.Repository, error) {
	var repos []*model.Repository
	err := r.db.Where("user_id = ? AND deleted = ?", userID, false).
		Order("updated_at DESC").Find(&repos).Error
	if err != nil {
		return nil, err
	}
	return repos, nil
}

// SoftDelete 软删除仓库，同时软删除其全部分析版本
func (r *RepositoryRepository) SoftDelete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Repository{}).Where("id = ?", id).
			Update("deleted", true).Error; err != nil {
			return err
		}
		return tx.Model(&model.AnalysisResult{}).Where("repository_id = ?", id).
			Update("deleted", true).Error
	})
}

func (r *RepositoryRepository) SetPublic(id int64, public bool) error {
	return r.db.Model(&model.Repository{}).Where("id = ?", id).
		Update("public_repository", public).Error
}
