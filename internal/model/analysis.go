package model

import (
	"time"
)

// AnalysisResult 一次分析的结果，按创建时间倒序构成版本历史（最新即当前）
// 创建后不再修改，除关联的 Score 一并写入外
type AnalysisResult struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	RepositoryID int64     `gorm:"not null;index" json:"repository_id"`
	Summary      string    `gorm:"type:text;not null" json:"summary"`
	Strengths    string    `gorm:"type:text;not null" json:"strengths"`
	Improvements string    `gorm:"type:text;not null" json:"improvements"`
	Deleted      bool      `gorm:"default:false;index" json:"-"`
	CreateDate   time.Time `gorm:"index" json:"create_date"`

	// 关联
	Repository *Repository `gorm:"foreignKey:RepositoryID" json:"repository,omitempty"`
	Score      *Score      `gorm:"foreignKey:AnalysisResultID" json:"score,omitempty"`
}

func (AnalysisResult) TableName() string {
	return "analysis_results"
}

// Score 与 AnalysisResult 一对一，评分上限：README 30 / TEST 30 / COMMIT 25 / CICD 15
type Score struct {
	ID               int64 `gorm:"primaryKey" json:"id"`
	AnalysisResultID int64 `gorm:"not null;uniqueIndex" json:"analysis_result_id"`
	ReadmeScore      int   `gorm:"not null" json:"readme_score"`
	TestScore        int   `gorm:"not null" json:"test_score"`
	CommitScore      int   `gorm:"not null" json:"commit_score"`
	CicdScore        int   `gorm:"not null" json:"cicd_score"`
}

func (Score) TableName() string {
	return "scores"
}

// TotalScore 总分为四项之和
func (s *Score) TotalScore() int {
	return s.ReadmeScore + s.TestScore + s.CommitScore + s.CicdScore
}
