package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/repoeval_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%d@example.com", time.Now().UnixNano())
	user := &model.User{
		Username: fmt.Sprintf("testuser_%d", time.Now().UnixNano()%1000000),
		Email:    &email,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// TestRepository 创建测试仓库
func TestRepository(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Repository)) *model.Repository {
	t.Helper()

	repo := &model.Repository{
		UserID:     userID,
		Name:       "example/repo",
		HTMLURL:    fmt.Sprintf("https://github.com/example/repo-%d", time.Now().UnixNano()),
		MainBranch: "main",
		Languages:  model.StringArray{"Go"},
	}

	for _, opt := range opts {
		opt(repo)
	}

	if err := db.Create(repo).Error; err != nil {
		t.Fatalf("Failed to create test repository: %v", err)
	}

	return repo
}

// WithHTMLURL 设置仓库地址
func WithHTMLURL(url string) func(*model.Repository) {
	return func(r *model.Repository) {
		r.HTMLURL = url
	}
}

// WithPublic 设为公开仓库
func WithPublic() func(*model.Repository) {
	return func(r *model.Repository) {
		r.PublicRepository = true
	}
}

// TestAnalysisResult 创建一条带评分的分析结果
func TestAnalysisResult(t *testing.T, db *gorm.DB, repositoryID int64, opts ...func(*model.AnalysisResult)) *model.AnalysisResult {
	t.Helper()

	result := &model.AnalysisResult{
		RepositoryID: repositoryID,
		Summary:      "整体质量良好",
		Strengths:    "- 文档完整",
		Improvements: "- 缺少 CI",
		CreateDate:   time.Now(),
	}

	for _, opt := range opts {
		opt(result)
	}

	if err := db.Create(result).Error; err != nil {
		t.Fatalf("Failed to create test analysis result: %v", err)
	}

	score := &model.Score{
		AnalysisResultID: result.ID,
		ReadmeScore:      20,
		TestScore:        15,
		CommitScore:      18,
		CicdScore:        10,
	}
	if err := db.Create(score).Error; err != nil {
		t.Fatalf("Failed to create test score: %v", err)
	}
	result.Score = score

	return result
}

// WithCreateDate 设置分析时间，用于构造版本历史
func WithCreateDate(at time.Time) func(*model.AnalysisResult) {
	return func(a *model.AnalysisResult) {
		a.CreateDate = at
	}
}
