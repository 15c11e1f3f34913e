package dto

// AnalyzeRequest 发起分析请求
type AnalyzeRequest struct {
	GithubURL string `json:"github_url" binding:"required"`
}

// AnalyzeResponse 分析完成后返回仓库 ID
type AnalyzeResponse struct {
	RepositoryID int64 `json:"repository_id"`
}

// RepositoryItem 仓库列表项
type RepositoryItem struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	HTMLURL          string   `json:"html_url"`
	MainBranch       string   `json:"main_branch"`
	PublicRepository bool     `json:"public_repository"`
	Languages        []string `json:"languages"`
	CreatedAt        string   `json:"created_at"`
}

// AnalysisVersion 历史记录中的单个分析版本，最新的版本号最大
type AnalysisVersion struct {
	AnalysisID int64  `json:"analysis_id"`
	Version    int    `json:"version"`
	Summary    string `json:"summary"`
	TotalScore int    `json:"total_score"`
	CreateDate string `json:"create_date"`
}

// HistoryResponse 仓库分析历史
type HistoryResponse struct {
	Repository *RepositoryItem   `json:"repository"`
	Versions   []AnalysisVersion `json:"versions"`
}

// ScoreDetail 单项评分与总分
type ScoreDetail struct {
	ReadmeScore int `json:"readme_score"`
	TestScore   int `json:"test_score"`
	CommitScore int `json:"commit_score"`
	CicdScore   int `json:"cicd_score"`
	TotalScore  int `json:"total_score"`
}

// AnalysisDetail 分析结果详情
type AnalysisDetail struct {
	AnalysisID   int64       `json:"analysis_id"`
	RepositoryID int64       `json:"repository_id"`
	Summary      string      `json:"summary"`
	Strengths    string      `json:"strengths"`
	Improvements string      `json:"improvements"`
	Score        ScoreDetail `json:"score"`
	CreateDate   string      `json:"create_date"`
}

// ComparisonItem 比较视图：仓库及其最新一次分析的评分
type ComparisonItem struct {
	RepositoryID int64       `json:"repository_id"`
	Name         string      `json:"name"`
	HTMLURL      string      `json:"html_url"`
	AnalysisID   int64       `json:"analysis_id"`
	Score        ScoreDetail `json:"score"`
	AnalyzedAt   string      `json:"analyzed_at"`
}
