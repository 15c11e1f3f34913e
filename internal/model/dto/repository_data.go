package dto

import (
	"time"
)

// RepositoryData 分析流水线收集到的全部特征，六大类：
// 元信息 / 维护性 / 文档 / 安全 / 测试 / CI-CD / 社区。
// 列表字段一律默认空切片，保证序列化给 AI 评分时字段完整且确定。
// 各分类器增量填充，交给评分阶段后不再修改。
type RepositoryData struct {
	// 元信息
	RepositoryName      string    `json:"repositoryName"`
	RepositoryURL       string    `json:"repositoryUrl"`
	Description         string    `json:"description"`
	PrimaryLanguage     string    `json:"primaryLanguage"`
	RepositoryCreatedAt time.Time `json:"repositoryCreatedAt"`

	// 维护性（提交）
	LastCommitDate      *time.Time   `json:"lastCommitDate"`
	DaysSinceLastCommit int          `json:"daysSinceLastCommit"`
	CommitCountLast90d  int          `json:"commitCountLast90Days"`
	RecentCommits       []CommitInfo `json:"recentCommits"`

	// 文档质量
	HasReadme           bool     `json:"hasReadme"`
	ReadmeLength        int      `json:"readmeLength"`
	ReadmeSectionCount  int      `json:"readmeSectionCount"`
	ReadmeSectionTitles []string `json:"readmeSectionTitles"`

	// 安全
	HasSensitiveFile   bool     `json:"hasSensitiveFile"`
	SensitiveFilePaths []string `json:"sensitiveFilePaths"`
	HasBuildFile       bool     `json:"hasBuildFile"`
	BuildFiles         []string `json:"buildFiles"`

	// 测试
	HasTestDirectory  bool    `json:"hasTestDirectory"`
	TestFileCount     int     `json:"testFileCount"`
	SourceFileCount   int     `json:"sourceFileCount"`
	TestCoverageRatio float64 `json:"testCoverageRatio"`

	// CI/CD
	HasCICD       bool     `json:"hasCICD"`
	CicdFiles     []string `json:"cicdFiles"`
	HasDockerfile bool     `json:"hasDockerfile"`

	// 社区活跃度（最近 6 个月）
	IssueCountLast6Months       int               `json:"issueCountLast6Months"`
	ClosedIssueCountLast6Months int               `json:"closedIssueCountLast6Months"`
	PRCountLast6Months          int               `json:"pullRequestCountLast6Months"`
	MergedPRCountLast6Months    int               `json:"mergedPullRequestCountLast6Months"`
	RecentIssues                []IssueInfo       `json:"recentIssues"`
	RecentPullRequests          []PullRequestInfo `json:"recentPullRequests"`

	// 文件树被截断时为 true，评分提示词中会带上该标记
	TreeTruncated bool `json:"treeTruncated"`
}

type CommitInfo struct {
	Message       string    `json:"message"`
	CommittedDate time.Time `json:"committedDate"`
}

type IssueInfo struct {
	Title     string     `json:"title"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"createdAt"`
	ClosedAt  *time.Time `json:"closedAt"`
}

type PullRequestInfo struct {
	Title     string     `json:"title"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"createdAt"`
	MergedAt  *time.Time `json:"mergedAt"`
}

// NewRepositoryData 返回所有列表字段均为空切片的特征记录
func NewRepositoryData() *RepositoryData {
	return &RepositoryData{
		RecentCommits:       []CommitInfo{},
		ReadmeSectionTitles: []string{},
		SensitiveFilePaths:  []string{},
		BuildFiles:          []string{},
		CicdFiles:           []string{},
		RecentIssues:        []IssueInfo{},
		RecentPullRequests:  []PullRequestInfo{},
	}
}
