package github

import "time"

// RepoInfo /repos/{owner}/{repo} 响应
type RepoInfo struct {
	Name          string     `json:"name"`
	FullName      string     `json:"full_name"`
	Private       bool       `json:"private"`
	Description   string     `json:"description"`
	HTMLURL       string     `json:"html_url"`
	Language      string     `json:"language"`
	DefaultBranch string     `json:"default_branch"`
	CreatedAt     *time.Time `json:"created_at"`
	Size          int        `json:"size"` // 单位 KB
}

// Commit /repos/{owner}/{repo}/commits 响应元素
type Commit struct {
	Commit *CommitDetail `json:"commit"`
}

type CommitDetail struct {
	Message string        `json:"message"`
	Author  *CommitAuthor `json:"author"`
}

type CommitAuthor struct {
	Date string `json:"date"`
}

// Issue /repos/{owner}/{repo}/issues 响应元素
// GitHub 会把 PR 也列在 issues 里，带 pull_request 字段
type Issue struct {
	Number      int64            `json:"number"`
	Title       string           `json:"title"`
	State       string           `json:"state"`
	CreatedAt   string           `json:"created_at"`
	ClosedAt    string           `json:"closed_at"`
	PullRequest *PullRequestLink `json:"pull_request"`
}

type PullRequestLink struct {
	URL string `json:"url"`
}

// IsPureIssue 排除 PR 伪装的 issue
func (i *Issue) IsPureIssue() bool {
	return i.PullRequest == nil
}

func (i *Issue) IsClosed() bool {
	return i.State == "closed"
}

// PullRequest /repos/{owner}/{repo}/pulls 响应元素
type PullRequest struct {
	Number    int64  `json:"number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	CreatedAt string `json:"created_at"`
	MergedAt  string `json:"merged_at"`
}

// Tree /repos/{owner}/{repo}/git/trees/{sha}?recursive=1 响应
type Tree struct {
	Tree      []TreeItem `json:"tree"`
	Truncated bool       `json:"truncated"`
}

type TreeItem struct {
	Path string `json:"path"`
	Type string `json:"type"` // blob / tree
}

// BlobPaths 返回所有文件（非目录）路径
func (t *Tree) BlobPaths() []string {
	if t == nil {
		return nil
	}
	paths := make([]string, 0, len(t.Tree))
	for _, item := range t.Tree {
		if item.Type == "blob" && item.Path != "" {
			paths = append(paths, item.Path)
		}
	}
	return paths
}

// AllPaths 返回包括目录在内的全部路径
func (t *Tree) AllPaths() []string {
	if t == nil {
		return nil
	}
	paths := make([]string, 0, len(t.Tree))
	for _, item := range t.Tree {
		if item.Path != "" {
			paths = append(paths, item.Path)
		}
	}
	return paths
}
