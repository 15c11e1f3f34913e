package github

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"
)

const communityWindowMonths = 6

// Fetcher 按接口封装 GitHub 数据拉取
// 统一策略：仓库基本信息的 404 向上抛，其余接口的 404 降级为空结果，
// 保证没有 README / 没有 CI 配置的仓库也能完整走完分析流程
type Fetcher struct {
	client *Client
}

func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchRepositoryInfo 仓库基本信息，不存在时返回 ErrNotFound
func (f *Fetcher) FetchRepositoryInfo(ctx context.Context, owner, repo string) (*RepoInfo, error) {
	var info RepoInfo
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	if err := f.client.Get(ctx, path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchCommits 最近提交，since 为窗口起点
func (f *Fetcher) FetchCommits(ctx context.Context, owner, repo string, since time.Time) ([]Commit, error) {
	var commits []Commit
	path := fmt.Sprintf("/repos/%s/%s/commits?since=%s&per_page=100",
		url.PathEscape(owner), url.PathEscape(repo),
		url.QueryEscape(since.UTC().Format(time.RFC3339)))

	if err := f.client.GetList(ctx, path, &commits); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Commit{}, nil
		}
		return nil, err
	}
	return commits, nil
}

// FetchReadme README 原文，不存在或为空时返回空字符串
func (f *Fetcher) FetchReadme(ctx context.Context, owner, repo string) (string, error) {
	path := fmt.Sprintf("/repos/%s/%s/readme", url.PathEscape(owner), url.PathEscape(repo))
	content, err := f.client.GetRaw(ctx, path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return content, nil
}

// FetchTree 递归文件树，空仓库或分支不存在时返回 nil
// truncated=true 表示 GitHub 只返回了部分文件树，向上传递而不是当作完整结果
func (f *Fetcher) FetchTree(ctx context.Context, owner, repo, branch string) (*Tree, error) {
	var tree Tree
	path := fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1",
		url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(branch))

	if err := f.client.Get(ctx, path, &tree); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(tree.Tree) == 0 {
		return nil, nil
	}
	if tree.Truncated {
		log.Printf("⚠️ 文件树被截断: %s/%s@%s，分类结果基于部分文件", owner, repo, branch)
	}
	return &tree, nil
}

// FetchIssues 最近 6 个月创建的纯 issue（排除 PR 伪装的条目）
func (f *Fetcher) FetchIssues(ctx context.Context, owner, repo string) ([]Issue, error) {
	var all []Issue
	path := fmt.Sprintf("/repos/%s/%s/issues?state=all&per_page=100",
		url.PathEscape(owner), url.PathEscape(repo))

	if err := f.client.GetList(ctx, path, &all); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Issue{}, nil
		}
		return nil, err
	}

	threshold := sixMonthsAgo()
	issues := make([]Issue, 0, len(all))
	for _, issue := range all {
		if !issue.IsPureIssue() {
			continue
		}
		if ParseTime(issue.CreatedAt).After(threshold) {
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// FetchPullRequests 最近 6 个月创建的 PR
func (f *Fetcher) FetchPullRequests(ctx context.Context, owner, repo string) ([]PullRequest, error) {
	var all []PullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls?state=all&per_page=100",
		url.PathEscape(owner), url.PathEscape(repo))

	if err := f.client.GetList(ctx, path, &all); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []PullRequest{}, nil
		}
		return nil, err
	}

	threshold := sixMonthsAgo()
	prs := make([]PullRequest, 0, len(all))
	for _, pr := range all {
		if ParseTime(pr.CreatedAt).After(threshold) {
			prs = append(prs, pr)
		}
	}
	return prs, nil
}

// FetchLanguages 语言字节数统计，不存在时返回空 map
func (f *Fetcher) FetchLanguages(ctx context.Context, owner, repo string) (map[string]int, error) {
	languages := make(map[string]int)
	path := fmt.Sprintf("/repos/%s/%s/languages", url.PathEscape(owner), url.PathEscape(repo))

	if err := f.client.Get(ctx, path, &languages); err != nil {
		if errors.Is(err, ErrNotFound) {
			return map[string]int{}, nil
		}
		return nil, err
	}
	return languages, nil
}

func sixMonthsAgo() time.Time {
	return time.Now().AddDate(0, -communityWindowMonths, 0)
}

// ParseTime 解析 GitHub 时间戳
// 解析失败时返回零值时间（最早可能时刻），单条脏数据不影响整批结果
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseTimePtr 同 ParseTime，但空值/解析失败返回 nil
func ParseTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
