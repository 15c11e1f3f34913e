package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/qs3c/repoeval_go_server/config"
	"github.com/qs3c/repoeval_go_server/internal/mapper"
	"github.com/qs3c/repoeval_go_server/internal/model/dto"
	"github.com/qs3c/repoeval_go_server/internal/pkg/github"
)

var (
	ErrInvalidGithubURL = errors.New("无效的 GitHub 仓库地址")
	ErrRepoTooLarge     = errors.New("仓库体积超过分析上限")
)

// 提交统计窗口 90 天
const commitWindowDays = 90

var githubURLPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)

// ParseGithubURL 解析标准 https 仓库地址，返回 owner 和 repo
func ParseGithubURL(rawURL string) (string, string, error) {
	m := githubURLPattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidGithubURL, rawURL)
	}
	return m[1], m[2], nil
}

// CollectResult 一次采集的完整产出
type CollectResult struct {
	Data      *dto.RepositoryData
	Info      *github.RepoInfo
	Languages []string
}

// RepoDataService 分阶段拉取 GitHub 数据并运行分类器
// notify 回调用于上报进度，传 nil 时静默执行
type RepoDataService struct {
	fetcher *github.Fetcher
	cfg     *config.AnalysisConfig
}

func NewRepoDataService(fetcher *github.Fetcher, cfg *config.AnalysisConfig) *RepoDataService {
	return &RepoDataService{fetcher: fetcher, cfg: cfg}
}

// Collect 按固定顺序采集：元信息（含体积校验）→ 提交 → README → 文件树 → 社区 → 语言
// 元信息拉不到直接失败，其余接口缺数据时分类器填零值继续
func (s *RepoDataService) Collect(ctx context.Context, owner, repo string, notify func(message string)) (*CollectResult, error) {
	if notify == nil {
		notify = func(string) {}
	}
	data := dto.NewRepositoryData()

	notify("正在获取仓库基本信息")
	info, err := s.fetcher.FetchRepositoryInfo(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	if info.Size > s.cfg.MaxRepoSizeKB {
		return nil, fmt.Errorf("%w: %d KB > %d KB", ErrRepoTooLarge, info.Size, s.cfg.MaxRepoSizeKB)
	}
	mapper.MapBasicInfo(data, info)

	notify("正在分析提交历史")
	since := time.Now().AddDate(0, 0, -commitWindowDays)
	commits, err := s.fetcher.FetchCommits(ctx, owner, repo, since)
	if err != nil {
		return nil, err
	}
	mapper.MapCommitInfo(data, commits)

	notify("正在分析 README")
	readme, err := s.fetcher.FetchReadme(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	mapper.MapReadmeInfo(data, readme)

	notify("正在分析文件结构")
	tree, err := s.fetcher.FetchTree(ctx, owner, repo, info.DefaultBranch)
	if err != nil {
		return nil, err
	}
	if tree != nil && tree.Truncated {
		log.Printf("仓库 %s/%s 文件树被截断，结构类特征不完整", owner, repo)
		data.TreeTruncated = true
	}
	mapper.MapSecurityInfo(data, tree)
	mapper.MapTestInfo(data, tree)
	mapper.MapCicdInfo(data, tree)

	notify("正在分析社区活跃度")
	issues, err := s.fetcher.FetchIssues(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	mapper.MapIssueInfo(data, issues)

	prs, err := s.fetcher.FetchPullRequests(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	mapper.MapPullRequestInfo(data, prs)

	langBytes, err := s.fetcher.FetchLanguages(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	return &CollectResult{
		Data:      data,
		Info:      info,
		Languages: sortedLanguages(langBytes),
	}, nil
}

// sortedLanguages 按代码量从大到小排列语言名
func sortedLanguages(langBytes map[string]int) []string {
	names := make([]string, 0, len(langBytes))
	for name := range langBytes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if langBytes[names[i]] != langBytes[names[j]] {
			return langBytes[names[i]] > langBytes[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
