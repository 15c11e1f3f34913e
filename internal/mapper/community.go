package mapper

import (
	"time"

	"github.com/qs3c/repoeval_go_server/internal/model/dto"
	"github.com/qs3c/repoeval_go_server/internal/pkg/github"
)

const recentItemLimit = 10

// MapIssueInfo 填充社区活跃度（Issue）特征
// 输入已由 Fetcher 限定在 6 个月窗口内且排除了 PR
func MapIssueInfo(data *dto.RepositoryData, issues []github.Issue) {
	if len(issues) == 0 {
		data.IssueCountLast6Months = 0
		data.ClosedIssueCountLast6Months = 0
		data.RecentIssues = []dto.IssueInfo{}
		return
	}

	closed := 0
	for i := range issues {
		if issues[i].IsClosed() {
			closed++
		}
	}
	data.IssueCountLast6Months = len(issues)
	data.ClosedIssueCountLast6Months = closed
	data.RecentIssues = extractRecentIssues(issues)
}

func extractRecentIssues(issues []github.Issue) []dto.IssueInfo {
	infos := make([]dto.IssueInfo, 0, recentItemLimit)
	for i := range issues {
		if len(infos) >= recentItemLimit {
			break
		}
		infos = append(infos, dto.IssueInfo{
			Title:     issues[i].Title,
			State:     issues[i].State,
			CreatedAt: issueTime(issues[i].CreatedAt),
			ClosedAt:  issueTimePtr(issues[i].ClosedAt),
		})
	}
	return infos
}

// MapPullRequestInfo 填充社区活跃度（PR）特征
func MapPullRequestInfo(data *dto.RepositoryData, prs []github.PullRequest) {
	if len(prs) == 0 {
		data.PRCountLast6Months = 0
		data.MergedPRCountLast6Months = 0
		data.RecentPullRequests = []dto.PullRequestInfo{}
		return
	}

	merged := 0
	for i := range prs {
		if prs[i].MergedAt != "" {
			merged++
		}
	}
	data.PRCountLast6Months = len(prs)
	data.MergedPRCountLast6Months = merged
	data.RecentPullRequests = extractRecentPullRequests(prs)
}

func extractRecentPullRequests(prs []github.PullRequest) []dto.PullRequestInfo {
	infos := make([]dto.PullRequestInfo, 0, recentItemLimit)
	for i := range prs {
		if len(infos) >= recentItemLimit {
			break
		}
		infos = append(infos, dto.PullRequestInfo{
			Title:     prs[i].Title,
			State:     prs[i].State,
			CreatedAt: issueTime(prs[i].CreatedAt),
			MergedAt:  issueTimePtr(prs[i].MergedAt),
		})
	}
	return infos
}

func issueTime(s string) time.Time {
	return github.ParseTime(s).In(reportLocation)
}

func issueTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := github.ParseTime(s)
	if t.IsZero() {
		return nil
	}
	local := t.In(reportLocation)
	return &local
}
