package mapper

import (
	"strings"
	"time"

	"github.com/qs3c/repoeval_go_server/internal/model/dto"
	"github.com/qs3c/repoeval_go_server/internal/pkg/github"
)

const (
	recentCommitLimit     = 10
	commitMessageMaxChars = 100
)

// MapCommitInfo 填充维护性（提交）特征
// 提交列表已由 Fetcher 限定在 90 天窗口内，按时间倒序排列
func MapCommitInfo(data *dto.RepositoryData, commits []github.Commit) {
	if len(commits) == 0 || commits[0].Commit == nil {
		setEmptyCommitData(data)
		return
	}

	lastCommitDate := commitDate(&commits[0])
	data.LastCommitDate = &lastCommitDate
	data.DaysSinceLastCommit = daysSince(lastCommitDate)
	data.CommitCountLast90d = len(commits)
	data.RecentCommits = extractRecentCommits(commits)
}

func setEmptyCommitData(data *dto.RepositoryData) {
	data.LastCommitDate = nil
	data.DaysSinceLastCommit = 0
	data.CommitCountLast90d = 0
	data.RecentCommits = []dto.CommitInfo{}
}

// commitDate 提交时间折算到报告时区，缺失或无法解析时取当前时间
func commitDate(c *github.Commit) time.Time {
	if c.Commit == nil || c.Commit.Author == nil || c.Commit.Author.Date == "" {
		return time.Now().In(reportLocation)
	}
	t := github.ParseTime(c.Commit.Author.Date)
	if t.IsZero() {
		return time.Now().In(reportLocation)
	}
	return t.In(reportLocation)
}

func daysSince(t time.Time) int {
	days := int(time.Since(t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func extractRecentCommits(commits []github.Commit) []dto.CommitInfo {
	infos := make([]dto.CommitInfo, 0, recentCommitLimit)
	for i := range commits {
		if len(infos) >= recentCommitLimit {
			break
		}
		infos = append(infos, dto.CommitInfo{
			Message:       cleanCommitMessage(commitMessage(&commits[i])),
			CommittedDate: commitDate(&commits[i]),
		})
	}
	return infos
}

func commitMessage(c *github.Commit) string {
	if c.Commit == nil {
		return ""
	}
	return c.Commit.Message
}

// cleanCommitMessage 只保留首行并限制在 100 个字符内，控制评分请求体大小
func cleanCommitMessage(message string) string {
	firstLine := strings.TrimSpace(strings.SplitN(strings.TrimSpace(message), "\n", 2)[0])
	if firstLine == "" {
		return "No commit message"
	}

	runes := []rune(firstLine)
	if len(runes) > commitMessageMaxChars {
		return string(runes[:commitMessageMaxChars-3]) + "..."
	}
	return firstLine
}
