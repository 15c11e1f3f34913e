package mapper

import (
	"regexp"
	"strings"

	"github.com/qs3c/repoeval_go_server/internal/model/dto"
)

// markdown 标题：# 到 ######，后跟空白和标题文字；不识别 HTML 标题标签
var headerPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// MapReadmeInfo 填充文档质量特征
func MapReadmeInfo(data *dto.RepositoryData, content string) {
	if strings.TrimSpace(content) == "" {
		setEmptyReadmeData(data)
		return
	}

	data.HasReadme = true
	data.ReadmeLength = len([]rune(content))

	titles := extractSectionTitles(content)
	data.ReadmeSectionCount = len(titles)
	data.ReadmeSectionTitles = titles
}

func setEmptyReadmeData(data *dto.RepositoryData) {
	data.HasReadme = false
	data.ReadmeLength = 0
	data.ReadmeSectionCount = 0
	data.ReadmeSectionTitles = []string{}
}

// extractSectionTitles 逐行扫描标题，``` 围栏内的行不算
func extractSectionTitles(content string) []string {
	titles := []string{}
	inCodeBlock := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if inCodeBlock {
			continue
		}

		if m := headerPattern.FindStringSubmatch(trimmed); m != nil {
			titles = append(titles, strings.TrimSpace(m[2]))
		}
	}

	return titles
}
