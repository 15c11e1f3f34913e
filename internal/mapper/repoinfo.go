package mapper

import (
	"time"

	"github.com/qs3c/repoeval_go_server/internal/model/dto"
	"github.com/qs3c/repoeval_go_server/internal/pkg/github"
)

// MapBasicInfo 填充仓库元信息
func MapBasicInfo(data *dto.RepositoryData, info *github.RepoInfo) {
	if info == nil {
		return
	}

	data.RepositoryName = info.FullName
	data.RepositoryURL = info.HTMLURL
	data.Description = info.Description
	data.PrimaryLanguage = info.Language

	if info.CreatedAt != nil {
		data.RepositoryCreatedAt = info.CreatedAt.In(reportLocation)
	} else {
		data.RepositoryCreatedAt = time.Now().In(reportLocation)
	}
}
