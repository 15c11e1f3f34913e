package mapper

import (
	"github.com/qs3c/repoeval_go_server/internal/model/dto"
	"github.com/qs3c/repoeval_go_server/internal/pkg/github"
)

// CI/CD 平台配置
var cicdFilePatterns = compileFullMatch([]string{
	// GitHub Actions
	`\.github/workflows/.*\.(yml|yaml)$`,

	// Jenkins
	`Jenkinsfile$`,
	`.*/Jenkinsfile$`,
	`Jenkinsfile\..*$`,

	// 各托管平台
	`\.gitlab-ci\.yml$`,
	`\.travis\.yml$`,
	`\.circleci/config\.yml$`,
	`azure-pipelines\.yml$`,
	`bitbucket-pipelines\.yml$`,
	`\.drone\.yml$`,
	`appveyor\.yml$`,
	`cloudbuild\.(yml|yaml|json)$`,
	`buildspec\.(yml|yaml)$`,
	`\.teamcity/.*`,
	`\.buildkite/.*`,
})

var dockerFilePatterns = compileFullMatch([]string{
	`(?i)(.*/)?dockerfile(\..*)?$`,
	`(?i)(.*/)?docker-compose(\..*)?\.(yml|yaml)$`,
	`(?i)(.*/)?compose\.(yml|yaml)$`,
})

// MapCicdInfo 填充 CI/CD 特征
func MapCicdInfo(data *dto.RepositoryData, tree *github.Tree) {
	paths := tree.BlobPaths()
	if len(paths) == 0 {
		setEmptyCicdData(data)
		return
	}

	cicdFiles := []string{}
	hasDockerfile := false
	for _, path := range paths {
		if matchAny(cicdFilePatterns, path) {
			cicdFiles = append(cicdFiles, path)
		}
		if matchAny(dockerFilePatterns, path) {
			hasDockerfile = true
		}
	}
	data.HasCICD = len(cicdFiles) > 0
	data.CicdFiles = cicdFiles
	data.HasDockerfile = hasDockerfile
}

func setEmptyCicdData(data *dto.RepositoryData) {
	data.HasCICD = false
	data.CicdFiles = []string{}
	data.HasDockerfile = false
}
