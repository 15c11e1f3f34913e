package mapper

import (
	"regexp"
	"strings"

	"github.com/qs3c/repoeval_go_server/internal/model/dto"
	"github.com/qs3c/repoeval_go_server/internal/pkg/github"
)

// 疑似凭证/密钥文件
var sensitiveFilePatterns = compileFullMatch([]string{
	// 环境变量文件
	`.*\.env$`,
	`.*\.env\.prod(uction)?$`,
	`.*\.env\.local$`,

	// 证书和私钥
	`.*\.(pem|key|p12|pfx|crt|cer|p8)$`,
	`.*/id_rsa$|^id_rsa$`,
	`.*/id_dsa$|^id_dsa$`,
	`.*/id_ecdsa$|^id_ecdsa$`,
	`.*/authorized_keys$|^authorized_keys$`,
	`.*\.(keystore|jks)$`,

	// 敏感配置
	`.*application-secret\.ya?ml$`,
	`.*application-prod\.ya?ml$`,
	`.*credentials\.(json|xml|yml|yaml|properties)$`,
	`.*secret.*\.(json|xml|yml|yaml|properties)$`,
	`.*secrets?\.json$`,

	// 云厂商凭证
	`.*/\.aws/credentials$`,
	`.*service-account.*\.json$`,
	`.*firebase.*\.json$`,
	`.*google.*credentials.*\.json$`,

	// Token / API Key
	`.*token.*\.txt$`,
	`.*apikey.*\.txt$`,
	`.*password.*\.txt$`,
	`.*client_secret.*\.(json|yml|yaml)$`,
	`.*oauth.*\.json$`,

	// SSH 配置
	`.*/\.ssh/id_.*$`,
	`.*/\.ssh/config$`,

	// 其他
	`.*pgpass$`,
	`.*\.netrc$`,
})

// 安全豁免：示例/模板/测试数据，优先级高于敏感模式
var safeFilePatterns = compileFullMatch([]string{
	// 示例/模板文件
	`.*\.(example|template|sample|dist|default)$`,
	`.*\.env\.(example|template|sample|dist)$`,
	`.*credentials\.(example|sample|template)$`,
	`.*secret.*\.(example|sample|template)$`,

	// 测试/假数据
	`.*test.*\.(json|yaml|yml|env|properties)$`,
	`.*mock.*\.(json|yaml|yml|env|properties)$`,
	`.*dummy.*\.(json|yaml|yml|env|properties)$`,

	// 示例目录
	`.*/fixtures/.*`,
	`.*/samples?/.*`,
	`.*/examples?/.*`,
})

// 构建工具清单，按文件名精确匹配
var buildFileNames = map[string]struct{}{
	"pom.xml": {}, "build.gradle": {}, "build.gradle.kts": {},
	"package.json": {}, "package-lock.json": {}, "yarn.lock": {}, "pnpm-lock.yaml": {},
	"Cargo.toml": {}, "go.mod": {}, "requirements.txt": {}, "pyproject.toml": {}, "setup.py": {},
	"CMakeLists.txt": {}, "Makefile": {}, "Dockerfile": {},
	"gradlew": {}, "gradlew.bat": {}, "mvnw": {}, "mvnw.cmd": {},
	"Gemfile": {}, "Gemfile.lock": {}, "composer.json": {}, "composer.lock": {},
	"mix.exs": {}, "build.sbt": {},
}

// MapSecurityInfo 填充安全特征：敏感文件与构建清单
func MapSecurityInfo(data *dto.RepositoryData, tree *github.Tree) {
	paths := tree.BlobPaths()
	if len(paths) == 0 {
		setEmptySecurityData(data)
		return
	}

	sensitive := []string{}
	for _, path := range paths {
		if isSensitiveFile(path) {
			sensitive = append(sensitive, path)
		}
	}
	data.HasSensitiveFile = len(sensitive) > 0
	data.SensitiveFilePaths = sensitive

	buildFiles := []string{}
	for _, path := range paths {
		if isBuildFile(path) {
			buildFiles = append(buildFiles, path)
		}
	}
	data.HasBuildFile = len(buildFiles) > 0
	data.BuildFiles = buildFiles
}

func setEmptySecurityData(data *dto.RepositoryData) {
	data.HasSensitiveFile = false
	data.SensitiveFilePaths = []string{}
	data.HasBuildFile = false
	data.BuildFiles = []string{}
}

// isSensitiveFile 豁免模式优先：同时命中敏感模式与豁免模式的按安全处理
func isSensitiveFile(path string) bool {
	if matchAny(safeFilePatterns, path) {
		return false
	}
	return matchAny(sensitiveFilePatterns, path)
}

func isBuildFile(path string) bool {
	_, ok := buildFileNames[fileName(path)]
	return ok
}

func fileName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// compileFullMatch 按整串匹配语义编译模式
func compileFullMatch(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(`^(?:` + p + `)$`)
	}
	return compiled
}
