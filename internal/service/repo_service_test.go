package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/repoeval_go_server/config"
	"github.com/qs3c/repoeval_go_server/internal/pkg/github"
)

// fakeGitHub 模拟 GitHub API，按路径返回预设响应
type fakeGitHub struct {
	server   *httptest.Server
	repoSize int
	// 采集走到最后一个接口（languages）时触发，用于在阶段之间插入测试动作
	onLanguages func()
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()

	f := &fakeGitHub{repoSize: 500}
	mux := http.NewServeMux()

	now := time.Now().UTC()
	recent := now.Add(-24 * time.Hour).Format(time.RFC3339)

	mux.HandleFunc("/repos/example/demo", func(w http.ResponseWriter, r *http.Request) {
		created := now.AddDate(-1, 0, 0)
		writeJSON(w, map[string]interface{}{
			"name":           "demo",
			"full_name":      "example/demo",
			"html_url":       "https://github.com/example/demo",
			"description":    "演示仓库",
			"language":       "Go",
			"default_branch": "main",
			"created_at":     created.Format(time.RFC3339),
			"size":           f.repoSize,
		})
	})
	mux.HandleFunc("/repos/example/demo/commits", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{
			{"commit": map[string]interface{}{
				"message": "feat: initial implementation",
				"author":  map[string]string{"date": recent},
			}},
			{"commit": map[string]interface{}{
				"message": "docs: add readme",
				"author":  map[string]string{"date": recent},
			}},
		})
	})
	mux.HandleFunc("/repos/example/demo/readme", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "# Demo\n\n## Usage\n\nrun it\n")
	})
	mux.HandleFunc("/repos/example/demo/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"truncated": false,
			"tree": []map[string]string{
				{"path": "main.go", "type": "blob"},
				{"path": "main_test.go", "type": "blob"},
				{"path": "go.mod", "type": "blob"},
				{"path": ".github/workflows/ci.yml", "type": "blob"},
			},
		})
	})
	mux.HandleFunc("/repos/example/demo/issues", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{
			{"number": 1, "title": "bug", "state": "closed", "created_at": recent, "closed_at": recent},
			{"number": 2, "title": "pr-as-issue", "state": "open", "created_at": recent,
				"pull_request": map[string]string{"url": "https://example.com"}},
		})
	})
	mux.HandleFunc("/repos/example/demo/pulls", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{
			{"number": 3, "title": "feat", "state": "closed", "created_at": recent, "merged_at": recent},
		})
	})
	mux.HandleFunc("/repos/example/demo/languages", func(w http.ResponseWriter, r *http.Request) {
		if f.onLanguages != nil {
			f.onLanguages()
		}
		writeJSON(w, map[string]int{"Go": 10000, "Makefile": 200})
	})
	// 只有元数据的冷清仓库：没有提交、README、文件树和社区活动，
	// 其余接口统一落到 404
	mux.HandleFunc("/repos/example/sparse", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"name":           "sparse",
			"full_name":      "example/sparse",
			"html_url":       "https://github.com/example/sparse",
			"default_branch": "master",
			"created_at":     now.AddDate(0, -2, 0).Format(time.RFC3339),
			"size":           3,
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeGitHub) fetcher() *github.Fetcher {
	client := github.NewClient(&config.GitHubConfig{
		BaseURL:        f.server.URL,
		TimeoutSeconds: 5,
	})
	return github.NewFetcher(client)
}

func newTestDataService(t *testing.T, f *fakeGitHub, maxSizeKB int) *RepoDataService {
	t.Helper()
	return NewRepoDataService(f.fetcher(), &config.AnalysisConfig{MaxRepoSizeKB: maxSizeKB})
}

func TestParseGithubURL(t *testing.T) {
	cases := []struct {
		url   string
		owner string
		repo  string
		ok    bool
	}{
		{"https://github.com/gin-gonic/gin", "gin-gonic", "gin", true},
		{"https://github.com/gin-gonic/gin.git", "gin-gonic", "gin", true},
		{"https://github.com/gin-gonic/gin/", "gin-gonic", "gin", true},
		{"  https://github.com/a/b  ", "a", "b", true},
		{"https://gitlab.com/a/b", "", "", false},
		{"https://github.com/onlyowner", "", "", false},
		{"github.com/a/b", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		owner, repo, err := ParseGithubURL(tc.url)
		if tc.ok {
			require.NoError(t, err, tc.url)
			assert.Equal(t, tc.owner, owner)
			assert.Equal(t, tc.repo, repo)
		} else {
			assert.ErrorIs(t, err, ErrInvalidGithubURL, tc.url)
		}
	}
}

func TestRepoDataService_Collect(t *testing.T) {
	f := newFakeGitHub(t)
	svc := newTestDataService(t, f, 1000000)

	var messages []string
	result, err := svc.Collect(context.Background(), "example", "demo", func(m string) {
		messages = append(messages, m)
	})
	require.NoError(t, err)

	data := result.Data
	assert.Equal(t, "example/demo", data.RepositoryName)
	assert.Equal(t, "Go", data.PrimaryLanguage)
	assert.Equal(t, 2, data.CommitCountLast90d)
	assert.True(t, data.HasReadme)
	assert.Equal(t, []string{"Demo", "Usage"}, data.ReadmeSectionTitles)
	assert.Equal(t, 1, data.TestFileCount)
	assert.True(t, data.HasCICD)
	assert.True(t, data.HasBuildFile)
	assert.False(t, data.TreeTruncated)

	// issues 里的 PR 伪装条目被排除
	assert.Equal(t, 1, data.IssueCountLast6Months)
	assert.Equal(t, 1, data.ClosedIssueCountLast6Months)
	assert.Equal(t, 1, data.PRCountLast6Months)
	assert.Equal(t, 1, data.MergedPRCountLast6Months)

	// 语言按字节数降序
	assert.Equal(t, []string{"Go", "Makefile"}, result.Languages)

	// 各阶段都上报了进度
	assert.GreaterOrEqual(t, len(messages), 5)
	assert.Equal(t, "正在获取仓库基本信息", messages[0])
}

func TestRepoDataService_Collect_SparseRepository(t *testing.T) {
	f := newFakeGitHub(t)
	svc := newTestDataService(t, f, 1000000)

	// 除元数据外所有接口都 404，采集仍然完整走完
	result, err := svc.Collect(context.Background(), "example", "sparse", nil)
	require.NoError(t, err)

	data := result.Data
	assert.Equal(t, "example/sparse", data.RepositoryName)
	assert.False(t, data.HasReadme)
	assert.Empty(t, data.ReadmeSectionTitles)
	assert.Equal(t, 0, data.CommitCountLast90d)
	assert.False(t, data.HasTestDirectory)
	assert.Equal(t, 0, data.TestFileCount)
	assert.Equal(t, 0.0, data.TestCoverageRatio)
	assert.False(t, data.HasCICD)
	assert.False(t, data.HasBuildFile)
	assert.Equal(t, 0, data.IssueCountLast6Months)
	assert.Equal(t, 0, data.PRCountLast6Months)
	assert.Empty(t, result.Languages)
}

func TestRepoDataService_Collect_RepoTooLarge(t *testing.T) {
	f := newFakeGitHub(t)
	f.repoSize = 2000
	svc := newTestDataService(t, f, 1000)

	_, err := svc.Collect(context.Background(), "example", "demo", nil)
	assert.ErrorIs(t, err, ErrRepoTooLarge)
}

func TestRepoDataService_Collect_NotFound(t *testing.T) {
	f := newFakeGitHub(t)
	svc := newTestDataService(t, f, 1000000)

	_, err := svc.Collect(context.Background(), "example", "missing", nil)
	assert.ErrorIs(t, err, github.ErrNotFound)
}

func TestSortedLanguages(t *testing.T) {
	langs := sortedLanguages(map[string]int{"Go": 100, "Shell": 100, "Rust": 500})
	assert.Equal(t, []string{"Rust", "Go", "Shell"}, langs)
	assert.Empty(t, sortedLanguages(nil))
}
