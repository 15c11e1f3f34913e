package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/repoeval_go_server/config"
)

func newTestFetcher(handler http.Handler) (*Fetcher, func()) {
	server := httptest.NewServer(handler)
	client := NewClient(&config.GitHubConfig{
		BaseURL:        server.URL,
		TimeoutSeconds: 5,
	})
	return NewFetcher(client), server.Close
}

func TestFetcher_FetchRepositoryInfo(t *testing.T) {
	fetcher, cleanup := newTestFetcher(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/gin-gonic/gin", r.URL.Path)
		fmt.Fprint(w, `{"full_name":"gin-gonic/gin","default_branch":"master","size":1234}`)
	}))
	defer cleanup()

	info, err := fetcher.FetchRepositoryInfo(context.Background(), "gin-gonic", "gin")
	require.NoError(t, err)
	assert.Equal(t, "gin-gonic/gin", info.FullName)
	assert.Equal(t, "master", info.DefaultBranch)
	assert.Equal(t, 1234, info.Size)
}

func TestFetcher_FetchRepositoryInfo_NotFound(t *testing.T) {
	fetcher, cleanup := newTestFetcher(http.NotFoundHandler())
	defer cleanup()

	// 仓库本体的 404 不降级，向上抛
	_, err := fetcher.FetchRepositoryInfo(context.Background(), "a", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetcher_FetchCommits_SinceWindow(t *testing.T) {
	var gotSince string
	fetcher, cleanup := newTestFetcher(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSince = r.URL.Query().Get("since")
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `[{"commit":{"message":"m","author":{"date":"2026-08-01T00:00:00Z"}}}]`)
	}))
	defer cleanup()

	since := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	commits, err := fetcher.FetchCommits(context.Background(), "a", "b", since)
	require.NoError(t, err)
	assert.Len(t, commits, 1)
	assert.Equal(t, "2026-06-01T00:00:00Z", gotSince)
}

func TestFetcher_FetchReadme_NotFoundIsEmpty(t *testing.T) {
	fetcher, cleanup := newTestFetcher(http.NotFoundHandler())
	defer cleanup()

	content, err := fetcher.FetchReadme(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "", content)
}

func TestFetcher_FetchTree(t *testing.T) {
	fetcher, cleanup := newTestFetcher(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/a/b/git/trees/main", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		fmt.Fprint(w, `{"truncated":true,"tree":[{"path":"main.go","type":"blob"},{"path":"pkg","type":"tree"}]}`)
	}))
	defer cleanup()

	tree, err := fetcher.FetchTree(context.Background(), "a", "b", "main")
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.True(t, tree.Truncated)
	assert.Equal(t, []string{"main.go"}, tree.BlobPaths())
	assert.Equal(t, []string{"main.go", "pkg"}, tree.AllPaths())
}

func TestFetcher_FetchTree_NotFoundIsNil(t *testing.T) {
	fetcher, cleanup := newTestFetcher(http.NotFoundHandler())
	defer cleanup()

	tree, err := fetcher.FetchTree(context.Background(), "a", "b", "main")
	require.NoError(t, err)
	assert.Nil(t, tree)
}

func TestFetcher_FetchTree_EmptyIsNil(t *testing.T) {
	fetcher, cleanup := newTestFetcher(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"truncated":false,"tree":[]}`)
	}))
	defer cleanup()

	tree, err := fetcher.FetchTree(context.Background(), "a", "b", "main")
	require.NoError(t, err)
	assert.Nil(t, tree)
}

func TestFetcher_FetchIssues_FiltersPullRequestsAndWindow(t *testing.T) {
	recent := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
	stale := time.Now().UTC().AddDate(0, -8, 0).Format(time.RFC3339)

	fetcher, cleanup := newTestFetcher(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"number":1,"title":"real issue","state":"open","created_at":%q},
			{"number":2,"title":"a pr","state":"open","created_at":%q,"pull_request":{"url":"u"}},
			{"number":3,"title":"old issue","state":"closed","created_at":%q}
		]`, recent, recent, stale)
	}))
	defer cleanup()

	issues, err := fetcher.FetchIssues(context.Background(), "a", "b")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "real issue", issues[0].Title)
}

func TestFetcher_FetchPullRequests_Window(t *testing.T) {
	recent := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
	stale := time.Now().UTC().AddDate(0, -8, 0).Format(time.RFC3339)

	fetcher, cleanup := newTestFetcher(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"number":1,"title":"new","state":"open","created_at":%q},
			{"number":2,"title":"old","state":"closed","created_at":%q,"merged_at":%q}
		]`, recent, stale, stale)
	}))
	defer cleanup()

	prs, err := fetcher.FetchPullRequests(context.Background(), "a", "b")
	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, "new", prs[0].Title)
}

func TestFetcher_FetchLanguages_NotFoundIsEmpty(t *testing.T) {
	fetcher, cleanup := newTestFetcher(http.NotFoundHandler())
	defer cleanup()

	languages, err := fetcher.FetchLanguages(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Empty(t, languages)
}

func TestParseTime(t *testing.T) {
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), ParseTime("2026-08-01T00:00:00Z"))
	assert.True(t, ParseTime("").IsZero())
	assert.True(t, ParseTime("garbage").IsZero())
}

func TestParseTimePtr(t *testing.T) {
	assert.Nil(t, ParseTimePtr(""))
	assert.Nil(t, ParseTimePtr("garbage"))
	require.NotNil(t, ParseTimePtr("2026-08-01T00:00:00Z"))
}
