package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/repoeval_go_server/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(&config.GitHubConfig{
		BaseURL:        serverURL,
		TimeoutSeconds: 5,
	})
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
		w.Write([]byte(`{"name":"demo","size":42}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	var info RepoInfo
	err := client.Get(context.Background(), "/repos/a/b", &info)
	require.NoError(t, err)
	assert.Equal(t, "demo", info.Name)
	assert.Equal(t, 42, info.Size)
}

func TestClient_Get_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	var info RepoInfo
	err := client.Get(context.Background(), "/repos/a/b", &info)
	assert.Error(t, err)
}

func TestClient_GetRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.github.raw", r.Header.Get("Accept"))
		w.Write([]byte("# README"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	content, err := client.GetRaw(context.Background(), "/repos/a/b/readme")
	require.NoError(t, err)
	assert.Equal(t, "# README", content)
}

func TestClient_StatusErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrInvalidToken},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusGone, ErrBadRequest},
		{http.StatusUnprocessableEntity, ErrBadRequest},
		{http.StatusInternalServerError, ErrServerError},
		{http.StatusBadGateway, ErrServerError},
	}
	for _, tc := range cases {
		err := statusError(tc.status, "/x")
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
	}
}

func TestClient_RetriesServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"name":"demo"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	var info RepoInfo
	err := client.Get(context.Background(), "/repos/a/b", &info)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryNotFound(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	var info RepoInfo
	err := client.Get(context.Background(), "/repos/a/b", &info)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	var info RepoInfo
	err := client.Get(context.Background(), "/repos/a/b", &info)
	assert.ErrorIs(t, err, ErrServerError)
	assert.Equal(t, int32(maxAttempts), atomic.LoadInt32(&calls))
}

func TestClient_TokenAddsAuthorizationHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer my-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(&config.GitHubConfig{
		BaseURL:        server.URL,
		Token:          "my-token",
		TimeoutSeconds: 5,
	})

	var v map[string]interface{}
	require.NoError(t, client.Get(context.Background(), "/user", &v))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(statusError(500, "/x")))
	assert.True(t, IsRetryable(ErrTransport))
	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(ErrRateLimited))
	assert.False(t, IsRetryable(ErrInvalidToken))
	assert.False(t, IsRetryable(nil))
}
