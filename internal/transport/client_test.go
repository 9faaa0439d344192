// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestClient_Do_Success(t *testing.T) {
	var gotAuth, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		var m member
		_ = json.NewDecoder(r.Body).Decode(&m)
		gotBody = m.Name
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		_, _ = w.Write([]byte(`{"id":"m-1","name":"Alice"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", func() string { return "tok" }, nil)
	got, err := Post[member](context.Background(), c, "/members", member{Name: "Alice"})
	require.NoError(t, err)

	assert.Equal(t, member{ID: "m-1", Name: "Alice"}, got)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "Alice", gotBody)
}

func TestClient_Do_NoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, func() string { return "" }, nil)
	_, err := Delete[struct{}](context.Background(), c, "/members/1")
	assert.NoError(t, err)
}

func TestClient_Do_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantAPI    bool
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "server message",
			status:     http.StatusUnprocessableEntity,
			body:       `{"message":"Invalid email"}`,
			wantAPI:    true,
			wantStatus: 422,
			wantMsg:    "Invalid email",
		},
		{
			name:       "no message",
			status:     http.StatusInternalServerError,
			body:       `{}`,
			wantAPI:    true,
			wantStatus: 500,
			wantMsg:    "API error: 500",
		},
		{
			name:       "non json error body",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantAPI:    true,
			wantStatus: 502,
			wantMsg:    "API error: 502",
		},
		{
			name:    "malformed success body",
			status:  http.StatusOK,
			body:    `{"id":`,
			wantMsg: "malformed response body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := Get[member](context.Background(), New(srv.URL, nil, nil), "/members/1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var apiErr *APIError
			var netErr *NetworkError
			if tt.wantAPI {
				assert.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.wantStatus, StatusCode(err))
			} else {
				assert.True(t, errors.As(err, &netErr))
				assert.Equal(t, 0, StatusCode(err))
			}
		})
	}
}

func TestClient_Do_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := Get[member](context.Background(), New(addr, nil, nil), "/members")
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.MethodGet, netErr.Method)
	assert.Contains(t, err.Error(), "failed to execute request")
}

func TestClient_Do_SharedGet(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(`[{"id":"m-1","name":"Alice"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)

	var wg sync.WaitGroup
	results := make([][]member, 3)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Get[[]member](context.Background(), c, "/members")
			assert.NoError(t, err)
			results[i] = got
		}()
	}

	assert.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	for _, r := range results {
		assert.Equal(t, []member{{ID: "m-1", Name: "Alice"}}, r)
	}
}

func TestClient_Do_WritesNotShared(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	for range 2 {
		_, err := Delete[struct{}](context.Background(), c, "/members/1")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestWithQuery(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		params url.Values
		want   string
	}{
		{name: "none", path: "/members", params: nil, want: "/members"},
		{name: "empty values dropped", path: "/members", params: url.Values{"status": {""}}, want: "/members"},
		{name: "encoded", path: "/members/search", params: url.Values{"q": {"a b&c"}}, want: "/members/search?q=a+b%26c"},
		{name: "existing query", path: "/reports/1/export?format=csv", params: url.Values{"x": {"1"}}, want: "/reports/1/export?format=csv&x=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WithQuery(tt.path, tt.params))
		})
	}
}
