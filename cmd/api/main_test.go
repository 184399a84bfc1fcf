package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chesswatch/chesswatch-api/internal/domain/reputation"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	store, err := reputation.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	svc := reputation.NewService(context.Background(), store, reputation.NewStatsCache(nil, time.Minute), version)
	return newRouter(reputation.NewHandler(svc), []string{"*"})
}

func TestRouterMounts(t *testing.T) {
	router := testRouter(t)

	cases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/reports/player/magnus", "", http.StatusOK},
		{http.MethodGet, "/api/v1/reports/search", "", http.StatusOK},
		{http.MethodGet, "/api/v1/statistics/global", "", http.StatusOK},
		{http.MethodPost, "/api/v1/reports", `{"username":"magnus","risk_score":55,"game_format":"blitz"}`, http.StatusCreated},
		{http.MethodPost, "/api/v1/admin/players/nobody/ban", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		var req *http.Request
		if tc.body != "" {
			req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(tc.method, tc.path, nil)
		}

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != tc.status {
			t.Fatalf("%s %s: expected status %d, got %d (%s)", tc.method, tc.path, tc.status, rr.Code, rr.Body.String())
		}
	}
}
