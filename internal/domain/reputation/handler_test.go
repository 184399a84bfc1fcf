package reputation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func newTestHandler(t *testing.T) (*Handler, *Service) {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	svc := NewService(context.Background(), store, NewStatsCache(nil, time.Minute), "test")
	return NewHandler(svc), svc
}

func testRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Mount("/reports", h.Routes())
	r.Mount("/statistics", h.StatsRoutes())
	r.Mount("/admin", h.AdminRoutes())
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var envelope map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("%s %s: response is not JSON: %v", method, path, err)
	}
	return rr, envelope
}

func TestSubmitReportEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	rr, envelope := doJSON(t, router, http.MethodPost, "/reports",
		`{"username":"Magnus","risk_score":85,"game_format":"blitz","reporter_id":"ext-user-1","notes":"late surge"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}

	data := envelope["data"].(map[string]any)
	if data["username"] != "Magnus" {
		t.Fatalf("unexpected username: %v", data["username"])
	}
	if data["total_reports"].(float64) != 1 {
		t.Fatalf("unexpected total_reports: %v", data["total_reports"])
	}
	if data["confidence_level"] != "low" {
		t.Fatalf("unexpected confidence_level: %v", data["confidence_level"])
	}
}

func TestSubmitReportEndpointBadBody(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	rr, _ := doJSON(t, router, http.MethodPost, "/reports", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSubmitReportEndpointValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	rr, envelope := doJSON(t, router, http.MethodPost, "/reports",
		`{"username":"Magnus","risk_score":150,"game_format":"blitz"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (%s)", rr.Code, rr.Body.String())
	}

	errInfo := envelope["error"].(map[string]any)
	details := errInfo["details"].(map[string]any)
	if _, ok := details["risk_score"]; !ok {
		t.Fatalf("expected the rejection to name risk_score, got %v", details)
	}
}

func TestGetPlayerEndpoint(t *testing.T) {
	h, svc := newTestHandler(t)
	router := testRouter(h)

	rr, envelope := doJSON(t, router, http.MethodGet, "/reports/player/magnus", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for an unknown player, got %d", rr.Code)
	}
	data := envelope["data"].(map[string]any)
	if data["found"].(bool) {
		t.Fatal("expected found=false for an unknown player")
	}

	submit(t, svc, "Magnus", 85, "blitz")

	rr, envelope = doJSON(t, router, http.MethodGet, "/reports/player/MAGNUS", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	data = envelope["data"].(map[string]any)
	if !data["found"].(bool) {
		t.Fatal("expected found=true")
	}
	player := data["player"].(map[string]any)
	if player["average_risk_score"].(float64) != 85 {
		t.Fatalf("unexpected average: %v", player["average_risk_score"])
	}
}

func TestSearchEndpointDefaultsAndBounds(t *testing.T) {
	h, svc := newTestHandler(t)
	router := testRouter(h)

	for i := 0; i < 3; i++ {
		submit(t, svc, "suspect", 70, "blitz")
	}
	submit(t, svc, "clean", 10, "blitz")

	// Defaults: min_reports=3, min_risk_score=60
	rr, envelope := doJSON(t, router, http.MethodGet, "/reports/search", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	data := envelope["data"].(map[string]any)
	if data["total_found"].(float64) != 1 {
		t.Fatalf("expected 1 match with default bounds, got %v", data["total_found"])
	}

	// Out-of-bounds limit is rejected
	rr, _ = doJSON(t, router, http.MethodGet, "/reports/search?limit=5000", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for limit=5000, got %d", rr.Code)
	}

	rr, _ = doJSON(t, router, http.MethodGet, "/reports/search?min_reports=abc", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-numeric min_reports, got %d", rr.Code)
	}

	rr, _ = doJSON(t, router, http.MethodGet, "/reports/search?confidence=definitely", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for an unknown confidence, got %d", rr.Code)
	}
}

func TestGlobalStatsEndpoint(t *testing.T) {
	h, svc := newTestHandler(t)
	router := testRouter(h)

	submit(t, svc, "suspect", 70, "blitz")

	rr, envelope := doJSON(t, router, http.MethodGet, "/statistics/global", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	data := envelope["data"].(map[string]any)
	if data["total_reports"].(float64) != 1 || data["total_unique_players"].(float64) != 1 {
		t.Fatalf("unexpected stats: %v", data)
	}
}

func TestBanEndpoint(t *testing.T) {
	h, svc := newTestHandler(t)
	router := testRouter(h)

	rr, _ := doJSON(t, router, http.MethodPost, "/admin/players/ghost/ban", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown player, got %d", rr.Code)
	}

	submit(t, svc, "patzer", 10, "bullet")

	// Missing body defaults to banned=true
	rr, envelope := doJSON(t, router, http.MethodPost, "/admin/players/patzer/ban", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	data := envelope["data"].(map[string]any)
	if !data["is_banned"].(bool) {
		t.Fatal("expected is_banned true")
	}

	rr, envelope = doJSON(t, router, http.MethodPost, "/admin/players/patzer/ban", `{"banned":false}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	data = envelope["data"].(map[string]any)
	if data["is_banned"].(bool) {
		t.Fatal("expected is_banned false")
	}
}
