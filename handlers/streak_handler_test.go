package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lifeSpheresAPI/internal/storage"
	"lifeSpheresAPI/internal/types/streak"
	"lifeSpheresAPI/middleware"
	"lifeSpheresAPI/services"
)

func newTestHandler() *StreakHandler {
	kv := storage.NewMemoryStore()
	streakService := services.NewStreakService(services.NewStreakStore(kv), nil)
	return NewStreakHandler(streakService)
}

func authedRequest(method, target string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	return r.WithContext(middleware.WithClerkID(r.Context(), "user_test"))
}

func TestGetStreakDataRequiresAuth(t *testing.T) {
	h := newTestHandler()

	w := httptest.NewRecorder()
	h.GetStreakData(w, httptest.NewRequest("GET", "/api/v1/streak", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without auth context, got %d", w.Code)
	}
}

func TestRecordActivityAndFetch(t *testing.T) {
	h := newTestHandler()

	w := httptest.NewRecorder()
	h.RecordActivity(w, authedRequest("POST", "/api/v1/streak/activity"))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result streak.ActivityResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if result.Record.CurrentStreak != 1 || !result.IsFirstActivity {
		t.Errorf("Expected first activity with streak 1, got %+v", result)
	}

	w = httptest.NewRecorder()
	h.GetStreakData(w, authedRequest("GET", "/api/v1/streak"))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var record streak.Record
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if record.CurrentStreak != 1 || record.CurrentBadge != "spark" {
		t.Errorf("Expected persisted streak 1 with spark, got %+v", record)
	}
}

func TestGetRiskStatus(t *testing.T) {
	h := newTestHandler()

	w := httptest.NewRecorder()
	h.RecordActivity(w, authedRequest("POST", "/api/v1/streak/activity"))

	w = httptest.NewRecorder()
	h.GetRiskStatus(w, authedRequest("GET", "/api/v1/streak/risk"))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var status streak.RiskStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if status.AtRisk {
		t.Errorf("Logged today: should not be at risk")
	}
	if status.DaysUntilLost != 2 {
		t.Errorf("Expected 2 days until lost, got %d", status.DaysUntilLost)
	}
}

func TestResetStreakData(t *testing.T) {
	h := newTestHandler()

	w := httptest.NewRecorder()
	h.RecordActivity(w, authedRequest("POST", "/api/v1/streak/activity"))

	w = httptest.NewRecorder()
	h.ResetStreakData(w, authedRequest("DELETE", "/api/v1/streak"))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.GetStreakData(w, authedRequest("GET", "/api/v1/streak"))

	var record streak.Record
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if record.CurrentStreak != 0 || record.TotalDaysLogged != 0 {
		t.Errorf("Expected zero record after reset, got %+v", record)
	}
}
