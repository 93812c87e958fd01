package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/datwatch/internal/markers"
	"github.com/starford/datwatch/internal/watch"
)

func testService(t *testing.T) (*Service, markers.Store) {
	t.Helper()
	store := markers.NewMemory()
	tr := watch.NewTracker(store)
	return NewService(tr, store), store
}

func TestGetStatus(t *testing.T) {
	svc, store := testService(t)
	_ = store.Put("/pdirs/run1.dat", time.Unix(1, 0), time.Now())
	svc.RecordEvent("processed")
	svc.RecordEvent("processed")
	svc.RecordEvent("dropped")

	r := NewRouter(svc, false, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Markers != 1 {
		t.Errorf("markers = %d, want 1", resp.Markers)
	}
	if resp.Processed != 2 || resp.Dropped != 1 {
		t.Errorf("counters = %d/%d, want 2/1", resp.Processed, resp.Dropped)
	}
	if resp.Tracked != 0 {
		t.Errorf("tracked = %d, want 0", resp.Tracked)
	}
}

func TestListMarkers(t *testing.T) {
	svc, store := testService(t)
	mtime := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	_ = store.Put("/pdirs/run1.dat", mtime, time.Now())

	r := NewRouter(svc, false, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/markers", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp MarkerListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || len(resp.Markers) != 1 {
		t.Fatalf("total = %d, markers = %d, want 1/1", resp.Total, len(resp.Markers))
	}
	if resp.Markers[0].Path != "/pdirs/run1.dat" {
		t.Errorf("path = %q", resp.Markers[0].Path)
	}
	if !resp.Markers[0].ModTime.Equal(mtime) {
		t.Errorf("mtime = %v, want %v", resp.Markers[0].ModTime, mtime)
	}
}

func TestAuthMiddleware_Denies(t *testing.T) {
	svc, _ := testService(t)
	r := NewRouter(svc, true, "secret", nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without token", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 with bad token", w.Code)
	}
}

func TestAuthMiddleware_Allows(t *testing.T) {
	svc, _ := testService(t)
	r := NewRouter(svc, true, "secret", nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with valid token", w.Code)
	}
}
