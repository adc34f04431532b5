package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
	"github.com/Scharxi/tasmo-admin-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

func newMetricsRouter(metrics *mockMetrics) *gin.Engine {
	return newTestRouter(&service.Service{
		Authorization: &mockAuth{parseID: 1},
		Metrics:       metrics,
	})
}

func TestDeviceMetrics(t *testing.T) {
	metrics := &mockMetrics{status: models.DeviceStatus{
		Address: "a.local", Status: models.DeviceOnline,
		PowerW: 33.0, HasEnergyMonitoring: true,
	}}
	r := newMetricsRouter(metrics)

	w := performAuthed(r, http.MethodGet, "/api/v1/devices/a/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if metrics.lastDeviceID != "a" {
		t.Fatalf("device id: got %q", metrics.lastDeviceID)
	}

	var st models.DeviceStatus
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.PowerW != 33.0 || !st.HasEnergyMonitoring {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestDeviceMetrics_Unreachable(t *testing.T) {
	metrics := &mockMetrics{currentErr: fmt.Errorf("device a: %w", service.ErrDeviceUnreachable)}
	r := newMetricsRouter(metrics)

	w := performAuthed(r, http.MethodGet, "/api/v1/devices/a/metrics", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestDeviceHistory_TimeFormats(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			name:     "rfc3339",
			query:    "from=2026-08-01T00:00:00Z&to=2026-08-02T12:00:00Z",
			wantFrom: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "datetime",
			query:    "from=2026-08-01%2008:30:00",
			wantFrom: time.Date(2026, 8, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name:     "date only to is end of day",
			query:    "to=2026-08-01",
			wantTo:   time.Date(2026, 8, 1, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			metrics := &mockMetrics{}
			r := newMetricsRouter(metrics)

			w := performAuthed(r, http.MethodGet, "/api/v1/devices/a/history?"+tc.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			if !tc.wantFrom.IsZero() && !metrics.lastFrom.Equal(tc.wantFrom) {
				t.Fatalf("from: got %v, want %v", metrics.lastFrom, tc.wantFrom)
			}
			if !tc.wantTo.IsZero() && !metrics.lastTo.Equal(tc.wantTo) {
				t.Fatalf("to: got %v, want %v", metrics.lastTo, tc.wantTo)
			}
		})
	}
}

func TestDeviceHistory_BadTime(t *testing.T) {
	r := newMetricsRouter(&mockMetrics{})

	w := performAuthed(r, http.MethodGet, "/api/v1/devices/a/history?from=yesterday", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDeviceHistory_Payload(t *testing.T) {
	metrics := &mockMetrics{readings: []models.EnergyReading{
		{DeviceID: "a", PowerW: 10},
		{DeviceID: "a", PowerW: 12},
	}}
	r := newMetricsRouter(metrics)

	w := performAuthed(r, http.MethodGet, "/api/v1/devices/a/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	var out struct {
		Count    int                    `json:"count"`
		Readings []models.EnergyReading `json:"readings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 2 || len(out.Readings) != 2 {
		t.Fatalf("unexpected payload: %+v", out)
	}
}
