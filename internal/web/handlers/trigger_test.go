package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTrigger_FireAndLatest(t *testing.T) {
	svc, _, _ := testService(&fakeDetector{descriptor: testDescriptor(0)})
	handler := NewTriggerHandler(svc)

	recorder := httptest.NewRecorder()
	handler.Fire(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/trigger", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var fired TriggerResponse
	parseJSONResponse(t, recorder, &fired)
	if fired.Timestamp == 0 {
		t.Fatal("expected non-zero trigger timestamp")
	}

	recorder = httptest.NewRecorder()
	handler.Latest(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/trigger/latest", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var latest TriggerResponse
	parseJSONResponse(t, recorder, &latest)
	if latest.Timestamp != fired.Timestamp {
		t.Errorf("latest %d does not match fired %d", latest.Timestamp, fired.Timestamp)
	}
}

func TestTrigger_DebouncedWithinCooldown(t *testing.T) {
	svc, _, _ := testService(&fakeDetector{descriptor: testDescriptor(0)})
	handler := NewTriggerHandler(svc)

	recorder := httptest.NewRecorder()
	handler.Fire(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/trigger", nil))
	var first TriggerResponse
	parseJSONResponse(t, recorder, &first)

	recorder = httptest.NewRecorder()
	handler.Fire(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/trigger", nil))
	var second TriggerResponse
	parseJSONResponse(t, recorder, &second)

	if second.Timestamp != first.Timestamp {
		t.Errorf("rapid second fire should keep the timestamp, got %d then %d", first.Timestamp, second.Timestamp)
	}
}

func TestTrigger_LatestBeforeAnyFire(t *testing.T) {
	svc, _, _ := testService(&fakeDetector{descriptor: testDescriptor(0)})
	handler := NewTriggerHandler(svc)

	recorder := httptest.NewRecorder()
	handler.Latest(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/trigger/latest", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var resp TriggerResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Timestamp != 0 {
		t.Errorf("expected zero timestamp before first fire, got %d", resp.Timestamp)
	}
}
