package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"
)

func TestVitals_Record(t *testing.T) {
	handler := &recordingHandler{body: `{"id": "v-1", "type": "heart_rate", "value": 62, "unit": "bpm"}`}
	api, _, _ := newTestAPI(t, handler)

	recorded, err := api.Vitals.Record(context.Background(), VitalSample{
		Type:       "heart_rate",
		Value:      62,
		Unit:       "bpm",
		MeasuredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if recorded.ID != "v-1" {
		t.Errorf("Record returned id %q, want v-1", recorded.ID)
	}
	if method, path := handler.lastCall(t); method != http.MethodPost || path != "/vitals" {
		t.Errorf("Record called %s %s, want POST /vitals", method, path)
	}

	if _, err := api.Vitals.Record(context.Background(), VitalSample{Value: 62}); err == nil {
		t.Error("Recording without a type should fail")
	}
}

func TestVitals_ListQuery(t *testing.T) {
	handler := &recordingHandler{body: `[{"id": "v-1", "type": "weight", "value": 71.2, "unit": "kg"}]`}
	api, _, _ := newTestAPI(t, handler)

	from := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	samples, err := api.Vitals.List(context.Background(), "weight", from, time.Time{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(samples) != 1 || samples[0].Unit != "kg" {
		t.Errorf("List returned %+v", samples)
	}

	query, _ := url.ParseQuery(handler.queries[len(handler.queries)-1])
	if query.Get("type") != "weight" {
		t.Errorf("type = %q, want weight", query.Get("type"))
	}
	if query.Get("from") != from.Format(time.RFC3339) {
		t.Errorf("from = %q, want %q", query.Get("from"), from.Format(time.RFC3339))
	}
	if query.Has("to") {
		t.Errorf("Zero to-bound must be omitted, query = %v", query)
	}
}

func TestVitals_Latest(t *testing.T) {
	handler := &recordingHandler{body: `{"id": "v-9", "type": "heart_rate", "value": 58, "unit": "bpm"}`}
	api, _, _ := newTestAPI(t, handler)

	sample, err := api.Vitals.Latest(context.Background(), "heart_rate")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if sample.Value != 58 {
		t.Errorf("Latest returned %+v", sample)
	}

	if _, path := handler.lastCall(t); path != "/vitals/latest" {
		t.Errorf("Latest called %s, want /vitals/latest", path)
	}
	query, _ := url.ParseQuery(handler.queries[len(handler.queries)-1])
	if query.Get("type") != "heart_rate" {
		t.Errorf("type = %q, want heart_rate", query.Get("type"))
	}

	if _, err := api.Vitals.Latest(context.Background(), ""); err == nil {
		t.Error("Latest without a type should fail")
	}
}
