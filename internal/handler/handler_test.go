package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidatorDomainTags(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		in   any
		ok   bool
	}{
		{"valid times", reminderTimesRequest{Time1: "08:00"}, true},
		{"bad first time", reminderTimesRequest{Time1: "8:00"}, false},
		{"bad second time", reminderTimesRequest{Time1: "08:00", Time2: ptr("25:00")}, false},
		{"good second time", reminderTimesRequest{Time1: "08:00", Time2: ptr("21:30")}, true},
		{"no subcategory", createItemRequest{Name: "Milk"}, true},
		{"lowercase subcategory", createItemRequest{Name: "Milk", Subcategory: "door_bottles"}, true},
		{"unknown subcategory", createItemRequest{Name: "Milk", Subcategory: "GARAGE"}, false},
		{"missing name", createItemRequest{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if (err == nil) != tt.ok {
				t.Errorf("Struct(%+v) err = %v, want ok=%v", tt.in, err, tt.ok)
			}
		})
	}
}

func ptr(s string) *string { return &s }

func TestDecodeWritesValidationMessage(t *testing.T) {
	v := NewValidator()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/", strings.NewReader(`{"time_1":"noon"}`))
	var dst reminderTimesRequest
	if decode(rec, req, v, &dst) {
		t.Fatal("decode should reject an invalid time")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "time1 must be HH:MM") {
		t.Errorf("body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("PUT", "/", strings.NewReader(`{not json`))
	if decode(rec, req, v, &dst) {
		t.Fatal("decode should reject malformed JSON")
	}
	if !strings.Contains(rec.Body.String(), "invalid JSON") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
