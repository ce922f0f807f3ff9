package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/current.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "10001,US" {
			t.Errorf("unexpected query %q", got)
		}
		if got := r.URL.Query().Get("aqi"); got != "no" {
			t.Errorf("expected aqi=no, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current":{"temp_f":68.5,"condition":{"text":"Partly cloudy"}}}`))
	}))
	defer srv.Close()

	c := NewClientWith(srv.URL, "test-key")
	report, err := c.Current(context.Background(), "10001")
	if err != nil {
		t.Fatal(err)
	}

	if report.Condition != "Partly cloudy" {
		t.Errorf("condition = %q", report.Condition)
	}
	if report.TempF != 68.5 {
		t.Errorf("temp_f = %v", report.TempF)
	}

	want := "The current weather is Partly cloudy with a temperature of 68 degrees Fahrenheit."
	if got := report.Announcement(); got != want {
		t.Errorf("announcement = %q, want %q", got, want)
	}
}

func TestCurrentAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
	}))
	defer srv.Close()

	c := NewClientWith(srv.URL, "test-key")
	if _, err := c.Current(context.Background(), "00000"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCurrentMissingKey(t *testing.T) {
	c := NewClientWith("http://localhost:0", "")
	if _, err := c.Current(context.Background(), "10001"); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
