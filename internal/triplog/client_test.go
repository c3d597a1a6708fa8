package triplog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendPostsRecord(t *testing.T) {
	var got Record
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Send(context.Background(), "trip-1", map[string]any{"state": "started"})

	if got.TripID != "trip-1" {
		t.Fatalf("unexpected trip id: %s", got.TripID)
	}
	if got.Data["state"] != "started" {
		t.Fatalf("unexpected data: %v", got.Data)
	}
}

func TestSendSwallowsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	// Must not panic or block; errors are logged only.
	c := New(srv.URL)
	c.Send(context.Background(), "trip-1", nil)
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	c.Send(context.Background(), "trip-1", nil)

	if New("") != nil {
		t.Fatalf("expected nil client for empty endpoint")
	}
}
