package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courtsec/courtsec/client"
)

func TestIncidentUpdateSendsMergedRequest(t *testing.T) {
	isolate(t)
	buf := captureOutput(t)

	var got client.UpdateIncidentRequest
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/incidents/inc-1", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(client.Incident{ //nolint:errcheck
			ID: "inc-1", Status: "Open", Type: "VerbalThreat", Narrative: "Raised voices", County: "Franklin",
		})
	})
	mux.HandleFunc("PUT /api/v1/incidents/inc-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		json.NewEncoder(w).Encode(client.Incident{ID: "inc-1", Status: got.Status}) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	err := executeArgs(t, newRootCmd(), "--url", srv.URL, "--api-key", "cs_test", "--format", "quiet",
		"incident", "update", "inc-1", "--status", "Closed")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if got.Status != "Closed" {
		t.Errorf("status: got %q", got.Status)
	}
	if got.Narrative != "Raised voices" || got.County != "Franklin" {
		t.Errorf("unchanged fields not carried over: %+v", got)
	}
	if strings.TrimSpace(buf.String()) != "inc-1" {
		t.Errorf("output: got %q", buf.String())
	}
}

func TestDoctorReportsUnreachableServer(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	flagURL = srv.URL
	flagKey = "cs_test"

	var out strings.Builder
	if err := runDoctor(&out); err == nil {
		t.Fatal("expected doctor to fail")
	}
	if !strings.Contains(out.String(), "[FAIL] Server reachable") {
		t.Errorf("output:\n%s", out.String())
	}
}
