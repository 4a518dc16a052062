package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"uma-config/api"
	"uma-config/config"
	"uma-config/kv"
	"uma-config/preset"
	"uma-config/watch"
)

type testServer struct {
	*httptest.Server
	presets *preset.Manager
	hub     *watch.Hub
	store   *kv.Memory
}

// newTestServer wires the API to an in-memory preset store.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := kv.NewMemory()
	hub := watch.NewHub()
	pm, err := preset.NewManager(store, config.Default(), preset.WithOnChange(api.PresetPublisher(hub, nil)))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	srv := httptest.NewServer(api.RegisterRoutes(pm, hub, nil))
	t.Cleanup(hub.Close)
	return &testServer{Server: srv, presets: pm, hub: hub, store: store}
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestGetPresetsDefaults(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/presets")
	if err != nil {
		t.Fatalf("GET /api/presets: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected json content-type, got %q", ct)
	}
	var s preset.Storage
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Index != 0 || len(s.Presets) != preset.Capacity {
		t.Fatalf("expected index 0 and %d presets, got %d and %d", preset.Capacity, s.Index, len(s.Presets))
	}
	if s.Presets[3].Name != "Preset 4" {
		t.Fatalf("expected default name, got %q", s.Presets[3].Name)
	}
}

func TestGetSummaries(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/presets/summary")
	if err != nil {
		t.Fatalf("GET /api/presets/summary: %v", err)
	}
	defer resp.Body.Close()

	var sums []preset.Summary
	json.NewDecoder(resp.Body).Decode(&sums)
	if len(sums) != preset.Capacity {
		t.Fatalf("expected %d summaries, got %d", preset.Capacity, len(sums))
	}
	if !sums[0].Active || sums[1].Active {
		t.Fatalf("expected only slot 0 active, got %+v", sums[:2])
	}
	if sums[0].ConfigName != "Default" {
		t.Fatalf("expected config name Default, got %q", sums[0].ConfigName)
	}
}

func TestSetActive(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := do(t, http.MethodPost, srv.URL+"/api/presets/active", `{"index":4}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out struct {
		Index  int           `json:"index"`
		Config config.Config `json:"config"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if out.Index != 4 || out.Config.ConfigName != "Default" {
		t.Fatalf("unexpected response %+v", out)
	}
	if got := srv.presets.ActiveIndex(); got != 4 {
		t.Fatalf("expected active index 4, got %d", got)
	}
}

func TestSetActiveErrors(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	cases := []struct {
		body string
		want int
	}{
		{`{"index":10}`, http.StatusNotFound},
		{`{"index":-1}`, http.StatusNotFound},
		{`{}`, http.StatusBadRequest},
		{`not-json`, http.StatusBadRequest},
	}
	for _, c := range cases {
		resp := do(t, http.MethodPost, srv.URL+"/api/presets/active", c.body)
		resp.Body.Close()
		if resp.StatusCode != c.want {
			t.Fatalf("%s: expected %d, got %d", c.body, c.want, resp.StatusCode)
		}
	}
	if got := srv.presets.ActiveIndex(); got != 0 {
		t.Fatalf("expected active index unchanged, got %d", got)
	}
}

func TestSavePresetBackfills(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := do(t, http.MethodPut, srv.URL+"/api/presets/2", `{"config_name":"Mile","unity":{"prefer_team_race":[9]}}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var p preset.Preset
	json.NewDecoder(resp.Body).Decode(&p)
	if p.Name != "Preset 3" || p.Config.ConfigName != "Mile" {
		t.Fatalf("unexpected preset %+v", p)
	}
	if p.Config.Scenario != config.Default().Scenario {
		t.Fatalf("expected scenario backfilled, got %q", p.Config.Scenario)
	}
	if got := p.Config.Unity.PreferTeamRace; len(got) != 4 || got[0] != 5 || got[1] != 1 {
		t.Fatalf("expected clamped team race preference, got %v", got)
	}

	raw, ok, _ := srv.store.Get(preset.StorageKey)
	if !ok || !strings.Contains(raw, `"Mile"`) {
		t.Fatalf("expected the save to be persisted, got %q", raw)
	}
}

func TestSavePresetBadRequests(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	cases := []struct {
		path string
		body string
		want int
	}{
		{"/api/presets/abc", `{}`, http.StatusBadRequest},
		{"/api/presets/10", `{}`, http.StatusNotFound},
		{"/api/presets/1", `not-json`, http.StatusBadRequest},
		{"/api/presets/1", ``, http.StatusBadRequest},
		{"/api/presets/1", `null`, http.StatusBadRequest},
	}
	for _, c := range cases {
		resp := do(t, http.MethodPut, srv.URL+c.path, c.body)
		resp.Body.Close()
		if resp.StatusCode != c.want {
			t.Fatalf("PUT %s %q: expected %d, got %d", c.path, c.body, c.want, resp.StatusCode)
		}
	}
}

func TestRenamePreset(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := do(t, http.MethodPut, srv.URL+"/api/presets/1/name", `{"name":"Long distance"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var sum preset.Summary
	json.NewDecoder(resp.Body).Decode(&sum)
	if sum.Index != 1 || sum.Name != "Long distance" {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if got := srv.presets.Snapshot().Presets[1].Name; got != "Long distance" {
		t.Fatalf("expected rename to stick, got %q", got)
	}
}
