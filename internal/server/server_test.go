package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/bnema/modctl/internal/app"
	"github.com/bnema/modctl/internal/download"
	"github.com/bnema/modctl/internal/events"
	"github.com/bnema/modctl/internal/gamebanana"
	"github.com/bnema/modctl/internal/launcher"
	"github.com/bnema/modctl/internal/metrics"
	"github.com/bnema/modctl/internal/mods"
	"github.com/bnema/modctl/internal/scanner"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeLauncher struct {
	state *app.State
}

func (f *fakeLauncher) Launch(_ context.Context, key string) (mods.ModInfo, error) {
	info, err := f.state.Mods.Lookup(key)
	if err != nil {
		return mods.ModInfo{}, err
	}
	return f.state.Mods.Update(info.ID, func(m *mods.ModInfo) error {
		if m.ProcessID != nil {
			return launcher.ErrAlreadyRunning
		}
		m.ProcessID = mods.Ptr(100)
		return nil
	})
}

func (f *fakeLauncher) Stop(key string) error {
	info, err := f.state.Mods.Lookup(key)
	if err != nil {
		return err
	}
	if !info.IsRunning() {
		return launcher.ErrNotRunning
	}
	return nil
}

type fakeInstaller struct {
	started []download.Source
}

func (f *fakeInstaller) Start(_ context.Context, src download.Source) error {
	for _, s := range f.started {
		if s.ModID == src.ModID {
			return download.ErrInProgress
		}
	}
	f.started = append(f.started, src)
	return nil
}

func (f *fakeInstaller) Cancel(modID int64) error {
	for _, s := range f.started {
		if s.ModID == modID {
			return nil
		}
	}
	return fmt.Errorf("%w: %d", download.ErrNotActive, modID)
}

type fakeCatalog struct{}

func (fakeCatalog) Search(_ context.Context, q gamebanana.Query) (gamebanana.Response, error) {
	return gamebanana.Response{
		Mods:  []gamebanana.Mod{{ID: 1, Name: "Match " + q.Search}},
		Total: 1,
	}, nil
}

func (fakeCatalog) Get(_ context.Context, id int64) (gamebanana.Mod, error) {
	if id == 404 {
		return gamebanana.Mod{}, fmt.Errorf("%w: 404", gamebanana.ErrUnexpectedStatus)
	}
	return gamebanana.Mod{ID: id, Name: "Vs. Foo", DownloadURL: "https://files.example/1"}, nil
}

type testEnv struct {
	srv       *Server
	state     *app.State
	installer *fakeInstaller
	root      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := log.New(io.Discard)
	state := app.NewState()
	root := t.TempDir()

	inst := &fakeInstaller{}
	srv := New(Deps{
		State:     state,
		Scanner:   scanner.New(root, true, logger),
		Launcher:  &fakeLauncher{state: state},
		Installer: inst,
		Catalog:   fakeCatalog{},
		Hub:       events.NewHub(logger),
		Metrics:   metrics.New(state.Mods).Handler(),
		Logger:    logger,
	})

	if err := state.Mods.Insert("a", mods.ModInfo{
		Name:            "Alpha",
		Path:            filepath.Join(root, "alpha"),
		MetadataVersion: mods.Ptr(uint32(1)),
	}); err != nil {
		t.Fatal(err)
	}

	return &testEnv{srv: srv, state: state, installer: inst, root: root}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestListAndGetMods(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/mods", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var list []mods.ModInfo
	decode(t, w, &list)
	if len(list) != 1 || list[0].ID != "a" {
		t.Fatalf("unexpected list: %+v", list)
	}

	w = env.do(t, http.MethodGet, "/mods/Alpha", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected lookup by name, got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/mods/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if !strings.Contains(body["error"], "mod not found") {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestLaunchConflictAndRemove(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, http.MethodPost, "/mods/a/launch", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := env.do(t, http.MethodPost, "/mods/a/launch", ""); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/mods/a", ""); w.Code != http.StatusConflict {
		t.Fatalf("expected running mod removal refused, got %d", w.Code)
	}

	if _, err := env.state.Mods.Update("a", func(m *mods.ModInfo) error {
		m.ProcessID = nil
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if w := env.do(t, http.MethodPost, "/mods/a/stop", ""); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 stopping idle mod, got %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/mods/a", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if env.state.Mods.Contains("a") {
		t.Fatal("expected mod removed from registry")
	}
}

func TestTerminalOutput(t *testing.T) {
	env := newTestEnv(t)
	env.state.Terminal.Append("a", "line 1\n")

	w := env.do(t, http.MethodGet, "/mods/a/terminal", "")
	var body struct {
		ID     string `json:"id"`
		Output string `json:"output"`
	}
	decode(t, w, &body)
	if body.ID != "a" || body.Output != "line 1\n" {
		t.Fatalf("unexpected terminal body: %+v", body)
	}
}

func TestDownloads(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/downloads", `{"mod_id": 42}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if len(env.installer.started) != 1 || env.installer.started[0].URL != "https://files.example/1" {
		t.Fatalf("unexpected installer sources: %+v", env.installer.started)
	}

	if w := env.do(t, http.MethodPost, "/downloads", `{"mod_id": 42}`); w.Code != http.StatusConflict {
		t.Fatalf("expected duplicate rejected, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/downloads", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without mod_id, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/downloads", `{"mod_id": 404}`); w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on catalog failure, got %d", w.Code)
	}

	if w := env.do(t, http.MethodDelete, "/downloads/42", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/downloads/7", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCatalogSearch(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/catalog?q=foo&page=2", "")
	var resp gamebanana.Response
	decode(t, w, &resp)
	if resp.Total != 1 || resp.Mods[0].Name != "Match foo" {
		t.Fatalf("unexpected catalog response: %+v", resp)
	}
}

func TestRescanAndToggle(t *testing.T) {
	env := newTestEnv(t)

	modDir := filepath.Join(env.root, "beta")
	sub := filepath.Join(modDir, "mods", "week1")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	meta := `{"id":"b","name":"Beta","metadata_version":1,"engine":{"engine_type":"psych","mods_folder":true}}`
	if err := os.WriteFile(filepath.Join(modDir, scanner.MetadataFileName), []byte(meta), 0644); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodPost, "/rescan", "")
	var result struct {
		Mods    int      `json:"mods"`
		Removed []string `json:"removed"`
	}
	decode(t, w, &result)
	if result.Mods != 1 || len(result.Removed) != 1 || result.Removed[0] != "a" {
		t.Fatalf("unexpected rescan result: %+v", result)
	}

	w = env.do(t, http.MethodGet, "/mods/b/engine-mods", "")
	var engine mods.EngineModsResponse
	decode(t, w, &engine)
	if engine.EngineType != "psych" || len(engine.Mods) != 1 {
		t.Fatalf("unexpected engine mods: %+v", engine)
	}

	w = env.do(t, http.MethodPost, "/mods/b/engine-mods/toggle", `{"name": "week1", "enabled": false}`)
	var toggled mods.DisableResult
	decode(t, w, &toggled)
	if w.Code != http.StatusOK || !toggled.Success || toggled.Enabled {
		t.Fatalf("unexpected toggle result: %d %+v", w.Code, toggled)
	}
	if _, err := os.Stat(filepath.Join(sub, scanner.DisabledMarker)); err != nil {
		t.Fatalf("expected disabled marker: %v", err)
	}

	outside := filepath.Join(env.root, "elsewhere")
	if err := os.MkdirAll(outside, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"../../elsewhere", outside, ".."} {
		body := fmt.Sprintf(`{"name": %q, "enabled": false}`, name)
		if w := env.do(t, http.MethodPost, "/mods/b/engine-mods/toggle", body); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %q, got %d", name, w.Code)
		}
	}
	if _, err := os.Stat(filepath.Join(outside, scanner.DisabledMarker)); !os.IsNotExist(err) {
		t.Fatalf("expected no marker outside the mods folder, got %v", err)
	}
	if w := env.do(t, http.MethodPost, "/mods/b/engine-mods/toggle", `{"name": "week9"}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown sub-mod, got %d", w.Code)
	}

	if w := env.do(t, http.MethodGet, "/mods/a/engine-mods", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for removed mod, got %d", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/metrics", "")
	if !strings.Contains(w.Body.String(), "modctl_registry_mods 1") {
		t.Fatalf("expected registry gauge in metrics, got %s", w.Body.String())
	}
}

func TestRejectsCrossSiteRequests(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/mods/a/launch", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign origin, got %d", w.Code)
	}
	if m, _ := env.state.Mods.Get("a"); m.IsRunning() {
		t.Fatal("expected mod not launched")
	}

	req = httptest.NewRequest(http.MethodPost, "/downloads", strings.NewReader(`{"mod_id": 7}`))
	req.Header.Set("Content-Type", "text/plain")
	w = httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 for text/plain body, got %d", w.Code)
	}
	if len(env.installer.started) != 0 {
		t.Fatalf("expected no download started, got %v", env.installer.started)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for loopback origin, got %d", w.Code)
	}
}
