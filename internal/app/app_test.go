package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/lamphost/internal/config"
	"github.com/vk/lamphost/internal/lifecycle"
	"github.com/vk/lamphost/internal/plugin"
	"github.com/vk/lamphost/internal/testutil"
)

func testManager(journal *testutil.Journal) *testutil.StaticManager {
	return &testutil.StaticManager{
		ManagerName: "static",
		Journal:     journal,
		Specs: []testutil.Spec{
			{Name: "Core"},
			{Name: "Addon", Depend: []string{"Core"}},
			{Name: "Orphan", Depend: []string{"Missing"}},
		},
	}
}

func TestStartStop(t *testing.T) {
	journal := &testutil.Journal{}
	a, logs := SetupAppTest(t, nil, testManager(journal))

	require.NoError(t, a.Start(context.Background()))

	states := map[string]plugin.State{}
	for _, s := range a.Snapshot() {
		states[s.Name] = s.State
	}
	assert.Equal(t, map[string]plugin.State{
		"Core":   plugin.Enabled,
		"Addon":  plugin.Enabled,
		"Orphan": plugin.Loaded,
	}, states)
	assert.Len(t, a.Diagnostics(), 1)
	assert.Contains(t, logs.String(), "Plugins started.")

	require.NoError(t, a.Stop(context.Background()))
	assert.Equal(t, []string{"disable:Addon", "disable:Core"}, journal.Entries()[4:])
}

func TestRun_StopsOnCancel(t *testing.T) {
	journal := &testutil.Journal{}
	a, _ := SetupAppTest(t, nil, testManager(journal))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, a.Run(ctx))

	assert.Equal(t, 1, journal.Count("disable:Core"))
}

func TestStart_BadRelayURL(t *testing.T) {
	cfg := config.Default()
	cfg.RelayURL = "not-a-url"
	a, _ := SetupAppTest(t, &cfg, testManager(nil))

	err := a.Start(context.Background())

	assert.ErrorContains(t, err, "failed to start diagnostics relay")
}

func TestList_DoesNotInitialize(t *testing.T) {
	journal := &testutil.Journal{}
	a, _ := SetupAppTest(t, nil, testManager(journal))

	statuses := a.List(context.Background())

	require.Len(t, statuses, 3)
	for _, s := range statuses {
		assert.Equal(t, plugin.Loaded, s.State, s.Name)
		assert.Equal(t, "static", s.Manager)
	}
	assert.Empty(t, journal.Entries())
}

func TestCheck_ReportsProblemsWithoutCallbacks(t *testing.T) {
	journal := &testutil.Journal{}
	a, _ := SetupAppTest(t, nil, testManager(journal))

	diags := a.Check(context.Background())

	require.Len(t, diags, 1)
	assert.Equal(t, lifecycle.MissingHardDependency, diags[0].Kind)
	assert.Equal(t, "Orphan", diags[0].Plugin)
	assert.Empty(t, journal.Entries())
}

func TestDefaultManagers_LoadDiskAndBuiltin(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "banner")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugin.hcl"), []byte(`
plugin "Banner" {
  version = "0.1.0"
  main    = "print"
  depend  = ["Core"]
}

plugin "Nowhere" {
  version = "0.1.0"
  main    = "unknown"
}
`), 0o644))

	cfg := config.Default()
	cfg.PluginsPath = root
	a, _ := SetupAppTest(t, &cfg)

	statuses := a.List(context.Background())
	byName := map[string]lifecycle.Status{}
	for _, s := range statuses {
		byName[s.Name] = s
	}
	require.Contains(t, byName, "Core")
	require.Contains(t, byName, "Motd")
	require.Contains(t, byName, "Banner")
	assert.Equal(t, BuiltinManagerName, byName["Core"].Manager)
	assert.Equal(t, "disk", byName["Banner"].Manager)
	assert.Equal(t, plugin.Unloaded, byName["Nowhere"].State)

	failed := 0
	for _, d := range a.Diagnostics() {
		if d.Kind == lifecycle.DiscoveryFailed {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestHealthServer(t *testing.T) {
	a, _ := SetupAppTest(t, nil, testManager(nil))
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(func() { _ = a.Stop(context.Background()) })

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("plugins", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/plugins")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var got []struct {
			Name  string `json:"name"`
			State string `json:"state"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Len(t, got, 3)
		assert.Equal(t, "Core", got[0].Name)
		assert.Equal(t, "enabled", got[0].State)
		assert.Equal(t, "loaded", got[2].State)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/health", "text/plain", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		level, format string
		debug         bool
		json          bool
	}{
		{level: "debug", format: "text", debug: true},
		{level: "info", format: "json", json: true},
		{level: "bogus", format: "text"},
	}
	for _, tc := range testCases {
		t.Run(tc.level+"/"+tc.format, func(t *testing.T) {
			buf := &testutil.SafeBuffer{}
			logger := newLogger(tc.level, tc.format, buf)

			logger.Debug("hidden?")
			logger.Info("shown")

			out := buf.String()
			assert.Equal(t, tc.debug, strings.Contains(out, "hidden?"))
			assert.Contains(t, out, "shown")
			first, _, _ := strings.Cut(out, "\n")
			assert.Equal(t, tc.json, json.Valid([]byte(first)))
		})
	}
}
