package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/lamphost/internal/plugin"
	"github.com/vk/lamphost/internal/testutil"
)

func TestParse_FullBlock(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	src := `
plugin "Addon" {
  version     = "1.2.0"
  main        = "addon"
  description = "Adds things"
  authors     = ["alice", "bob"]
  depend      = ["Core"]
  softdepend  = ["Motd"]
  metadata    = {
    website = "https://example.org"
    api     = 3
  }
}

plugin "Core" {
  version = "2.0"
  main    = "core"
}
`
	manifests, err := Parse(ctx, "plugin.hcl", []byte(src))
	require.NoError(t, err)
	require.Len(t, manifests, 2)

	addon := manifests[0]
	assert.Equal(t, "addon", addon.Main)
	assert.Equal(t, "plugin.hcl", addon.Filename)
	want := plugin.Descriptor{
		Name:        "Addon",
		Version:     "1.2.0",
		Description: "Adds things",
		Authors:     []string{"alice", "bob"},
		Depend:      []string{"Core"},
		SoftDepend:  []string{"Motd"},
		Metadata:    map[string]string{"website": "https://example.org", "api": "3"},
	}
	if diff := cmp.Diff(want, addon.Descriptor); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}

	core := manifests[1]
	assert.Equal(t, "Core", core.Descriptor.Name)
	assert.Empty(t, core.Descriptor.Depend)
	assert.Nil(t, core.Descriptor.Metadata)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "syntax error",
			src:     `plugin "A" {`,
			wantErr: "failed to parse manifest",
		},
		{
			name: "missing version",
			src: `plugin "A" {
  main = "a"
}`,
			wantErr: "failed to decode manifest",
		},
		{
			name: "blank main",
			src: `plugin "A" {
  version = "1"
  main    = " "
}`,
			wantErr: `plugin "A" must set main`,
		},
		{
			name: "blank name",
			src: `plugin " " {
  version = "1"
  main    = "a"
}`,
			wantErr: "plugin name must not be empty",
		},
		{
			name: "duplicate name",
			src: `plugin "A" {
  version = "1"
  main    = "a"
}
plugin "a" {
  version = "2"
  main    = "b"
}`,
			wantErr: `plugin "a" is already declared`,
		},
		{
			name: "nested metadata",
			src: `plugin "A" {
  version  = "1"
  main     = "a"
  metadata = { deep = { x = 1 } }
}`,
			wantErr: "metadata must be a map of strings",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.LogContext(t)
			_, err := Parse(ctx, "plugin.hcl", []byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("plugin \"Motd\" {\n  version = \"0.1\"\n  main = \"motd\"\n}\n"), 0o644))

	manifests, err := Load(ctx, path)
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	assert.Equal(t, "Motd", manifests[0].Descriptor.Name)
	assert.Equal(t, path, manifests[0].Filename)

	_, err = Load(ctx, filepath.Join(dir, "missing.hcl"))
	assert.ErrorContains(t, err, "failed to read manifest")
}
