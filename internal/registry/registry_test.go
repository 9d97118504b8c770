package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/lamphost/internal/testutil"
)

func newTestRegistry() (*Registry, *testutil.StaticManager, *testutil.StaticManager) {
	java := testutil.NewStaticManager("java", nil,
		testutil.Spec{Name: "Core"},
		testutil.Spec{Name: "Addon", Depend: []string{"core"}, SoftDepend: []string{"Motd"}},
	)
	scripts := testutil.NewStaticManager("scripts", nil,
		testutil.Spec{Name: "Motd", SoftDepend: []string{"Addon"}},
		testutil.Spec{Name: "CORE", Version: "9.9"},
		testutil.Spec{Name: "Ghost", Unloaded: true},
	)
	return New(java, scripts), java, scripts
}

func TestFindHandle_IgnoresCaseAndFirstMatchWins(t *testing.T) {
	reg, java, _ := newTestRegistry()

	h, ok := reg.FindHandle("cOrE")
	require.True(t, ok)
	assert.Equal(t, "Core", h.Name())
	assert.Equal(t, java, h.Manager())

	_, ok = reg.FindHandle("Nope")
	assert.False(t, ok)
}

func TestFindPluginAndManager(t *testing.T) {
	reg, java, scripts := newTestRegistry()

	p, ok := reg.FindPlugin("motd")
	require.True(t, ok)
	assert.Same(t, scripts.Plugin("Motd"), p)

	m, ok := reg.FindManager("addon")
	require.True(t, ok)
	assert.Equal(t, java, m)

	_, ok = reg.FindPlugin("Ghost")
	assert.False(t, ok, "an unloaded handle has no instance")

	_, ok = reg.FindManager("Nope")
	assert.False(t, ok)
}

func TestHandles_RegistrationOrder(t *testing.T) {
	reg, _, _ := newTestRegistry()

	var names []string
	for _, h := range reg.Handles() {
		names = append(names, h.Name())
	}
	assert.Equal(t, []string{"Core", "Addon", "Motd", "CORE", "Ghost"}, names)
	assert.Len(t, reg.Managers(), 2)
}

func TestDependents_HardOnly(t *testing.T) {
	reg, _, _ := newTestRegistry()

	dependents := reg.Dependents("Core")
	require.Len(t, dependents, 1)
	assert.Equal(t, "Addon", dependents[0].Name())

	assert.Empty(t, reg.Dependents("Motd"), "soft dependents are not cascaded")
}

func TestDuplicates(t *testing.T) {
	reg, _, _ := newTestRegistry()

	dups := reg.Duplicates()
	require.Len(t, dups, 1)
	assert.Equal(t, "CORE", dups[0].Name())
	assert.Equal(t, "9.9", dups[0].Version())
}

func TestAdd_RejectsDuplicateManager(t *testing.T) {
	reg, java, _ := newTestRegistry()
	assert.Panics(t, func() { reg.Add(java) })
	assert.Panics(t, func() { reg.Add(testutil.NewStaticManager("JAVA", nil)) })
}

func TestGraph_SkipsShadowedAndUnknown(t *testing.T) {
	reg, _, _ := newTestRegistry()

	cycles := reg.Graph().Cycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"Addon", "Motd", "Addon"}, cycles[0])

	shadowed := New(
		testutil.NewStaticManager("first", nil,
			testutil.Spec{Name: "Core"},
			testutil.Spec{Name: "Addon", Depend: []string{"Core", "Missing"}},
		),
		testutil.NewStaticManager("second", nil, testutil.Spec{Name: "core", Depend: []string{"Addon"}}),
	)
	assert.Empty(t, shadowed.Graph().Cycles(), "a shadowed plugin contributes no edges")
}
