package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/lamphost/internal/testutil"
)

func TestLifecycle(t *testing.T) {
	ctx, logs := testutil.LogContext(t)
	def := Definition()
	require.NoError(t, def.Descriptor.Validate())

	p := def.Factory().(*Plugin)
	require.NoError(t, p.OnInitialize(ctx))
	assert.False(t, p.Ready())

	require.NoError(t, p.OnEnable(ctx))
	assert.True(t, p.Ready())

	require.NoError(t, p.OnDisable(ctx))
	assert.False(t, p.Ready())
	assert.Contains(t, logs.String(), "Core services ready.")
}
