package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_List(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"list", "--no-color", "--plugins-path", t.TempDir()}, &stdout, &stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Core")
	assert.Contains(t, stdout.String(), "Motd")
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"--help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "lamphost")
}
