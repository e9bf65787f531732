package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vsync-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driving"
)

func TestBootstrap_FileBacked(t *testing.T) {
	dir := t.TempDir()

	svc, err := bootstrap(cli.BootstrapOptions{ConfigDir: dir})
	require.NoError(t, err)
	require.NotNil(t, svc.Close)
	defer func() { require.NoError(t, svc.Close()) }()

	assert.Equal(t, filepath.Join(dir, "config.toml"), svc.Config.Path())

	require.NoError(t, svc.Config.Set("display.refresh_hz", "90"))
	cfg, err := svc.Config.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.Fps(90), cfg.RefreshRate)

	session, err := svc.Simulator.NewSession(context.Background(), cfg, driving.SessionOptions{Record: true})
	require.NoError(t, err)
	require.NotNil(t, session.TraceSession())
	require.NoError(t, session.Close())

	sessions, err := svc.Traces.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, session.TraceSession().ID, sessions[0].ID)
}

func TestBootstrap_Ephemeral(t *testing.T) {
	svc, err := bootstrap(cli.BootstrapOptions{Ephemeral: true})
	require.NoError(t, err)

	assert.Nil(t, svc.Close)
	assert.Equal(t, ":memory:", svc.Config.Path())

	_, err = svc.Config.Watch(context.Background())
	assert.Error(t, err, "memory config never changes")

	cfg, err := svc.Config.Load()
	require.NoError(t, err)
	session, err := svc.Simulator.NewSession(context.Background(), cfg, driving.SessionOptions{Record: true})
	require.NoError(t, err)
	require.NoError(t, session.Close())

	sessions, err := svc.Traces.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
