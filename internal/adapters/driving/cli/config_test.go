package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

func TestConfigShowCmd_ListsKeys(t *testing.T) {
	f := setupCLITest(t)
	f.config.values["display.refresh_hz"] = 90.0
	f.config.cfg.RefreshRate = 90

	out, err := execute(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Regexp(t, `display\.id\s+\(default\)`, out)
	assert.Regexp(t, `display\.refresh_hz\s+90`, out)
	assert.Contains(t, out, "Display PhysicalDisplayId{value=0} at 90.00 Hz, features: none")
}

func TestConfigShowCmd_ReportsInvalidConfig(t *testing.T) {
	f := setupCLITest(t)
	f.config.loadErr = domain.ErrInvalidConfig

	out, err := execute(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is invalid")
}

func TestConfigShowCmd_RequiresService(t *testing.T) {
	setupCLITest(t)
	configService = nil

	_, err := execute(t, "config", "show")

	assert.EqualError(t, err, "config service not configured")
}

func TestConfigSetCmd(t *testing.T) {
	f := setupCLITest(t)

	out, err := execute(t, "config", "set", "display.refresh_hz", "120")

	require.NoError(t, err)
	assert.Contains(t, out, "display.refresh_hz = 120")
	assert.Equal(t, "120", f.config.values["display.refresh_hz"])
}

func TestConfigSetCmd_Error(t *testing.T) {
	f := setupCLITest(t)
	f.config.setErr = errors.New("bad key")

	_, err := execute(t, "config", "set", "nope", "1")

	assert.EqualError(t, err, "bad key")
}

func TestConfigSetCmd_RequiresTwoArgs(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "config", "set", "display.id")

	assert.Error(t, err)
}

func TestConfigPathCmd(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/vsync/config.toml\n", out)
}
