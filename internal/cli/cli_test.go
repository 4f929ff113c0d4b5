package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantrack/server/internal/model"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "vantrack.db"))
	t.Setenv("ADMIN_CODE", "ADMIN123")
	t.Setenv("SESSION_SECRET", "cli-secret")
	t.Setenv("LOG_LEVEL", "error")
	envFile = ""
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := RootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_MigrateAndCodes(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	out, err = run(t, "code", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "no daily code generated")

	out, err = run(t, "code", "regenerate")
	require.NoError(t, err)
	assert.Contains(t, out, "daily code for")

	out, err = run(t, "code", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "no daily code generated")
}

func TestCLI_Vehicles(t *testing.T) {
	setupEnv(t)

	e, err := openEnv(context.Background())
	require.NoError(t, err)
	_, err = e.stores.Vehicles.Create(context.Background(), model.VehicleFields{
		Plate: "5545JKZ", DriverName: "Ana", VestColor: model.VestGreen,
	})
	require.NoError(t, err)
	e.Close()

	out, err := run(t, "vehicle", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "5545JKZ")

	out, err = run(t, "vehicle", "search", "5545-jkz")
	require.NoError(t, err)
	assert.Contains(t, out, "matched without separators")
	assert.Contains(t, out, "Ana")

	out, err = run(t, "vehicle", "search", "nope")
	require.NoError(t, err)
	assert.Contains(t, out, `"NOPE"`)

	out, err = run(t, "vehicle", "seen", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "5545JKZ seen at")

	_, err = run(t, "vehicle", "seen", "99")
	assert.Error(t, err)
}
