package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/memoria/internal/metadata/metadatatest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", "", "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beach.jpg")
	img := metadatatest.JPEG(t, 64, 48, &metadatatest.Fixture{
		Make:     "Canon",
		DateTime: "2023:05:10 14:30:00",
		GPS:      metadatatest.PittsburghGPS(),
	})
	require.NoError(t, os.WriteFile(path, img, 0o644))

	out, err := run(t, "extract", path)
	require.NoError(t, err)

	var got extraction
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, path, got.File)
	require.NotNil(t, got.CapturedAt)
	assert.Equal(t, "2023-05-10T14:30:00Z", got.CapturedAt.UTC().Format("2006-01-02T15:04:05Z"))
	require.NotNil(t, got.Location)
	assert.InDelta(t, 40.446, got.Location.Lat, 0.001)
	assert.InDelta(t, -79.982, got.Location.Lng, 0.001)
	assert.Equal(t, "Canon", got.Metadata["camera_make"])
	assert.Empty(t, got.Issues)
}

func TestExtractRequiresFile(t *testing.T) {
	_, err := run(t, "extract")
	assert.Error(t, err)
}

func TestMigrateSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "memoria.db")
	t.Setenv("MEMORIA_DATABASE_DRIVER", "sqlite")
	t.Setenv("MEMORIA_DATABASE_PATH", dbPath)

	_, err := run(t, "migrate")
	require.NoError(t, err)
	assert.FileExists(t, dbPath)

	// Running again on an existing schema is a no-op.
	_, err = run(t, "migrate")
	assert.NoError(t, err)
}

func TestMigrateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("MEMORIA_DATABASE_DRIVER", "oracle")

	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "unknown database driver")
}

func TestServeRequiresSecret(t *testing.T) {
	t.Setenv("MEMORIA_AUTH_JWT_SECRET", "")
	t.Setenv("MEMORIA_DATABASE_PATH", filepath.Join(t.TempDir(), "memoria.db"))

	_, err := run(t, "serve")
	assert.ErrorContains(t, err, "JWT_SECRET")
}
