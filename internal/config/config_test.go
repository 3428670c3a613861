package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dinekit/dinekit/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)

	require.Equal(t, config.DefaultAppName, cfg.GetAppName())
	require.Equal(t, config.DefaultBackendURL, cfg.GetBackendURL())
	require.Equal(t, 30*time.Minute, cfg.GetSessionTimeout())
	require.Equal(t, 5*time.Minute, cfg.GetWarningLead())
	require.Equal(t, "file", cfg.GetStorageBackend())
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dinekit.toml")
	doc := `
app_name = "Blue Bistro Terminal"
backend_url = "https://api.bluebistro.example"
restaurant_id = "rest-1"

[session]
timeout_minutes = 20
warning_lead_minutes = 2

[storage]
backend = "sqlite"
path = "/var/lib/dinekit/session.db"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "Blue Bistro Terminal", cfg.GetAppName())
	require.Equal(t, "https://api.bluebistro.example", cfg.GetBackendURL())
	require.Equal(t, "rest-1", cfg.GetRestaurantID())
	require.Equal(t, 20*time.Minute, cfg.GetSessionTimeout())
	require.Equal(t, 2*time.Minute, cfg.GetWarningLead())
	require.Equal(t, "sqlite", cfg.GetStorageBackend())
	require.Equal(t, "/var/lib/dinekit/session.db", cfg.GetStoragePath())
	require.Equal(t, "debug", cfg.GetLogLevel())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dinekit.toml")
	require.NoError(t, os.WriteFile(path, []byte(`backend_url = "https://file.example"`), 0o600))

	t.Setenv("DINEKIT_BACKEND_URL", "https://env.example")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://env.example", cfg.GetBackendURL())
}

func TestMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, config.DefaultBackendURL, cfg.GetBackendURL())
}

func TestTimeoutMustExceedWarningLead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dinekit.toml")
	doc := `
[session]
timeout_minutes = 5
warning_lead_minutes = 5
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestUnknownStorageBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dinekit.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[storage]
backend = "etcd"
`), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
