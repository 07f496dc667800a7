package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, 64, cfg.Format)
	require.Equal(t, ProviderNone, cfg.Provider)
	require.Equal(t, OutputText, cfg.Output)
	require.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deviceid.yaml")
	content := `
format: 32
salt: my-app-v1
host_id: true
provider: Static
external_id: ABCD-1234-EF00
provider_timeout: 250ms
output: YAML
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	require.Equal(t, 32, cfg.Format)
	require.Equal(t, "my-app-v1", cfg.Salt)
	require.True(t, cfg.HostID)
	require.Equal(t, ProviderStatic, cfg.Provider)
	require.Equal(t, "ABCD-1234-EF00", cfg.ExternalID)
	require.Equal(t, 250*time.Millisecond, cfg.ProviderTimeout)
	require.Equal(t, OutputYAML, cfg.Output)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deviceid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("salt: from-file\n"), 0o600))
	t.Setenv("DEVICEID_SALT", "from-env")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Salt)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DEVICEID_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("DEVICEID_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("DEVICEID_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "loaded", os.Getenv("DEVICEID_TEST_DOTENV"))
}

func TestValidate(t *testing.T) {
	valid := Config{Format: 64, Provider: ProviderNone, Output: OutputText, ProviderTimeout: time.Second, AppID: "deviceid"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad format", func(c *Config) { c.Format = 16 }, "unsupported format 16"},
		{"unknown provider", func(c *Config) { c.Provider = "idfa" }, "unknown provider"},
		{"static without token", func(c *Config) { c.Provider = ProviderStatic }, "requires external_id"},
		{"machine without app id", func(c *Config) { c.Provider = ProviderMachine; c.AppID = "" }, "requires app_id"},
		{"bad output", func(c *Config) { c.Output = "xml" }, "unknown output"},
		{"zero timeout", func(c *Config) { c.ProviderTimeout = 0 }, "provider_timeout must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)

				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
