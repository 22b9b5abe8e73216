package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

const minimalYAML = `
storage:
  driver: appwrite
  appwrite:
    endpoint: "https://cloud.appwrite.io/v1"
    project_id: "proj"
    api_key: "key"
    database_id: "db"
    collection_id: "col"
email:
  provider: resend
  from: "verification@email.cherrizbox.com"
  to: "review@cherrizbox.com"
  resend:
    api_key: "re_test"
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.App.Env)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "generate", cfg.Verify.Policy)
	require.Equal(t, "memory", cfg.Cache.Kind)
	require.Equal(t, "verify:", cfg.Cache.Redis.Prefix)
	require.Equal(t, "https://api.resend.com", cfg.Email.Resend.BaseURL)
	require.Equal(t, 587, cfg.Email.SMTP.Port)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APPWRITE_ENDPOINT", "https://selfhosted.example/v1")
	t.Setenv("APPWRITE_API_KEY", "env-key")
	t.Setenv("VERIFY_POLICY", "reuse")
	t.Setenv("RESEND_API_KEY", "re_env")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	require.Equal(t, "https://selfhosted.example/v1", cfg.Storage.Appwrite.Endpoint)
	require.Equal(t, "env-key", cfg.Storage.Appwrite.APIKey)
	require.Equal(t, "reuse", cfg.Verify.Policy)
	require.Equal(t, "re_env", cfg.Email.Resend.APIKey)
}

func TestValidateMissingAppwriteCredentials(t *testing.T) {
	_, err := Load(writeConfig(t, `
storage:
  driver: appwrite
email:
  provider: resend
  from: "a@b.c"
  to: "d@e.f"
  resend:
    api_key: "x"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage.appwrite")
}

func TestValidatePostgresNeedsDSN(t *testing.T) {
	_, err := Load(writeConfig(t, `
storage:
  driver: postgres
email:
  provider: resend
  from: "a@b.c"
  to: "d@e.f"
  resend:
    api_key: "x"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "dsn")
}

func TestValidateUnknownPolicy(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
verify:
  policy: random
`))
	require.Error(t, err)
}

func TestValidateMissingRecipients(t *testing.T) {
	_, err := Load(writeConfig(t, `
storage:
  driver: appwrite
  appwrite:
    endpoint: "https://cloud.appwrite.io/v1"
    project_id: "proj"
    api_key: "key"
    database_id: "db"
    collection_id: "col"
email:
  provider: resend
  resend:
    api_key: "re_test"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "email.from")
}

func TestValidateBadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
verify:
  policy: generate
  account_cache_ttl: "not-a-duration"
`))
	require.Error(t, err)
}

func TestDurationHelper(t *testing.T) {
	require.Equal(t, 10*time.Second, Duration("10s", time.Minute))
	require.Equal(t, time.Minute, Duration("", time.Minute))
	require.Equal(t, time.Minute, Duration("garbage", time.Minute))
}
