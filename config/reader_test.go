package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "backend:\n  port: 9090\n")

	require.NoError(t, LoadConfig(path))
	require.Equal(t, 9090, AppConfig.Backend.Port)
	require.Equal(t, "sqlite", AppConfig.Databases.Driver)
	require.Equal(t, 10, AppConfig.Backend.PageSize)
	require.Equal(t, time.Second, AppConfig.Cache.TTL)
	require.Equal(t, "index_page", AppConfig.Cache.KeyPrefix)
	require.False(t, AppConfig.Cache.VaryByQuery)
}

func TestLoadConfigPostgres(t *testing.T) {
	path := writeConfig(t, `
db:
  driver: postgres
  master:
    host: db-master
    port: 5432
    user: yatube
    password: secret
    name: yatube
  replicas:
    - host: db-replica-1
      port: 5432
      user: yatube
      password: secret
      name: yatube
cache:
  backend: redis
  ttl: 30s
logs:
  level: debug
`)

	require.NoError(t, LoadConfig(path))
	require.Equal(t, "db-master", AppConfig.Databases.Master.Host)
	require.Len(t, AppConfig.Databases.Replicas, 1)
	require.Equal(t, 30*time.Second, AppConfig.Cache.TTL)
	require.True(t, AppConfig.Debug())
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown driver":   "db:\n  driver: mysql\n",
		"postgres no host": "db:\n  driver: postgres\n",
		"unknown cache":    "cache:\n  backend: memcached\n",
		"empty secret":     "session:\n  secret: \"\"\n",
		"weak secret":      "session:\n  secret: change-me\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			require.Error(t, LoadConfig(writeConfig(t, body)))
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	require.Error(t, LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestDefaultSessionSecretIsRandom(t *testing.T) {
	first, second := Default(), Default()
	require.Len(t, first.Session.Secret, MinSessionSecret)
	require.NotEqual(t, first.Session.Secret, second.Session.Secret)
	require.NoError(t, first.Validate())
}

func TestLoadConfigAcceptsLongSecret(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	require.NoError(t, LoadConfig(writeConfig(t, "session:\n  secret: "+secret+"\n")))
	require.Equal(t, secret, AppConfig.Session.Secret)
}
