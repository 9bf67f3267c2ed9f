package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("loads every key", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"endpoint_addr_http":             "www.example:9000",
			"database_dsn":                   "postgres://db",
			"secret_key":                     "my_secret_key",
			"access_token_validity_duration": "2h",
			"blob_backend":                   "local",
			"local_storage_dir":              "/data",
			"s3_root_user":                   "user",
			"s3_root_password":               "password",
			"s3_bucket":                      "bucket",
			"s3_region":                      "region",
			"s3_base_endpoint":               "base_endpoint",
			"redis_addr":                     "redis:6379",
			"max_upload_bytes":               1024,
			"log_level":                      "debug",
			"create_attachment":              map[string]any{"required": false, "types": []string{"png"}},
			"update_attachment":              map[string]any{"required": false, "types": []string{"pdf"}},
			"report_roles":                   []string{"ADMIN"},
		})
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 2*time.Hour, cfg.AccessTokenValidityDuration)
		assert.Equal(t, "local", cfg.BlobBackend)
		assert.Equal(t, "/data", cfg.LocalStorageDir)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "redis:6379", cfg.RedisAddr)
		assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, AttachmentRule{Required: false, Types: []string{"png"}}, cfg.CreateAttachment)
		assert.Equal(t, AttachmentRule{Required: false, Types: []string{"pdf"}}, cfg.UpdateAttachment)
		assert.Equal(t, []string{"ADMIN"}, cfg.ReportRoles)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{"secret_key": "only-this"})
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "only-this", cfg.SecretKey)
		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, 24*time.Hour, cfg.AccessTokenValidityDuration)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddrHTTP: "defaults:1234", SecretKey: "key"}
		parseJson(cfg)

		assert.Equal(t, &Config{EndpointAddrHTTP: "defaults:1234", SecretKey: "key"}, cfg)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("invalid json panics", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
		os.Args = []string{"testbin", "-c", path}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
