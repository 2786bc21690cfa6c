package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"rental-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  http_port: 8080
database:
  host: localhost
  user: rental
  database: rental
redis:
  url: redis://localhost:6379/0
jwt:
  secret: 0123456789abcdef0123456789abcdef
storage:
  upload_dir: ./uploads
staff:
  - username: admin
    password_hash: $2a$10$abcdefghijklmnopqrstuv
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := config.Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 72*time.Hour, cfg.CartTTL())
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL())
	assert.Equal(t, "rental.events", cfg.RabbitMQ.Exchange)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 1, cfg.Rentals.StalePendingGraceDays)
	assert.Equal(t, "0 0 1 * * *", cfg.Scheduler.CancelStalePending)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "", cfg.GetGRPCAddress())
	assert.Equal(t, ":8080", cfg.GetHTTPAddress())
	assert.Equal(t, map[string]string{"admin": "$2a$10$abcdefghijklmnopqrstuv"}, cfg.StaffAccounts())
	assert.Equal(t, "postgres://rental:@localhost:5432/rental?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("GRPC_PORT", "9001")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example.com,https://admin.example.com")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, ":9000", cfg.GetHTTPAddress())
	assert.Equal(t, ":9001", cfg.GetGRPCAddress())
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"no port", "database: {host: x}", "invalid HTTP port"},
		{"no redis", `
server: {http_port: 8080}
database: {host: x, user: u, database: d}
`, "redis url is required"},
		{"short secret", `
server: {http_port: 8080}
database: {host: x, user: u, database: d}
redis: {url: "redis://x"}
jwt: {secret: short}
`, "at least 32 characters"},
		{"smtp port", `
server: {http_port: 8080}
database: {host: x, user: u, database: d}
redis: {url: "redis://x"}
smtp: {host: mail.example.com}
`, "invalid SMTP port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Database.Host)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, config.SecurityPublic, config.GetSecurityLevel("ListItems"))
	assert.Equal(t, config.SecurityCustomer, config.GetSecurityLevel("Checkout"))
	assert.Equal(t, config.SecurityStaff, config.GetSecurityLevel("AdminDeleteItem"))
	assert.Equal(t, config.SecurityStaff, config.GetSecurityLevel("SomethingUnknown"))
}
