package providers

import (
	"dashgate/internal/structures"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
webServer:
  host: 127.0.0.1
  port: 9000
gateway:
  baseUrl: http://backend.local:5678/webhook/api
  token: secret
logger:
  level: debug
  mode: 420
  dir: /tmp
cache:
  ttl: 90s
pagination:
  pageSize: 20
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfigProvider_LoadsFileAndDefaults(t *testing.T) {
	path := writeConfig(t, testConfigYAML)

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, "DashGate", conf.AppName)
	assert.True(t, conf.Debug)
	assert.Equal(t, path, conf.Path)
	assert.Equal(t, 9000, conf.WebServer.Port)
	assert.Equal(t, "http://backend.local:5678/webhook/api", conf.Gateway.BaseURL)
	assert.Equal(t, "secret", conf.Gateway.Token)
	assert.Equal(t, 90*time.Second, conf.Cache.TTL)
	assert.Equal(t, 20, conf.Pagination.PageSize)

	// defaults
	assert.Equal(t, "memory", conf.Storage.Driver)
	assert.Equal(t, 5, conf.Pagination.WindowSize)
	assert.Equal(t, "list", conf.Pagination.ListField)
	assert.Equal(t, "total", conf.Pagination.TotalField)
	assert.True(t, conf.Cache.Enabled)
	assert.NotEmpty(t, conf.Conversation.SellerIndicators)
}

func TestNewConfigProvider_EnvOverride(t *testing.T) {
	path := writeConfig(t, testConfigYAML)
	t.Setenv("DASHGATE_BASE_URL", "http://override.local/api")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "http://override.local/api", conf.Gateway.BaseURL)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "nope.yml")})
	assert.Error(t, err)
}

func TestNewConfigProvider_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `
webServer:
  host: 127.0.0.1
  port: 9000
logger:
  level: info
  mode: 420
  dir: /tmp
`)
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	assert.Error(t, err, "missing gateway.baseUrl must fail validation")
}
