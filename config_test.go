package mochow

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mochowEnvVars = []string{
	ConfigEnvVar,
	"MOCHOW_ENDPOINT",
	"MOCHOW_PROTOCOL",
	"MOCHOW_ACCOUNT",
	"MOCHOW_API_KEY",
	"MOCHOW_API_KEY_FILE",
	"MOCHOW_LOCAL_ADDRESS",
	"MOCHOW_MAX_CONNECTIONS",
	"MOCHOW_IO_THREAD_COUNT",
	"MOCHOW_SOCKET_BUFFER_SIZE",
	"MOCHOW_MAX_ERROR_RETRY",
	"MOCHOW_CONNECTION_TIMEOUT",
	"MOCHOW_SOCKET_TIMEOUT",
	"MOCHOW_MAX_DELAY",
	"MOCHOW_ASYNC_PUT",
}

// clearEnv blanks every variable LoadConfig reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range mochowEnvVars {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "mochow.yaml", `
endpoint: 127.0.0.1:5287
protocol: https
account: root
api_key: secret
connection_timeout: 5s
socket_timeout: 30s
max_connections: 10
io_thread_count: 2
retry:
  max_error_retry: 5
  max_delay: 10s
local_address: 10.0.0.1
socket_buffer_size: 65536
async_put: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5287", cfg.Endpoint)
	assert.Equal(t, ProtocolHTTPS, cfg.Protocol)
	require.NotNil(t, cfg.Credentials)
	assert.Equal(t, "root", cfg.Credentials.Account())
	assert.Equal(t, "secret", cfg.Credentials.APIKey())
	assert.Equal(t, 5*time.Second, cfg.ConnectionTimeout)
	assert.Equal(t, 30*time.Second, cfg.SocketTimeout)
	assert.Equal(t, 10, cfg.MaxConnections)
	assert.Equal(t, 2, cfg.IOThreadCount)
	assert.Equal(t, RetryPolicy{MaxErrorRetry: 5, MaxDelay: 10 * time.Second}, cfg.RetryPolicy)
	assert.True(t, cfg.LocalAddress.Equal(net.ParseIP("10.0.0.1")))
	assert.Equal(t, 65536, cfg.SocketBufferSize)
	assert.False(t, cfg.AsyncPut)
}

func TestLoadConfig_ProtocolCaseInsensitive(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "mochow.yaml", "endpoint: 127.0.0.1:5287\nprotocol: HTTPS\naccount: root\napi_key: secret\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ProtocolHTTPS, cfg.Protocol)

	t.Setenv("MOCHOW_PROTOCOL", "Http")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ProtocolHTTP, cfg.Protocol)
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "mochow.yaml", "endpoint: 127.0.0.1:5287\naccount: root\napi_key: secret\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	defaults := DefaultConfiguration()
	assert.Equal(t, ProtocolHTTP, cfg.Protocol)
	assert.Equal(t, defaults.ConnectionTimeout, cfg.ConnectionTimeout)
	assert.Equal(t, defaults.SocketTimeout, cfg.SocketTimeout)
	assert.Equal(t, defaults.MaxConnections, cfg.MaxConnections)
	assert.Equal(t, defaults.IOThreadCount, cfg.IOThreadCount)
	assert.Equal(t, defaults.RetryPolicy, cfg.RetryPolicy)
	assert.True(t, cfg.AsyncPut)
	assert.Nil(t, cfg.LocalAddress)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "mochow.yaml", "endpoint: 127.0.0.1:5287\naccount: root\napi_key: secret\n")

	t.Setenv("MOCHOW_ENDPOINT", "10.0.0.2:5287")
	t.Setenv("MOCHOW_API_KEY", "from-env")
	t.Setenv("MOCHOW_MAX_CONNECTIONS", "7")
	t.Setenv("MOCHOW_MAX_DELAY", "3s")
	t.Setenv("MOCHOW_ASYNC_PUT", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.2:5287", cfg.Endpoint)
	assert.Equal(t, "from-env", cfg.Credentials.APIKey())
	assert.Equal(t, 7, cfg.MaxConnections)
	assert.Equal(t, 3*time.Second, cfg.RetryPolicy.MaxDelay)
	assert.False(t, cfg.AsyncPut)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("MOCHOW_ENDPOINT", "127.0.0.1:5287")
	t.Setenv("MOCHOW_ACCOUNT", "root")
	t.Setenv("MOCHOW_API_KEY", "secret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5287", cfg.Endpoint)
}

func TestLoadConfig_ConfigEnvVar(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "custom.yaml", "endpoint: 127.0.0.1:5287\naccount: root\napi_key: secret\n")
	t.Setenv(ConfigEnvVar, path)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5287", cfg.Endpoint)
}

func TestLoadConfig_APIKeyFile(t *testing.T) {
	clearEnv(t)
	keyPath := writeFile(t, "api_key", "  file-secret\n")
	path := writeFile(t, "mochow.yaml", "endpoint: 127.0.0.1:5287\naccount: root\napi_key_file: "+keyPath+"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.Credentials.APIKey())
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "missing endpoint",
			yaml:    "account: root\napi_key: secret\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "missing credentials",
			yaml:    "endpoint: 127.0.0.1:5287\naccount: root\n",
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "bad protocol",
			yaml:    "endpoint: 127.0.0.1:5287\naccount: root\napi_key: k\nprotocol: ftp\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "zero io threads",
			yaml:    "endpoint: 127.0.0.1:5287\naccount: root\napi_key: k\nio_thread_count: 0\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "negative retries",
			yaml:    "endpoint: 127.0.0.1:5287\naccount: root\napi_key: k\nretry:\n  max_error_retry: -1\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "bad local address",
			yaml:    "endpoint: 127.0.0.1:5287\naccount: root\napi_key: k\nlocal_address: nope\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name: "bad env integer",
			yaml: "endpoint: 127.0.0.1:5287\naccount: root\napi_key: k\n",
			env:  map[string]string{"MOCHOW_MAX_CONNECTIONS": "many"},
		},
		{
			name: "malformed yaml",
			yaml: "endpoint: [\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeFile(t, "mochow.yaml", tt.yaml)

			_, err := LoadConfig(path)
			require.Error(t, err)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_NewClient(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "mochow.yaml", "endpoint: 127.0.0.1:5287\naccount: root\napi_key: secret\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	c, err := NewClient(cfg)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "http://127.0.0.1:5287", c.Endpoint())
}
