package mochow

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigEnvVar names the environment variable consulted for the config file
// path when LoadConfig is given none.
const ConfigEnvVar = "MOCHOW_CONFIG"

// defaultConfigFile is probed in the working directory as a last resort.
const defaultConfigFile = "mochow.yaml"

// FileConfig is the YAML form of a client configuration.
type FileConfig struct {
	Endpoint          string        `yaml:"endpoint"`
	Protocol          string        `yaml:"protocol"`
	Account           string        `yaml:"account"`
	APIKey            string        `yaml:"api_key"`
	APIKeyFile        string        `yaml:"api_key_file"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
	SocketTimeout     time.Duration `yaml:"socket_timeout"`
	MaxConnections    int           `yaml:"max_connections"`
	IOThreadCount     int           `yaml:"io_thread_count"`
	Retry             RetryConfig   `yaml:"retry"`
	LocalAddress      string        `yaml:"local_address"`
	SocketBufferSize  int           `yaml:"socket_buffer_size"`
	AsyncPut          bool          `yaml:"async_put"`
}

// RetryConfig is the YAML form of a RetryPolicy.
type RetryConfig struct {
	MaxErrorRetry int           `yaml:"max_error_retry"`
	MaxDelay      time.Duration `yaml:"max_delay"`
}

// LoadConfig builds a ClientConfiguration from layered sources.
//
// The loading order is:
//  1. DefaultConfiguration
//  2. YAML file (explicit path, MOCHOW_CONFIG, ./mochow.yaml)
//  3. MOCHOW_* environment variables
//  4. api_key_file resolution
//  5. Validation
func LoadConfig(path string) (ClientConfiguration, error) {
	fc := defaultFileConfig()

	if filePath := discoverConfigFile(path); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return ClientConfiguration{}, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return ClientConfiguration{}, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&fc); err != nil {
		return ClientConfiguration{}, err
	}

	if fc.APIKeyFile != "" && fc.APIKey == "" {
		data, err := os.ReadFile(fc.APIKeyFile)
		if err != nil {
			return ClientConfiguration{}, fmt.Errorf("api_key_file: %w", err)
		}
		fc.APIKey = strings.TrimSpace(string(data))
	}

	if err := fc.Validate(); err != nil {
		return ClientConfiguration{}, fmt.Errorf("config validation: %w", err)
	}

	return fc.ClientConfiguration()
}

func defaultFileConfig() FileConfig {
	d := DefaultConfiguration()
	return FileConfig{
		Protocol:          string(d.Protocol),
		ConnectionTimeout: d.ConnectionTimeout,
		SocketTimeout:     d.SocketTimeout,
		MaxConnections:    d.MaxConnections,
		IOThreadCount:     d.IOThreadCount,
		Retry: RetryConfig{
			MaxErrorRetry: d.RetryPolicy.MaxErrorRetry,
			MaxDelay:      d.RetryPolicy.MaxDelay,
		},
		AsyncPut: d.AsyncPut,
	}
}

func discoverConfigFile(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(ConfigEnvVar); env != "" {
		return env
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}

// applyEnvOverrides copies MOCHOW_* variables over file values. Malformed
// numeric values are reported rather than ignored.
func applyEnvOverrides(fc *FileConfig) error {
	strs := map[string]*string{
		"MOCHOW_ENDPOINT":      &fc.Endpoint,
		"MOCHOW_PROTOCOL":      &fc.Protocol,
		"MOCHOW_ACCOUNT":       &fc.Account,
		"MOCHOW_API_KEY":       &fc.APIKey,
		"MOCHOW_API_KEY_FILE":  &fc.APIKeyFile,
		"MOCHOW_LOCAL_ADDRESS": &fc.LocalAddress,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MOCHOW_MAX_CONNECTIONS":    &fc.MaxConnections,
		"MOCHOW_IO_THREAD_COUNT":    &fc.IOThreadCount,
		"MOCHOW_SOCKET_BUFFER_SIZE": &fc.SocketBufferSize,
		"MOCHOW_MAX_ERROR_RETRY":    &fc.Retry.MaxErrorRetry,
	}
	for name, dst := range ints {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
	}

	durations := map[string]*time.Duration{
		"MOCHOW_CONNECTION_TIMEOUT": &fc.ConnectionTimeout,
		"MOCHOW_SOCKET_TIMEOUT":     &fc.SocketTimeout,
		"MOCHOW_MAX_DELAY":          &fc.Retry.MaxDelay,
	}
	for name, dst := range durations {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}

	if v := os.Getenv("MOCHOW_ASYNC_PUT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MOCHOW_ASYNC_PUT: %w", err)
		}
		fc.AsyncPut = b
	}
	return nil
}

// Validate reports the first invalid field.
func (fc FileConfig) Validate() error {
	if fc.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}
	if fc.Account == "" || fc.APIKey == "" {
		return ErrMissingCredentials
	}
	switch Protocol(strings.ToLower(fc.Protocol)) {
	case ProtocolHTTP, ProtocolHTTPS:
	default:
		return fmt.Errorf("%w: protocol must be http or https, got %q", ErrInvalidConfig, fc.Protocol)
	}
	if fc.ConnectionTimeout < 0 || fc.SocketTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if fc.MaxConnections < 1 {
		return fmt.Errorf("%w: max_connections must be at least 1", ErrInvalidConfig)
	}
	if fc.IOThreadCount < 1 {
		return fmt.Errorf("%w: io_thread_count must be at least 1", ErrInvalidConfig)
	}
	if fc.Retry.MaxErrorRetry < 0 || fc.Retry.MaxDelay < 0 {
		return fmt.Errorf("%w: retry values must not be negative", ErrInvalidConfig)
	}
	if fc.SocketBufferSize < 0 {
		return fmt.Errorf("%w: socket_buffer_size must not be negative", ErrInvalidConfig)
	}
	if fc.LocalAddress != "" && net.ParseIP(fc.LocalAddress) == nil {
		return fmt.Errorf("%w: local_address %q is not an IP address", ErrInvalidConfig, fc.LocalAddress)
	}
	return nil
}

// ClientConfiguration converts fc into a configuration for NewClient.
func (fc FileConfig) ClientConfiguration() (ClientConfiguration, error) {
	creds, err := NewCredentials(fc.Account, fc.APIKey)
	if err != nil {
		return ClientConfiguration{}, err
	}

	cfg := DefaultConfiguration()
	cfg.Endpoint = fc.Endpoint
	cfg.Protocol = Protocol(strings.ToLower(fc.Protocol))
	cfg.Credentials = creds
	cfg.ConnectionTimeout = fc.ConnectionTimeout
	cfg.SocketTimeout = fc.SocketTimeout
	cfg.MaxConnections = fc.MaxConnections
	cfg.IOThreadCount = fc.IOThreadCount
	cfg.RetryPolicy = RetryPolicy{
		MaxErrorRetry: fc.Retry.MaxErrorRetry,
		MaxDelay:      fc.Retry.MaxDelay,
	}
	if fc.LocalAddress != "" {
		cfg.LocalAddress = net.ParseIP(fc.LocalAddress)
	}
	cfg.SocketBufferSize = fc.SocketBufferSize
	cfg.AsyncPut = fc.AsyncPut
	return cfg, nil
}
