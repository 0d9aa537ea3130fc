package mochow

import (
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/baidu/mochow-sdk-go/internal/api"
)

// Protocol is the URL scheme used when the endpoint has none.
type Protocol string

// Supported protocols.
const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
)

const (
	defaultConnectionTimeout = 50 * time.Second
	defaultSocketTimeout     = 50 * time.Second
	defaultMaxConnections    = 50
	defaultWaitTimeout       = 10 * time.Minute
	defaultPollInterval      = 3 * time.Second
)

// ClientConfiguration holds every client setting. Build one from
// DefaultConfiguration, adjust fields, and pass it to NewClient. NewClient
// copies the value, so later changes do not affect a constructed client.
type ClientConfiguration struct {
	// Endpoint is the server address. A missing scheme is filled from Protocol.
	Endpoint string
	Protocol Protocol
	// Credentials sign every request when set.
	Credentials *Credentials

	ConnectionTimeout time.Duration
	SocketTimeout     time.Duration
	MaxConnections    int
	// IOThreadCount is the number of PUT dispatcher workers.
	IOThreadCount    int
	RetryPolicy      RetryPolicy
	LocalAddress     net.IP
	SocketBufferSize int
	AsyncPut         bool

	// HTTPClient replaces the pooled HTTP client.
	HTTPClient *http.Client
	// PoolRegistry shares connection pools between clients of one endpoint.
	PoolRegistry *PoolRegistry

	Logger            *slog.Logger
	MetricsRegisterer prometheus.Registerer
}

// DefaultConfiguration returns the default settings with no endpoint or
// credentials.
func DefaultConfiguration() ClientConfiguration {
	return ClientConfiguration{
		Protocol:          ProtocolHTTP,
		ConnectionTimeout: defaultConnectionTimeout,
		SocketTimeout:     defaultSocketTimeout,
		MaxConnections:    defaultMaxConnections,
		IOThreadCount:     runtime.NumCPU(),
		RetryPolicy:       api.DefaultRetryPolicy(),
		AsyncPut:          true,
	}
}

// Clone returns a copy of c that shares no mutable state with it.
func (c ClientConfiguration) Clone() ClientConfiguration {
	out := c
	if c.LocalAddress != nil {
		out.LocalAddress = append(net.IP(nil), c.LocalAddress...)
	}
	return out
}

// Option configures the client.
type Option func(*ClientConfiguration)

// WaitOption configures a state waiter.
type WaitOption func(*waitConfig)

// waitConfig holds configuration for state waiters.
type waitConfig struct {
	timeout      time.Duration
	pollInterval time.Duration
}

// WithProtocol sets the scheme used when the endpoint has none.
func WithProtocol(p Protocol) Option {
	return func(c *ClientConfiguration) {
		c.Protocol = p
	}
}

// WithConnectionTimeout sets the TCP connect timeout.
// Default: 50 seconds
func WithConnectionTimeout(d time.Duration) Option {
	return func(c *ClientConfiguration) {
		c.ConnectionTimeout = d
	}
}

// WithSocketTimeout sets how long to wait for response headers after the
// request is written.
// Default: 50 seconds
func WithSocketTimeout(d time.Duration) Option {
	return func(c *ClientConfiguration) {
		c.SocketTimeout = d
	}
}

// WithMaxConnections caps connections per host.
// Default: 50
func WithMaxConnections(n int) Option {
	return func(c *ClientConfiguration) {
		c.MaxConnections = n
	}
}

// WithIOThreadCount sets the number of PUT dispatcher workers.
// Default: number of CPUs
func WithIOThreadCount(n int) Option {
	return func(c *ClientConfiguration) {
		c.IOThreadCount = n
	}
}

// WithRetryPolicy sets the retry policy.
// Default: 3 retries, 20 second maximum delay
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *ClientConfiguration) {
		c.RetryPolicy = p
	}
}

// WithLocalAddress binds outgoing connections to ip.
func WithLocalAddress(ip net.IP) Option {
	return func(c *ClientConfiguration) {
		c.LocalAddress = ip
	}
}

// WithSocketBufferSize sets the transport read and write buffer sizes.
// Zero keeps the transport default.
func WithSocketBufferSize(n int) Option {
	return func(c *ClientConfiguration) {
		c.SocketBufferSize = n
	}
}

// WithAsyncPut toggles the PUT dispatcher.
// Default: true
func WithAsyncPut(enabled bool) Option {
	return func(c *ClientConfiguration) {
		c.AsyncPut = enabled
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *ClientConfiguration) {
		c.HTTPClient = client
	}
}

// WithPoolRegistry shares connection pools through r.
func WithPoolRegistry(r *PoolRegistry) Option {
	return func(c *ClientConfiguration) {
		c.PoolRegistry = r
	}
}

// WithLogger sets the structured logger. Requests are logged at debug level.
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(c *ClientConfiguration) {
		c.Logger = l
	}
}

// WithMetricsRegisterer registers request metrics with reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *ClientConfiguration) {
		c.MetricsRegisterer = reg
	}
}

// WithWaitTimeout sets the maximum time a waiter polls.
// Default: 10 minutes
func WithWaitTimeout(d time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.timeout = d
	}
}

// WithPollInterval sets the delay between polls.
// Default: 3 seconds
func WithPollInterval(d time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.pollInterval = d
	}
}
