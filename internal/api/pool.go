package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// TransportConfig holds connection pool settings.
type TransportConfig struct {
	ConnectionTimeout time.Duration
	SocketTimeout     time.Duration
	MaxConnections    int
	LocalAddress      net.IP
	SocketBufferSize  int
}

// NewTransport returns a pooled transport built from cfg.
func NewTransport(cfg TransportConfig) *http.Transport {
	t := cleanhttp.DefaultPooledTransport()

	dialer := &net.Dialer{
		Timeout:   cfg.ConnectionTimeout,
		KeepAlive: 30 * time.Second,
	}
	if cfg.LocalAddress != nil {
		dialer.LocalAddr = &net.TCPAddr{IP: cfg.LocalAddress}
	}
	t.DialContext = dialer.DialContext
	t.ResponseHeaderTimeout = cfg.SocketTimeout

	if cfg.MaxConnections > 0 {
		t.MaxConnsPerHost = cfg.MaxConnections
		t.MaxIdleConnsPerHost = cfg.MaxConnections
		if t.MaxIdleConns < cfg.MaxConnections {
			t.MaxIdleConns = cfg.MaxConnections
		}
	}
	if cfg.SocketBufferSize > 0 {
		t.ReadBufferSize = cfg.SocketBufferSize
		t.WriteBufferSize = cfg.SocketBufferSize
	}
	return t
}

// PoolRegistry shares transports between clients that talk to the same
// endpoint. Transports are created on first use and never evicted; the
// settings of the first client for an endpoint win.
type PoolRegistry struct {
	mu    sync.Mutex
	pools map[string]*http.Transport
}

// NewPoolRegistry returns an empty registry.
func NewPoolRegistry() *PoolRegistry {
	return &PoolRegistry{pools: make(map[string]*http.Transport)}
}

// Transport returns the transport for endpoint, creating it from cfg if
// this is the first request for that endpoint.
func (r *PoolRegistry) Transport(endpoint string, cfg TransportConfig) *http.Transport {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.pools[endpoint]; ok {
		return t
	}
	t := NewTransport(cfg)
	r.pools[endpoint] = t
	return t
}

// Len returns the number of endpoints with a pool.
func (r *PoolRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pools)
}

// CloseIdleConnections closes idle connections in every pool.
func (r *PoolRegistry) CloseIdleConnections() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.pools {
		t.CloseIdleConnections()
	}
}
