package mochow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/baidu/mochow-sdk-go/internal/api"
	"github.com/baidu/mochow-sdk-go/internal/auth"
)

// urlPrefix is the API version segment of every resource path.
const urlPrefix = "v1"

// Resource path segments.
const (
	resourceDatabase = "database"
	resourceTable    = "table"
	resourceIndex    = "index"
	resourceRow      = "row"
)

// Action markers, sent as empty-valued query parameters.
const (
	actionCreate      = "create"
	actionList        = "list"
	actionDesc        = "desc"
	actionAddField    = "addField"
	actionAlias       = "alias"
	actionUnalias     = "unalias"
	actionStats       = "stats"
	actionModify      = "modify"
	actionRebuild     = "rebuild"
	actionInsert      = "insert"
	actionUpsert      = "upsert"
	actionDelete      = "delete"
	actionQuery       = "query"
	actionSearch      = "search"
	actionBatchSearch = "batchSearch"
	actionUpdate      = "update"
	actionSelect      = "select"
)

type (
	// Credentials is an immutable account and API key pair.
	Credentials = auth.Credentials
	// RetryPolicy decides whether and when failed requests are retried.
	RetryPolicy = api.RetryPolicy
	// PoolRegistry shares connection pools between clients.
	PoolRegistry = api.PoolRegistry
	// BaseResponse carries response metadata and is embedded in every
	// typed response.
	BaseResponse = api.BaseResponse
	// ResponseMetadata holds the request id, content length and content
	// type of a response.
	ResponseMetadata = api.ResponseMetadata
)

// NewCredentials returns credentials for account and apiKey.
func NewCredentials(account, apiKey string) (*Credentials, error) {
	creds, err := auth.NewCredentials(account, apiKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}
	return creds, nil
}

// NewPoolRegistry returns an empty connection pool registry.
func NewPoolRegistry() *PoolRegistry {
	return api.NewPoolRegistry()
}

// DefaultRetryPolicy returns 3 retries with a 20 second maximum delay.
func DefaultRetryPolicy() RetryPolicy {
	return api.DefaultRetryPolicy()
}

// Client is a Mochow client. It is safe for concurrent use.
type Client struct {
	apiClient *api.Client
	endpoint  *url.URL
	logger    *slog.Logger
}

// New creates a client for endpoint authenticated as account.
func New(endpoint, account, apiKey string, opts ...Option) (*Client, error) {
	if account == "" || apiKey == "" {
		return nil, ErrMissingCredentials
	}
	creds, err := NewCredentials(account, apiKey)
	if err != nil {
		return nil, err //coverage:ignore
	}

	cfg := DefaultConfiguration()
	cfg.Endpoint = endpoint
	cfg.Credentials = creds
	for _, opt := range opts {
		opt(&cfg)
	}

	return NewClient(cfg)
}

// NewClient creates a client from config. The configuration is copied.
func NewClient(config ClientConfiguration) (*Client, error) {
	cfg := config.Clone()

	protocol := cfg.Protocol
	if protocol == "" {
		protocol = ProtocolHTTP
	}
	endpoint, err := api.ResolveEndpoint(cfg.Endpoint, string(protocol))
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := api.NewMetrics(cfg.MetricsRegisterer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	apiClient, err := api.NewClient(api.Config{
		Credentials: cfg.Credentials,
		RetryPolicy: cfg.RetryPolicy,
		Transport: api.TransportConfig{
			ConnectionTimeout: cfg.ConnectionTimeout,
			SocketTimeout:     cfg.SocketTimeout,
			MaxConnections:    cfg.MaxConnections,
			LocalAddress:      cfg.LocalAddress,
			SocketBufferSize:  cfg.SocketBufferSize,
		},
		HTTPClient:    cfg.HTTPClient,
		PoolRegistry:  cfg.PoolRegistry,
		PoolKey:       api.EndpointKey(endpoint),
		AsyncPut:      cfg.AsyncPut,
		IOThreadCount: cfg.IOThreadCount,
		Logger:        logger,
		Metrics:       metrics,
	})
	if err != nil {
		return nil, err //coverage:ignore
	}

	return &Client{
		apiClient: apiClient,
		endpoint:  endpoint,
		logger:    logger,
	}, nil
}

// Endpoint returns the resolved endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Close releases the client's resources. Calls after Close return
// ErrClientClosed.
func (c *Client) Close() error {
	return c.apiClient.Close()
}

// newRequest builds the envelope for an operation on resource.
func (c *Client) newRequest(method, resource, action string) *api.Request {
	req := api.NewRequest(method, api.AppendURI(c.endpoint, urlPrefix, resource))
	req.Resource = resource
	req.Action = action
	if action != "" {
		req.AddParameter(action, "")
	}
	return req
}

// post sends body to resource with the action marker and decodes into out.
func (c *Client) post(ctx context.Context, resource, action string, body any, out api.Response) error {
	req := c.newRequest(http.MethodPost, resource, action)
	if body != nil {
		if err := req.SetJSONBody(body); err != nil {
			return err
		}
	}
	return c.apiClient.Execute(ctx, req, out)
}

// drop sends a DELETE for resource with params in the query string.
func (c *Client) drop(ctx context.Context, resource string, params map[string]string) error {
	req := c.newRequest(http.MethodDelete, resource, "")
	req.Action = "drop"
	for k, v := range params {
		req.AddParameter(k, v)
	}
	return c.apiClient.Execute(ctx, req, nil)
}
