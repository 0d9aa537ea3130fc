package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/baidu/mochow-sdk-go/internal/auth"
)

// redactedValue replaces sensitive header values in logs.
const redactedValue = "[REDACTED]"

// Config holds transport configuration.
type Config struct {
	// Credentials sign every attempt when non-nil.
	Credentials *auth.Credentials
	// Signer defaults to auth.NewSigner().
	Signer auth.Signer

	RetryPolicy RetryPolicy
	Transport   TransportConfig

	// HTTPClient replaces the pooled client. Redirect settings on requests
	// are not applied to a caller-supplied client.
	HTTPClient *http.Client
	// PoolRegistry shares transports across clients. Requires PoolKey.
	PoolRegistry *PoolRegistry
	PoolKey      string

	// AsyncPut runs PUT requests on IOThreadCount worker goroutines.
	AsyncPut      bool
	IOThreadCount int

	// Handlers default to DefaultHandlers().
	Handlers []ResponseHandler

	Logger  *slog.Logger
	Metrics *Metrics

	// Sleep waits between attempts. Defaults to RetryPolicy.Wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Client executes requests with signing, retry and response handling.
// It is safe for concurrent use.
type Client struct {
	creds      *auth.Credentials
	signer     auth.Signer
	retry      RetryPolicy
	handlers   []ResponseHandler
	httpClient *http.Client
	owned      *http.Transport
	dispatcher *putDispatcher
	logger     *slog.Logger
	metrics    *Metrics
	sleep      func(ctx context.Context, d time.Duration) error

	closed    atomic.Bool
	closeOnce sync.Once
}

// NewClient creates a transport client from cfg.
func NewClient(cfg Config) (*Client, error) {
	c := &Client{
		creds:    cfg.Credentials,
		signer:   cfg.Signer,
		retry:    cfg.RetryPolicy,
		handlers: cfg.Handlers,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		sleep:    cfg.Sleep,
	}
	if c.signer == nil {
		c.signer = auth.NewSigner()
	}
	if len(c.handlers) == 0 {
		c.handlers = DefaultHandlers()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.sleep == nil {
		c.sleep = c.retry.Wait
	}

	switch {
	case cfg.HTTPClient != nil:
		c.httpClient = cfg.HTTPClient
	case cfg.PoolRegistry != nil:
		c.httpClient = &http.Client{
			Transport:     cfg.PoolRegistry.Transport(cfg.PoolKey, cfg.Transport),
			CheckRedirect: checkRedirect,
		}
	default:
		c.owned = NewTransport(cfg.Transport)
		c.httpClient = &http.Client{
			Transport:     c.owned,
			CheckRedirect: checkRedirect,
		}
	}

	if cfg.AsyncPut {
		d, err := newPutDispatcher(cfg.IOThreadCount)
		if err != nil {
			c.logger.LogAttrs(context.Background(), slog.LevelWarn, "async put disabled, using synchronous requests",
				slog.String("error", err.Error()))
		} else {
			c.dispatcher = d
		}
	}

	return c, nil
}

// AsyncPutEnabled reports whether PUT requests run on the dispatcher.
func (c *Client) AsyncPutEnabled() bool {
	return c.dispatcher != nil
}

// Close stops the PUT dispatcher and closes idle connections of an owned
// transport. Shared transports are left open.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.dispatcher != nil {
			c.dispatcher.close()
		}
		if c.owned != nil {
			c.owned.CloseIdleConnections()
		}
	})
	return nil
}

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeRetryable
	outcomeFatal
)

// outcome is the result of one attempt.
type outcome struct {
	kind outcomeKind
	err  error
}

// Execute sends req until it succeeds, fails fatally, or the retry policy
// gives up. out receives the response metadata and decoded body.
func (c *Client) Execute(ctx context.Context, req *Request, out Response) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if out == nil {
		out = &BaseResponse{}
	}
	fillDefaultHeaders(req)

	callID := uuid.NewString()
	for attempt := 1; ; attempt++ {
		res := c.attempt(ctx, req, out, callID, attempt)
		switch res.kind {
		case outcomeSuccess:
			return nil
		case outcomeFatal:
			return res.err
		}

		if !req.Restartable() {
			return res.err
		}
		delay, ok := c.retry.Delay(ctx, res.err, attempt-1)
		if !ok {
			return res.err
		}

		c.metrics.retry(req.Resource, req.Action)
		c.logger.LogAttrs(ctx, slog.LevelDebug, "retrying request",
			slog.String("call_id", callID),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", res.err.Error()),
		)

		if err := c.sleep(ctx, delay); err != nil {
			return &ClientError{Message: "delay interrupted", Err: err}
		}
		if req.Body != nil {
			if err := req.Body.Rewind(); err != nil {
				return &ClientError{Message: "failed to reset request body", Err: err}
			}
		}
	}
}

// attempt signs, sends and handles req once.
func (c *Client) attempt(ctx context.Context, req *Request, out Response, callID string, attempt int) outcome {
	if c.creds != nil {
		if err := c.signer.Sign(req, c.creds, req.SignOptions); err != nil {
			return outcome{kind: outcomeFatal, err: &ClientError{Message: "failed to sign request", Err: err}}
		}
	}

	httpReq, err := newHTTPRequest(ctx, req)
	if err != nil {
		return outcome{kind: outcomeFatal, err: &ClientError{Message: "failed to create request", Err: err}}
	}

	if c.logger.Enabled(ctx, slog.LevelDebug) {
		c.logger.LogAttrs(ctx, slog.LevelDebug, "sending request",
			slog.String("call_id", callID),
			slog.String("method", req.Method),
			slog.String("url", httpReq.URL.String()),
			slog.Int("attempt", attempt),
			slog.Any("headers", redactHeaders(httpReq.Header)),
		)
	}

	start := time.Now()
	var resp *HTTPResponse
	send := func() {
		resp, err = c.roundTrip(httpReq, attempt)
	}
	if req.Method == http.MethodPut && c.dispatcher != nil {
		if derr := c.dispatcher.run(ctx, send); derr != nil {
			return outcome{kind: outcomeFatal, err: derr}
		}
	} else {
		send()
	}
	elapsed := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.metrics.observe(req.Resource, req.Action, status, elapsed)

	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelDebug, "request failed",
			slog.String("call_id", callID),
			slog.Int("attempt", attempt),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()),
		)
		return c.classify(ctx, err)
	}

	c.logger.LogAttrs(ctx, slog.LevelDebug, "received response",
		slog.String("call_id", callID),
		slog.Int("attempt", attempt),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", resp.Header.Get(HeaderRequestID)),
		slog.Duration("duration", elapsed),
	)

	for _, h := range c.handlers {
		done, herr := h.Handle(resp, out)
		if herr != nil {
			return c.classify(ctx, herr)
		}
		if done {
			break
		}
	}
	return outcome{kind: outcomeSuccess}
}

func (c *Client) classify(ctx context.Context, err error) outcome {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return outcome{kind: outcomeFatal, err: err}
	}
	if c.retry.ShouldRetry(ctx, err) {
		return outcome{kind: outcomeRetryable, err: err}
	}
	return outcome{kind: outcomeFatal, err: err}
}

// roundTrip performs one exchange and reads the full body.
func (c *Client) roundTrip(httpReq *http.Request, attempt int) (*HTTPResponse, error) {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err, URL: httpReq.URL.String(), Attempt: attempt}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err, URL: httpReq.URL.String(), Attempt: attempt}
	}
	return newHTTPResponse(resp, body), nil
}

// fillDefaultHeaders sets Content-Type and Date when a caller left them out.
func fillDefaultHeaders(req *Request) {
	if req.Header.Get(HeaderContentType) == "" {
		req.SetHeader(HeaderContentType, ContentTypeJSONCharset)
	}
	if req.Header.Get(HeaderDate) == "" {
		req.SetHeader(HeaderDate, FormatRFC822(time.Now()))
	}
}

func newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	if req.URI == nil {
		return nil, errors.New("request has no URI")
	}
	if req.RedirectsEnabled != nil {
		ctx = context.WithValue(ctx, redirectKey{}, redirectPolicy{
			enabled: *req.RedirectsEnabled,
			max:     req.MaxRedirects,
		})
	}

	var body io.Reader
	if req.Body != nil && req.Body.Len() != 0 {
		body = io.NopCloser(io.Reader(req.Body))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL(), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header = req.Header.Clone()
	if body != nil {
		if n := req.Body.Len(); n > 0 {
			httpReq.ContentLength = n
		}
		if bb, ok := req.Body.(*bytesBody); ok {
			httpReq.GetBody = bb.replay
		}
	}
	return httpReq, nil
}

type redirectKey struct{}

type redirectPolicy struct {
	enabled bool
	max     int
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	p, ok := req.Context().Value(redirectKey{}).(redirectPolicy)
	if !ok {
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}
	if !p.enabled {
		return http.ErrUseLastResponse
	}
	if len(via) > p.max {
		return fmt.Errorf("stopped after %d redirects", p.max)
	}
	return nil
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if strings.EqualFold(k, HeaderAuthorization) {
			out[k] = redactedValue
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

// EndpointKey returns the pool registry key for an endpoint.
func EndpointKey(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
