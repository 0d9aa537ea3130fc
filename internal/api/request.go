package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/baidu/mochow-sdk-go/internal/auth"
)

// Header names and content types used on the wire.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
	HeaderDate          = "Date"
	HeaderRequestID     = "Request-Id"

	ContentTypeJSON        = "application/json"
	ContentTypeJSONCharset = "application/json; charset=utf-8"
)

// Date layouts. ISO8601Layout is stamped when a request is built and
// RFC822Layout is the fallback applied at execute time.
const (
	ISO8601Layout = "2006-01-02T15:04:05Z"
	RFC822Layout  = "Mon, 02 Jan 2006 15:04:05 GMT"
)

// DefaultMaxRedirects is the redirect limit applied when redirects are
// explicitly enabled on a request without a limit.
const DefaultMaxRedirects = 1

var errNotRestartable = errors.New("request body is not restartable")

// Body is a request payload that may support rewinding to its first byte.
type Body interface {
	io.Reader
	// Len returns the payload length, or -1 when unknown.
	Len() int64
	// Restartable reports whether Rewind can succeed.
	Restartable() bool
	// Rewind repositions the body at byte 0.
	Rewind() error
}

type bytesBody struct {
	*bytes.Reader
	data []byte
	size int64
}

// NewBytesBody returns a restartable body over data.
func NewBytesBody(data []byte) Body {
	return &bytesBody{Reader: bytes.NewReader(data), data: data, size: int64(len(data))}
}

func (b *bytesBody) Len() int64        { return b.size }
func (b *bytesBody) Restartable() bool { return true }

func (b *bytesBody) Rewind() error {
	_, err := b.Seek(0, io.SeekStart)
	return err
}

// replay returns an independent reader over the payload, used when the
// transport has to resend the body after a redirect.
func (b *bytesBody) replay() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

type streamBody struct {
	io.Reader
	size int64
}

// NewStreamBody wraps r as a body that can be sent once. Requests carrying
// it are never retried.
func NewStreamBody(r io.Reader, size int64) Body {
	return &streamBody{Reader: r, size: size}
}

func (b *streamBody) Len() int64        { return b.size }
func (b *streamBody) Restartable() bool { return false }
func (b *streamBody) Rewind() error     { return errNotRestartable }

// Request is the envelope for one logical call. It is built fresh per call
// and reused across retry attempts.
type Request struct {
	Method      string
	URI         *url.URL
	Header      http.Header
	Params      map[string]string
	Body        Body
	SignOptions *auth.SignOptions

	// RedirectsEnabled overrides the transport's redirect behaviour when set.
	RedirectsEnabled *bool
	MaxRedirects     int

	// Resource and Action label metrics and logs.
	Resource string
	Action   string
}

// NewRequest returns a request for method and uri stamped with the JSON
// content type and the current date.
func NewRequest(method string, uri *url.URL) *Request {
	r := &Request{
		Method:       method,
		URI:          uri,
		Header:       make(http.Header),
		Params:       make(map[string]string),
		SignOptions:  auth.DefaultSignOptions(),
		MaxRedirects: DefaultMaxRedirects,
	}
	r.SetHeader(HeaderContentType, ContentTypeJSON)
	r.SetHeader(HeaderDate, FormatISO8601(time.Now()))
	return r
}

// SetHeader sets a header, replacing any existing value for the key.
func (r *Request) SetHeader(key, value string) {
	r.Header.Set(key, value)
}

// AddParameter sets a query parameter. An empty value renders as "key=".
func (r *Request) AddParameter(key, value string) {
	r.Params[key] = value
}

// SetBody attaches body to the request.
func (r *Request) SetBody(body Body) {
	r.Body = body
}

// SetJSONBody encodes v as the request payload and sets the matching
// Content-Length and Content-Type headers.
func (r *Request) SetJSONBody(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &ClientError{Message: "failed to convert request to json", Err: err}
	}
	r.SetHeader(HeaderContentLength, strconv.Itoa(len(data)))
	r.SetHeader(HeaderContentType, ContentTypeJSONCharset)
	r.Body = NewBytesBody(data)
	return nil
}

// Restartable reports whether the request may be replayed.
func (r *Request) Restartable() bool {
	return r.Body == nil || r.Body.Restartable()
}

// URL returns the full request URL including the canonical query string.
func (r *Request) URL() string {
	u := *r.URI
	u.RawQuery = CanonicalQueryString(r.Params)
	u.ForceQuery = false
	return u.String()
}

// CanonicalQueryString renders params with RFC 3986 unreserved characters
// kept and everything else percent-encoded, sorted, joined with '&'.
func CanonicalQueryString(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for k, v := range params {
		parts = append(parts, Normalize(k)+"="+Normalize(v))
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}

// Normalize percent-encodes every byte of value outside the RFC 3986
// unreserved set using upper-case hex.
func Normalize(value string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

// NormalizePath is Normalize with '/' left intact.
func NormalizePath(path string) string {
	return strings.ReplaceAll(Normalize(path), "%2F", "/")
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

// AppendURI joins path components onto base, encoding each component.
func AppendURI(base *url.URL, components ...string) *url.URL {
	u := *base
	path := strings.TrimRight(u.Path, "/")
	rawPath := strings.TrimRight(u.EscapedPath(), "/")
	for _, c := range components {
		c = strings.Trim(c, "/")
		if c == "" {
			continue
		}
		path += "/" + c
		rawPath += "/" + NormalizePath(c)
	}
	u.Path = path
	u.RawPath = rawPath
	return &u
}

// ResolveEndpoint parses endpoint, prefixing "<protocol>://" when it has no
// scheme.
func ResolveEndpoint(endpoint, protocol string) (*url.URL, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is empty", ErrInvalidEndpoint)
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = strings.ToLower(protocol) + "://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidEndpoint, endpoint)
	}
	return u, nil
}

// FormatISO8601 formats t in UTC without fractional seconds.
func FormatISO8601(t time.Time) string {
	return t.UTC().Format(ISO8601Layout)
}

// FormatRFC822 formats t in UTC as an RFC 822 date.
func FormatRFC822(t time.Time) string {
	return t.UTC().Format(RFC822Layout)
}

// ParseISO8601 parses a date produced by FormatISO8601.
func ParseISO8601(s string) (time.Time, error) {
	return time.Parse(ISO8601Layout, s)
}
