package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/baidu/mochow-sdk-go/internal/apierrors"
)

// HTTPResponse is one attempt's response with the body fully read.
type HTTPResponse struct {
	StatusCode int
	StatusText string
	Header     http.Header
	Body       []byte
}

// newHTTPResponse captures resp with an already-read body.
func newHTTPResponse(resp *http.Response, body []byte) *HTTPResponse {
	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header,
		Body:       body,
	}
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// ResponseMetadata is copied from response headers onto every typed response.
type ResponseMetadata struct {
	RequestID     string
	ContentLength int64
	ContentType   string
}

// Response is implemented by every typed response.
type Response interface {
	Metadata() *ResponseMetadata
}

// BaseResponse carries response metadata. Typed responses embed it.
type BaseResponse struct {
	metadata ResponseMetadata
}

// Metadata returns the response metadata.
func (r *BaseResponse) Metadata() *ResponseMetadata {
	return &r.metadata
}

// ResponseHandler processes one response. Returning done stops the chain;
// a non-nil error aborts the attempt.
type ResponseHandler interface {
	Handle(resp *HTTPResponse, out Response) (done bool, err error)
}

// HandlerFunc adapts a function to ResponseHandler.
type HandlerFunc func(resp *HTTPResponse, out Response) (bool, error)

// Handle calls f.
func (f HandlerFunc) Handle(resp *HTTPResponse, out Response) (bool, error) {
	return f(resp, out)
}

// DefaultHandlers returns the metadata, error and JSON handlers in order.
func DefaultHandlers() []ResponseHandler {
	return []ResponseHandler{MetadataHandler{}, ErrorHandler{}, JSONHandler{}}
}

// MetadataHandler copies the request id, content length and content type
// headers. It never stops the chain.
type MetadataHandler struct{}

// Handle implements ResponseHandler.
func (MetadataHandler) Handle(resp *HTTPResponse, out Response) (bool, error) {
	md := out.Metadata()
	md.RequestID = resp.Header.Get(HeaderRequestID)
	md.ContentType = resp.Header.Get(HeaderContentType)
	md.ContentLength = -1
	if v := resp.Header.Get(HeaderContentLength); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			md.ContentLength = n
		}
	}
	return false, nil
}

// errorBody is the JSON payload of a failed response.
type errorBody struct {
	Code      int     `json:"code"`
	Msg       *string `json:"msg"`
	RequestID string  `json:"requestId"`
}

// ErrorHandler turns non-2xx responses into a ServiceError.
type ErrorHandler struct{}

// Handle implements ResponseHandler.
func (ErrorHandler) Handle(resp *HTTPResponse, out Response) (bool, error) {
	if resp.StatusCode/100 == 2 {
		return false, nil
	}

	svcErr := &ServiceError{
		StatusCode: resp.StatusCode,
		Type:       apierrors.ErrorTypeForStatus(resp.StatusCode),
	}

	var body errorBody
	if len(resp.Body) > 0 && json.Unmarshal(resp.Body, &body) == nil && body.Msg != nil {
		svcErr.Message = *body.Msg
		svcErr.Code = apierrors.ServerErrorCode(body.Code)
		svcErr.RequestID = body.RequestID
	} else {
		svcErr.Message = resp.StatusText
		svcErr.RequestID = out.Metadata().RequestID
	}

	return true, svcErr
}

// JSONHandler decodes the body into the typed response. It always stops
// the chain. Numbers landing in untyped values are kept as json.Number so
// 64-bit keys survive a round trip.
type JSONHandler struct{}

// Handle implements ResponseHandler.
func (JSONHandler) Handle(resp *HTTPResponse, out Response) (bool, error) {
	length := out.Metadata().ContentLength
	if length < 0 {
		length = int64(len(resp.Body))
	}
	if length > 0 && len(resp.Body) > 0 {
		dec := json.NewDecoder(bytes.NewReader(resp.Body))
		dec.UseNumber()
		if err := dec.Decode(out); err != nil {
			return true, &ClientError{Message: "failed to parse response", Err: err}
		}
	}
	return true, nil
}
