// Package api provides the HTTP transport for communicating with a Mochow
// server. It builds request envelopes, signs them, executes them over a
// pooled connection with retry, and runs the response handler chain that
// fills typed responses.
//
// # Requests
//
// A [Request] carries the method, URI, headers, query parameters and a
// [Body]. Operations are selected by an empty-valued query parameter such as
// "?create=" on the resource path "/v1/<resource>". Query strings are
// rendered canonically by [CanonicalQueryString].
//
// # Retry Behavior
//
// [Client.Execute] retries an attempt when [RetryPolicy] allows it:
//
//   - Network failures, except those that can never succeed.
//   - 500 Internal Server Error
//   - 502 Bad Gateway
//   - 503 Service Unavailable
//
// The delay before retry n (starting at 0) is min(MaxDelay, 2^(n+1) * 300ms).
// Requests whose body cannot be rewound are never retried.
//
// # Response Handling
//
// Each response passes through [MetadataHandler], [ErrorHandler] and
// [JSONHandler] in order. Non-2xx responses become a [ServiceError] carrying
// the server error code and request id.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use. A [Request] belongs to a
// single call.
package api
