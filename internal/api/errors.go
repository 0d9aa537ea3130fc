package api

import "github.com/baidu/mochow-sdk-go/internal/apierrors"

// Re-export shared error values so transport code can refer to them
// without the package prefix.
var (
	ErrMissingCredentials = apierrors.ErrMissingCredentials
	ErrInvalidEndpoint    = apierrors.ErrInvalidEndpoint
	ErrClientClosed       = apierrors.ErrClientClosed
)

type (
	// ServiceError is a structured failure returned by the server.
	ServiceError = apierrors.ServiceError
	// ClientError is a client-side failure.
	ClientError = apierrors.ClientError
	// NetworkError is a transport-level failure.
	NetworkError = apierrors.NetworkError
	// ServerErrorCode is the numeric code carried in error bodies.
	ServerErrorCode = apierrors.ServerErrorCode
	// ErrorType classifies a ServiceError.
	ErrorType = apierrors.ErrorType
)
