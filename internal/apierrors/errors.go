// Package apierrors provides shared error types for the Mochow client.
package apierrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingCredentials is returned when an account or API key is empty.
	ErrMissingCredentials = errors.New("account and API key are required")

	// ErrInvalidEndpoint is returned when the configured endpoint is not a valid URI.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client has been closed")

	// ErrAuthentication is returned when the server rejects the credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrPermissionDenied is returned when the account lacks the required privilege.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDatabaseNotFound is returned when the database does not exist.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrDatabaseAlreadyExists is returned when creating a database that exists.
	ErrDatabaseAlreadyExists = errors.New("database already exists")

	// ErrDatabaseNotEmpty is returned when dropping a database that still has tables.
	ErrDatabaseNotEmpty = errors.New("database not empty")

	// ErrTableNotFound is returned when the table does not exist.
	ErrTableNotFound = errors.New("table not found")

	// ErrTableAlreadyExists is returned when creating a table that exists.
	ErrTableAlreadyExists = errors.New("table already exists")

	// ErrTableNotReady is returned when the table is still being created.
	ErrTableNotReady = errors.New("table not ready")

	// ErrIndexNotFound is returned when the index does not exist.
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexAlreadyExists is returned when creating an index that exists.
	ErrIndexAlreadyExists = errors.New("index already exists")

	// ErrPrimaryKeyDuplicated is returned when inserting a row whose primary key exists.
	ErrPrimaryKeyDuplicated = errors.New("primary key duplicated")

	// ErrRowNotFound is returned when no row matches the given primary key.
	ErrRowNotFound = errors.New("row not found")
)

// ServerErrorCode is the numeric error code carried in a failed response body.
type ServerErrorCode int

// Server error codes.
const (
	CodeInternalError       ServerErrorCode = 1
	CodeInvalidParameter    ServerErrorCode = 2
	CodeInvalidHTTPURL      ServerErrorCode = 10
	CodeInvalidHTTPHeader   ServerErrorCode = 11
	CodeInvalidHTTPBody     ServerErrorCode = 12
	CodeMissSSLCertificates ServerErrorCode = 13

	CodeUserNotExist         ServerErrorCode = 20
	CodeUserAlreadyExist     ServerErrorCode = 21
	CodeRoleNotExist         ServerErrorCode = 22
	CodeRoleAlreadyExist     ServerErrorCode = 23
	CodeAuthenticationFailed ServerErrorCode = 24
	CodePermissionDenied     ServerErrorCode = 25

	CodeDBNotExist      ServerErrorCode = 50
	CodeDBAlreadyExist  ServerErrorCode = 51
	CodeDBTooManyTables ServerErrorCode = 52
	CodeDBNotEmpty      ServerErrorCode = 53

	CodeInvalidTableSchema         ServerErrorCode = 60
	CodeInvalidPartitionParameters ServerErrorCode = 61
	CodeTableTooManyFields         ServerErrorCode = 62
	CodeTableTooManyFamilies       ServerErrorCode = 63
	CodeTableTooManyPrimaryKeys    ServerErrorCode = 64
	CodeTableTooManyPartitionKeys  ServerErrorCode = 65
	CodeTableTooManyVectorFields   ServerErrorCode = 66
	CodeTableTooManyIndexes        ServerErrorCode = 67
	CodeDynamicSchemaError         ServerErrorCode = 68
	CodeTableNotExist              ServerErrorCode = 69
	CodeTableAlreadyExist          ServerErrorCode = 70
	CodeInvalidTableState          ServerErrorCode = 71
	CodeTableNotReady              ServerErrorCode = 72
	CodeAliasNotExist              ServerErrorCode = 73
	CodeAliasAlreadyExist          ServerErrorCode = 74

	CodeFieldNotExist       ServerErrorCode = 80
	CodeFieldAlreadyExist   ServerErrorCode = 81
	CodeVectorFieldNotExist ServerErrorCode = 82

	CodeInvalidIndexSchema ServerErrorCode = 90
	CodeIndexNotExist      ServerErrorCode = 91
	CodeIndexAlreadyExist  ServerErrorCode = 92
	CodeIndexDuplicated    ServerErrorCode = 93
	CodeInvalidIndexState  ServerErrorCode = 94

	CodePrimaryKeyDuplicated ServerErrorCode = 100
	CodeRowKeyNotFound       ServerErrorCode = 101
)

// codeSentinels maps server error codes to the sentinel they satisfy.
var codeSentinels = map[ServerErrorCode]error{
	CodeAuthenticationFailed: ErrAuthentication,
	CodePermissionDenied:     ErrPermissionDenied,
	CodeDBNotExist:           ErrDatabaseNotFound,
	CodeDBAlreadyExist:       ErrDatabaseAlreadyExists,
	CodeDBNotEmpty:           ErrDatabaseNotEmpty,
	CodeTableNotExist:        ErrTableNotFound,
	CodeTableAlreadyExist:    ErrTableAlreadyExists,
	CodeTableNotReady:        ErrTableNotReady,
	CodeIndexNotExist:        ErrIndexNotFound,
	CodeIndexAlreadyExist:    ErrIndexAlreadyExists,
	CodePrimaryKeyDuplicated: ErrPrimaryKeyDuplicated,
	CodeRowKeyNotFound:       ErrRowNotFound,
}

// ErrorType classifies which side a ServiceError is attributed to.
type ErrorType int

const (
	// ErrorTypeUnknown is the zero value, used before a status code is known.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeClient indicates a 4xx response.
	ErrorTypeClient
	// ErrorTypeService indicates a 5xx response.
	ErrorTypeService
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeClient:
		return "Client"
	case ErrorTypeService:
		return "Service"
	default:
		return "Unknown"
	}
}

// ErrorTypeForStatus returns ErrorTypeService for status codes >= 500 and
// ErrorTypeClient otherwise.
func ErrorTypeForStatus(statusCode int) ErrorType {
	if statusCode >= 500 {
		return ErrorTypeService
	}
	return ErrorTypeClient
}

// ServiceError is a structured failure returned by the Mochow server.
type ServiceError struct {
	Message    string
	Code       ServerErrorCode
	RequestID  string
	StatusCode int
	Type       ErrorType
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s (status code: %d; error code: %d; request id: %s)",
		e.Message, e.StatusCode, e.Code, e.RequestID)
}

// MochowError implements the MochowError interface.
func (e *ServiceError) MochowError() {}

// Is implements errors.Is for sentinel error matching.
func (e *ServiceError) Is(target error) bool {
	if sentinel, ok := codeSentinels[e.Code]; ok && sentinel == target {
		return true
	}
	if e.Code == 0 {
		switch e.StatusCode {
		case 401:
			return target == ErrAuthentication
		case 403:
			return target == ErrPermissionDenied
		}
	}
	return false
}

// Retryable reports whether the status code is one the server expects
// clients to retry with backoff.
func (e *ServiceError) Retryable() bool {
	switch e.StatusCode {
	case 500, 502, 503:
		return true
	}
	return false
}

// ClientError is a failure raised on the client side: invalid configuration,
// request serialization, response decoding, or an interrupted retry delay.
type ClientError struct {
	Message string
	Err     error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ClientError) Unwrap() error {
	return e.Err
}

// MochowError implements the MochowError interface.
func (e *ClientError) MochowError() {}

// NetworkError represents a network-level failure.
type NetworkError struct {
	Err     error
	URL     string
	Attempt int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MochowError implements the MochowError interface.
func (e *NetworkError) MochowError() {}
