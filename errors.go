package mochow

import (
	"context"
	"fmt"
	"time"

	"github.com/baidu/mochow-sdk-go/internal/apierrors"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingCredentials is returned when an account or API key is empty.
	ErrMissingCredentials = apierrors.ErrMissingCredentials

	// ErrInvalidEndpoint is returned when the endpoint cannot be parsed.
	ErrInvalidEndpoint = apierrors.ErrInvalidEndpoint

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = apierrors.ErrClientClosed

	// ErrAuthentication is returned when the server rejects the credentials.
	ErrAuthentication = apierrors.ErrAuthentication

	// ErrPermissionDenied is returned when the account lacks a privilege.
	ErrPermissionDenied = apierrors.ErrPermissionDenied

	// ErrDatabaseNotFound is returned when a database does not exist.
	ErrDatabaseNotFound = apierrors.ErrDatabaseNotFound

	// ErrDatabaseAlreadyExists is returned when creating an existing database.
	ErrDatabaseAlreadyExists = apierrors.ErrDatabaseAlreadyExists

	// ErrDatabaseNotEmpty is returned when dropping a database that has tables.
	ErrDatabaseNotEmpty = apierrors.ErrDatabaseNotEmpty

	// ErrTableNotFound is returned when a table does not exist.
	ErrTableNotFound = apierrors.ErrTableNotFound

	// ErrTableAlreadyExists is returned when creating an existing table.
	ErrTableAlreadyExists = apierrors.ErrTableAlreadyExists

	// ErrTableNotReady is returned while a table is still being created.
	ErrTableNotReady = apierrors.ErrTableNotReady

	// ErrIndexNotFound is returned when an index does not exist.
	ErrIndexNotFound = apierrors.ErrIndexNotFound

	// ErrIndexAlreadyExists is returned when creating an existing index.
	ErrIndexAlreadyExists = apierrors.ErrIndexAlreadyExists

	// ErrPrimaryKeyDuplicated is returned when inserting a duplicate primary key.
	ErrPrimaryKeyDuplicated = apierrors.ErrPrimaryKeyDuplicated

	// ErrRowNotFound is returned when no row has the given primary key.
	ErrRowNotFound = apierrors.ErrRowNotFound
)

// MochowError is implemented by all SDK errors.
type MochowError interface {
	error
	MochowError() // marker method
}

type (
	// ServiceError is a structured failure returned by the server. It
	// carries the HTTP status, the server error code and the request id.
	ServiceError = apierrors.ServiceError

	// ClientError is a failure raised before or after the exchange:
	// invalid configuration, encoding, decoding, or an interrupted retry
	// delay. It is never retried.
	ClientError = apierrors.ClientError

	// NetworkError represents a network-level failure.
	NetworkError = apierrors.NetworkError

	// ErrorType classifies a ServiceError as client or service side.
	ErrorType = apierrors.ErrorType

	// ServerErrorCode is the numeric code in a failed response body.
	ServerErrorCode = apierrors.ServerErrorCode
)

// Error types.
const (
	ErrorTypeUnknown = apierrors.ErrorTypeUnknown
	ErrorTypeClient  = apierrors.ErrorTypeClient
	ErrorTypeService = apierrors.ErrorTypeService
)

// Server error codes.
const (
	CodeInternalError              = apierrors.CodeInternalError
	CodeInvalidParameter           = apierrors.CodeInvalidParameter
	CodeInvalidHTTPURL             = apierrors.CodeInvalidHTTPURL
	CodeInvalidHTTPHeader          = apierrors.CodeInvalidHTTPHeader
	CodeInvalidHTTPBody            = apierrors.CodeInvalidHTTPBody
	CodeMissSSLCertificates        = apierrors.CodeMissSSLCertificates
	CodeUserNotExist               = apierrors.CodeUserNotExist
	CodeUserAlreadyExist           = apierrors.CodeUserAlreadyExist
	CodeRoleNotExist               = apierrors.CodeRoleNotExist
	CodeRoleAlreadyExist           = apierrors.CodeRoleAlreadyExist
	CodeAuthenticationFailed       = apierrors.CodeAuthenticationFailed
	CodePermissionDenied           = apierrors.CodePermissionDenied
	CodeDBNotExist                 = apierrors.CodeDBNotExist
	CodeDBAlreadyExist             = apierrors.CodeDBAlreadyExist
	CodeDBTooManyTables            = apierrors.CodeDBTooManyTables
	CodeDBNotEmpty                 = apierrors.CodeDBNotEmpty
	CodeInvalidTableSchema         = apierrors.CodeInvalidTableSchema
	CodeInvalidPartitionParameters = apierrors.CodeInvalidPartitionParameters
	CodeTableTooManyFields         = apierrors.CodeTableTooManyFields
	CodeTableTooManyFamilies       = apierrors.CodeTableTooManyFamilies
	CodeTableTooManyPrimaryKeys    = apierrors.CodeTableTooManyPrimaryKeys
	CodeTableTooManyPartitionKeys  = apierrors.CodeTableTooManyPartitionKeys
	CodeTableTooManyVectorFields   = apierrors.CodeTableTooManyVectorFields
	CodeTableTooManyIndexes        = apierrors.CodeTableTooManyIndexes
	CodeDynamicSchemaError         = apierrors.CodeDynamicSchemaError
	CodeTableNotExist              = apierrors.CodeTableNotExist
	CodeTableAlreadyExist          = apierrors.CodeTableAlreadyExist
	CodeInvalidTableState          = apierrors.CodeInvalidTableState
	CodeTableNotReady              = apierrors.CodeTableNotReady
	CodeAliasNotExist              = apierrors.CodeAliasNotExist
	CodeAliasAlreadyExist          = apierrors.CodeAliasAlreadyExist
	CodeFieldNotExist              = apierrors.CodeFieldNotExist
	CodeFieldAlreadyExist          = apierrors.CodeFieldAlreadyExist
	CodeVectorFieldNotExist        = apierrors.CodeVectorFieldNotExist
	CodeInvalidIndexSchema         = apierrors.CodeInvalidIndexSchema
	CodeIndexNotExist              = apierrors.CodeIndexNotExist
	CodeIndexAlreadyExist          = apierrors.CodeIndexAlreadyExist
	CodeIndexDuplicated            = apierrors.CodeIndexDuplicated
	CodeInvalidIndexState          = apierrors.CodeInvalidIndexState
	CodePrimaryKeyDuplicated       = apierrors.CodePrimaryKeyDuplicated
	CodeRowKeyNotFound             = apierrors.CodeRowKeyNotFound
)

// TimeoutError is returned when a waiter gives up.
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Operation, e.Timeout)
}

// Is implements errors.Is for sentinel error matching.
func (e *TimeoutError) Is(target error) bool {
	return target == context.DeadlineExceeded
}

// MochowError implements the MochowError interface.
func (e *TimeoutError) MochowError() {}
