// Package auth holds the account credentials used to authorize Mochow
// requests and the signer that attaches them to outgoing requests.
package auth

import (
	"errors"
	"time"
)

// Errors returned by the signer and credentials constructor.
var (
	ErrNilCredentials = errors.New("credentials must not be nil")
	ErrNilRequest     = errors.New("request must not be nil")
	ErrEmptyAccount   = errors.New("account must not be empty")
	ErrEmptyAPIKey    = errors.New("API key must not be empty")
)

// DefaultExpiration is the default value of SignOptions.ExpirationInSeconds.
const DefaultExpiration = 1800 * time.Second

// Credentials is an immutable account and API key pair.
type Credentials struct {
	account string
	apiKey  string
}

// NewCredentials returns credentials for the given account and API key.
// Both values must be non-empty.
func NewCredentials(account, apiKey string) (*Credentials, error) {
	if account == "" {
		return nil, ErrEmptyAccount
	}
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}
	return &Credentials{account: account, apiKey: apiKey}, nil
}

// Account returns the account name.
func (c *Credentials) Account() string {
	return c.account
}

// APIKey returns the API key.
func (c *Credentials) APIKey() string {
	return c.apiKey
}

// SignOptions carries per-request signing settings. The signer does not
// consult them today; they travel with the request for compatibility.
type SignOptions struct {
	HeadersToSign       []string
	ExpirationInSeconds int
}

// DefaultSignOptions returns sign options with the default expiration.
func DefaultSignOptions() *SignOptions {
	return &SignOptions{ExpirationInSeconds: int(DefaultExpiration / time.Second)}
}
