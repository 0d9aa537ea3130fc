package auth

// AuthorizationHeader is the header the signer writes.
const AuthorizationHeader = "Authorization"

// Signable is a request that accepts a header value.
type Signable interface {
	SetHeader(key, value string)
}

// Signer attaches credentials to outgoing requests.
type Signer interface {
	Sign(req Signable, creds *Credentials, opts *SignOptions) error
}

// BearerSigner writes a static bearer token built from the account and API
// key. No escaping is applied to either value.
type BearerSigner struct{}

// NewSigner returns the default signer.
func NewSigner() *BearerSigner {
	return &BearerSigner{}
}

// Sign sets the Authorization header on req, replacing any existing value.
func (s *BearerSigner) Sign(req Signable, creds *Credentials, opts *SignOptions) error {
	if req == nil {
		return ErrNilRequest
	}
	if creds == nil {
		return ErrNilCredentials
	}
	req.SetHeader(AuthorizationHeader, AuthorizationValue(creds))
	return nil
}

// AuthorizationValue formats the Authorization header value for creds.
func AuthorizationValue(creds *Credentials) string {
	return "Bearer account=" + creds.account + "&api_key=" + creds.apiKey
}
