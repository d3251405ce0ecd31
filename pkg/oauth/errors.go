package oauth

import "errors"

var (
	// ErrInvalidRequest indicates a required parameter is missing or malformed
	ErrInvalidRequest = errors.New("invalid_request")

	// ErrInvalidGrant indicates an unknown, expired or already used authorization code
	ErrInvalidGrant = errors.New("invalid_grant")

	// ErrUnsupportedGrantType indicates a grant_type this server does not issue tokens for
	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")

	// ErrTokenInvalid indicates an access token failed signature or claim checks
	ErrTokenInvalid = errors.New("invalid access token")
)

// ErrorCode returns the OAuth2 error code for err.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return ErrInvalidRequest.Error()
	case errors.Is(err, ErrUnsupportedGrantType):
		return ErrUnsupportedGrantType.Error()
	default:
		return ErrInvalidGrant.Error()
	}
}
