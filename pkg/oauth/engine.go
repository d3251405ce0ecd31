// Package oauth implements the account-linking grant flow used by the
// assistant platform: a consent page, authorization code issuance and the
// token endpoint for the authorization_code and refresh_token grants.
//
// Issued tokens are not recorded. Any well-formed token request for a
// supported grant is answered, which is enough for a single hardcoded
// account but is not real authentication.
package oauth

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Grant types accepted by the token endpoint.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
)

// Defaults applied by NewEngine for zero Config fields.
const (
	DefaultCodeTTL   = 10 * time.Minute
	DefaultAccessTTL = 24 * time.Hour
	DefaultLoginPath = "/login"
)

// Config controls code and token issuance.
type Config struct {
	// Subject is placed in the sub claim of every access token.
	Subject string
	// Secret signs access tokens. A random secret is generated when empty,
	// so tokens do not survive a restart.
	Secret []byte
	// CodeTTL bounds how long an authorization code can be exchanged.
	CodeTTL time.Duration
	// AccessTTL is the access token lifetime reported as expires_in.
	AccessTTL time.Duration
	// StrictCodes rejects authorization_code requests that carry no code.
	StrictCodes bool
	// LoginPath is where Authorize sends the user agent for consent.
	LoginPath string
}

// Grant is an issued authorization code.
type Grant struct {
	Code        string
	State       string
	RedirectURI string
	ExpiresAt   time.Time
}

// ResponseURL is the callback the user agent is sent to after consent:
// redirect_uri with code and state appended as query parameters. Both are
// query-escaped, so a client parsing the callback reads state byte for byte.
// An existing query on redirect_uri is kept in its original order.
func (g *Grant) ResponseURL() string {
	sep := "?"
	if strings.Contains(g.RedirectURI, "?") {
		sep = "&"
	}
	return g.RedirectURI + sep + "code=" + url.QueryEscape(g.Code) + "&state=" + url.QueryEscape(g.State)
}

// TokenRequest holds the token endpoint parameters.
type TokenRequest struct {
	GrantType    string
	Code         string
	RefreshToken string
}

// Engine issues authorization codes and exchanges them for tokens.
type Engine struct {
	cfg Config

	mu    sync.Mutex
	codes map[string]Grant

	now func() time.Time
}

// NewEngine creates an engine, filling in defaults for zero config fields.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = DefaultCodeTTL
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
	if len(cfg.Secret) == 0 {
		secret, err := randomHex(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing secret: %w", err)
		}
		cfg.Secret = []byte(secret)
		log.Warn().Msg("No token secret configured, using an ephemeral one")
	}

	return &Engine{
		cfg:   cfg,
		codes: make(map[string]Grant),
		now:   time.Now,
	}, nil
}

// Authorize issues a single-use code bound to redirectURI and state.
func (e *Engine) Authorize(redirectURI, state string) (*Grant, error) {
	if redirectURI == "" {
		return nil, fmt.Errorf("%w: redirect_uri is required", ErrInvalidRequest)
	}
	if _, err := url.Parse(redirectURI); err != nil {
		return nil, fmt.Errorf("%w: redirect_uri: %w", ErrInvalidRequest, err)
	}

	code, err := randomHex(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	now := e.now()
	g := Grant{
		Code:        code,
		State:       state,
		RedirectURI: redirectURI,
		ExpiresAt:   now.Add(e.cfg.CodeTTL),
	}

	e.mu.Lock()
	for c, old := range e.codes {
		if !now.Before(old.ExpiresAt) {
			delete(e.codes, c)
		}
	}
	e.codes[code] = g
	e.mu.Unlock()

	log.Debug().Str("redirect_uri", redirectURI).Time("expires_at", g.ExpiresAt).Msg("Issued authorization code")
	return &g, nil
}

// LoginRedirect returns the login page URL carrying responseURL forward.
// The responseurl parameter holds the percent-encoded callback, so after the
// query decoding of GET /login the consent form carries EncodeResponseURL's
// output and ResolveResponseURL restores responseURL exactly.
func (e *Engine) LoginRedirect(responseURL string) string {
	q := url.Values{"responseurl": {EncodeResponseURL(responseURL)}}
	return e.cfg.LoginPath + "?" + q.Encode()
}

// EncodeResponseURL percent-encodes a callback for the responseurl field.
func EncodeResponseURL(responseURL string) string {
	return url.QueryEscape(responseURL)
}

// ResolveResponseURL percent-decodes the responseurl submitted by the
// consent form once and checks that the result is a usable redirect target.
func ResolveResponseURL(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: responseurl is required", ErrInvalidRequest)
	}
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: responseurl: %w", ErrInvalidRequest, err)
	}
	if _, err := url.Parse(decoded); err != nil {
		return "", fmt.Errorf("%w: responseurl: %w", ErrInvalidRequest, err)
	}
	return decoded, nil
}

// Exchange answers a token request.
func (e *Engine) Exchange(req TokenRequest) (*Token, error) {
	switch req.GrantType {
	case GrantAuthorizationCode:
		if err := e.redeem(req.Code); err != nil {
			return nil, err
		}
		return e.issue(req.GrantType, true)
	case GrantRefreshToken:
		return e.issue(req.GrantType, false)
	case "":
		return nil, fmt.Errorf("%w: grant_type is required", ErrInvalidRequest)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGrantType, req.GrantType)
	}
}

// redeem consumes code. An empty code passes unless StrictCodes is set.
func (e *Engine) redeem(code string) error {
	if code == "" {
		if e.cfg.StrictCodes {
			return fmt.Errorf("%w: code is required", ErrInvalidGrant)
		}
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.codes[code]
	if !ok {
		return fmt.Errorf("%w: unknown or used code", ErrInvalidGrant)
	}
	delete(e.codes, code)

	if !e.now().Before(g.ExpiresAt) {
		return fmt.Errorf("%w: code expired", ErrInvalidGrant)
	}
	return nil
}

func (e *Engine) issue(grantType string, withRefresh bool) (*Token, error) {
	access, err := signAccessToken(e.cfg.Secret, e.cfg.Subject, grantType, e.now(), e.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}

	tok := &Token{
		TokenType:   TokenTypeBearer,
		AccessToken: access,
		ExpiresIn:   int(e.cfg.AccessTTL / time.Second),
	}
	if withRefresh {
		if tok.RefreshToken, err = randomHex(32); err != nil {
			return nil, fmt.Errorf("generating refresh token: %w", err)
		}
	}
	return tok, nil
}

// Secret returns the access token signing key.
func (e *Engine) Secret() []byte {
	return e.cfg.Secret
}
