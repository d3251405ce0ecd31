package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/homelink/pkg/api/types"
	"github.com/urmzd/homelink/pkg/oauth"
)

// AuthHandler handles the account linking endpoints
type AuthHandler struct {
	engine *oauth.Engine
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(engine *oauth.Engine) *AuthHandler {
	return &AuthHandler{engine: engine}
}

// LoginPage handles GET /login
// @Summary      Consent page
// @Description  Renders the account linking form carrying responseurl forward
// @Tags         auth
// @Produce      html
// @Param        responseurl  query     string  false  "URL to continue to after consent"
// @Success      200          {string}  string  "HTML form"
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, oauth.LoginTemplateName, h.engine.NewLoginPage(c.Query("responseurl")))
}

// Login handles POST /login
// @Summary      Submit consent
// @Description  Redirects to the percent-decoded responseurl
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        responseurl  formData  string  true  "URL to continue to"
// @Success      302
// @Failure      400  {object}  types.ErrorResponse  "Missing or malformed responseurl"
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	target, err := oauth.ResolveResponseURL(c.PostForm("responseurl"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   oauth.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	log.Info().Str("target", target).Msg("Login redirect")
	c.Redirect(http.StatusFound, target)
}

// Authorize handles /fakeauth
// @Summary      Authorization endpoint
// @Description  Issues a single-use code and redirects to the login page with responseurl set to the percent-encoded redirect_uri?code=CODE&state=STATE, code and state query-escaped
// @Tags         auth
// @Param        redirect_uri  query  string  true   "Client callback"
// @Param        state         query  string  false  "Opaque client state, echoed unchanged"
// @Success      302
// @Failure      400  {object}  types.OAuthErrorResponse  "Missing redirect_uri"
// @Router       /fakeauth [get]
func (h *AuthHandler) Authorize(c *gin.Context) {
	grant, err := h.engine.Authorize(c.Query("redirect_uri"), c.Query("state"))
	if err != nil {
		log.Warn().Err(err).Msg("Authorization rejected")
		c.JSON(http.StatusBadRequest, types.OAuthErrorResponse{
			Error:            oauth.ErrorCode(err),
			ErrorDescription: err.Error(),
		})
		return
	}

	c.Redirect(http.StatusFound, h.engine.LoginRedirect(grant.ResponseURL()))
}

// Token handles /faketoken
// @Summary      Token endpoint
// @Description  Exchanges an authorization code or refresh token for an access token. grant_type is read from the query, then the form body.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        grant_type     query     string  false  "authorization_code or refresh_token"
// @Param        code           formData  string  false  "Authorization code"
// @Param        refresh_token  formData  string  false  "Refresh token"
// @Success      200  {object}  oauth.Token
// @Failure      400  {object}  types.OAuthErrorResponse  "Invalid or unsupported grant"
// @Router       /faketoken [post]
func (h *AuthHandler) Token(c *gin.Context) {
	req := oauth.TokenRequest{
		GrantType:    param(c, "grant_type"),
		Code:         param(c, "code"),
		RefreshToken: param(c, "refresh_token"),
	}

	tok, err := h.engine.Exchange(req)
	if err != nil {
		log.Warn().Err(err).Str("grant_type", req.GrantType).Msg("Token request rejected")
		c.JSON(http.StatusBadRequest, types.OAuthErrorResponse{
			Error:            oauth.ErrorCode(err),
			ErrorDescription: err.Error(),
		})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, tok)
}

// param reads key from the query string, falling back to the form body.
func param(c *gin.Context, key string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return c.PostForm(key)
}
