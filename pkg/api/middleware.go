package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/homelink/pkg/oauth"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	tokenSubjectKey = "token_subject"
)

// SetupMiddleware installs the global middleware stack.
func SetupMiddleware(r *gin.Engine) {
	r.Use(gin.Recovery(), RequestID(), RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
}

// RequestID tags each request with the caller's X-Request-ID or a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request once the handler chain returns.
// Client errors log at warn and server errors at error.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}
		status := c.Writer.Status()

		event := log.WithLevel(levelForStatus(status)).
			Str("request_id", c.GetString(requestIDKey)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP())
		if subject := c.GetString(tokenSubjectKey); subject != "" {
			event = event.Str("subject", subject)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("request")
	}
}

func levelForStatus(status int) zerolog.Level {
	switch {
	case status >= 500:
		return zerolog.ErrorLevel
	case status >= 400:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// BearerSubject records the subject of a valid bearer access token under
// "token_subject". Requests without a token, or with one that fails to
// verify, are logged and passed through unchanged.
func BearerSubject(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			if header != "" {
				log.Debug().Str("request_id", c.GetString(requestIDKey)).Msg("Non-bearer authorization header")
			}
			c.Next()
			return
		}

		claims, err := oauth.ParseAccessToken(strings.TrimSpace(token), secret)
		if err != nil {
			log.Warn().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("Unverified bearer token")
			c.Next()
			return
		}

		c.Set(tokenSubjectKey, claims.Subject)
		log.Debug().
			Str("request_id", c.GetString(requestIDKey)).
			Str("subject", claims.Subject).
			Str("grant_type", claims.GrantType).
			Msg("Bearer token verified")
		c.Next()
	}
}
