package v1

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-api/internal/models"
)

const requesterCtxKey = "requester"

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Debug().Msg("authorization header required")
		abort(c, newUnauthorizedError(errCredentialsNotFound.Error()))
		return
	}

	const bearerPrefix = "Bearer"
	scheme, accessToken, found := strings.Cut(header, " ")
	accessToken = strings.TrimSpace(accessToken)
	if !found || !strings.EqualFold(scheme, bearerPrefix) || accessToken == "" {
		h.logger.Debug().Msg("invalid authorization header")
		abort(c, newUnauthorizedError(errInvalidAuthorization.Error()))
		return
	}

	requester, err := h.auth.Authorize(c.Request.Context(), accessToken)
	if err != nil {
		h.respondError(c, err, "failed to authorize")
		return
	}

	c.Set(requesterCtxKey, *requester)
	c.Next()
}

// requesterFromContext returns the requester stored by the auth middleware.
func requesterFromContext(c *gin.Context) (models.Requester, bool) {
	value, exists := c.Get(requesterCtxKey)
	if !exists {
		return models.Requester{}, false
	}
	requester, ok := value.(models.Requester)
	return requester, ok
}

// RequestLogger logs every request once it has been served.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("size", c.Writer.Size()).
			Msg("served http request")
	}
}

// Recovery turns a panic into the same JSON 500 body as any other
// internal error and logs the recovered value.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		abort(c, newStatusTextError(http.StatusInternalServerError))
	})
}
