package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader  = "X-Request-ID"
	contextUserIDKey = "user_id"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Header(requestIDHeader, reqID)
		c.Next()
	}
}

// Logger writes one line per request and feeds the request metrics.
func Logger(logger logging.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		reqID, _ := c.Get(requestIDHeader)

		logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", latency,
			"client_ip", c.ClientIP(),
			"request_id", reqID,
		)

		if m != nil {
			code := strconv.Itoa(status)
			m.RequestCount.WithLabelValues(c.Request.Method, path, code).Inc()
			m.RequestDuration.WithLabelValues(c.Request.Method, path, code).Observe(latency.Seconds())
		}
	}
}

func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				reqID, _ := c.Get(requestIDHeader)
				logger.Error(c.Request.Context(), "panic", "error", err, "path", c.Request.URL.Path, "request_id", reqID)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					errorResponse{Code: common.CodeInternal, Message: common.ErrorInternal.Error()})
			}
		}()
		c.Next()
	}
}

type authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

// Bearer requires a valid access token in the Authorization header and puts
// its user id into the gin context.
func Bearer(a authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, common.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorResponse{Code: common.CodeUnauthorized, Message: "missing bearer token"})
			return
		}

		userID, err := a.Authenticate(c.Request.Context(), strings.TrimPrefix(header, common.BearerPrefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorResponse{Code: common.CodeUnauthorized, Message: common.Message(err)})
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}
