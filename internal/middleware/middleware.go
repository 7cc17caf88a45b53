package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tixbay/internal/cache"
	apperrors "tixbay/internal/errors"
	"tixbay/internal/external"
	"tixbay/internal/logger"
	"tixbay/internal/metrics"
	"tixbay/internal/models"
	"tixbay/internal/repository"

	"github.com/gin-gonic/gin"
)

// Ctx key and helpers for the authenticated identity.
// Using unexported type to avoid collisions.

type ctxKey string

const userEmailKey ctxKey = "user_email"

func ContextWithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailKey, email)
}

func UserEmailFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(userEmailKey)
	if v == nil {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

// CORS restricts browser access to the storefront origin.
func CORS(clientURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", clientURL)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}

// Logger emits one structured log line per request and tags the request
// context with a correlation id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := logger.NewRequestID()
		c.Request = c.Request.WithContext(
			logger.ContextWithRequestID(c.Request.Context(), requestID))
		c.Header("X-Request-Id", requestID)

		c.Next()

		latency := time.Since(start)

		logFields := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if email, ok := UserEmailFromContext(c.Request.Context()); ok {
			logFields = append(logFields, "user_email", email)
		}

		log := logger.Get()
		if c.Writer.Status() >= 500 {
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			log.Error("Request failed", logFields...)
		} else {
			log.Info("Request completed", logFields...)
		}
	}
}

// Recovery turns panics into 500 responses with full logging.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Get().Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	})
}

// Metrics observes request durations per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// Auth verifies the bearer token against the identity provider,
// consulting the Valkey cache first so hot tokens cost one round trip
// instead of two.
func Auth(identityClient *external.IdentityClient, valkeyClient *cache.ValkeyClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		ctx := c.Request.Context()

		var email string
		if valkeyClient != nil {
			if cached, err := valkeyClient.GetVerifiedEmail(ctx, token); err == nil {
				email = cached
			}
		}

		if email == "" {
			claims, err := identityClient.VerifyToken(ctx, token)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrUnauthorized) {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				} else {
					c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Identity provider unavailable"})
				}
				return
			}
			email = claims.Email
			if valkeyClient != nil {
				valkeyClient.SetVerifiedEmail(ctx, token, email)
			}
		}

		c.Set("user_email", email)
		reqCtx := ContextWithUserEmail(c.Request.Context(), email)
		reqCtx = logger.ContextWithUserEmail(reqCtx, email)
		c.Request = c.Request.WithContext(reqCtx)

		c.Next()
	}
}

// RequireAdmin gates admin routes on the stored role. Runs after Auth.
func RequireAdmin(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := UserEmailFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, err := userRepo.GetByEmail(c.Request.Context(), email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check role"})
			return
		}
		if user == nil || user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden - Admin Only"})
			return
		}

		c.Next()
	}
}
