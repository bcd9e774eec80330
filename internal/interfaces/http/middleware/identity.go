package middleware

import (
	"errors"
	"strings"

	"github.com/erp/ledger/internal/infrastructure/auth"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Identity headers and context keys
const (
	TenantIDHeader = "X-Tenant-ID"
	UserIDHeader   = "X-User-ID"

	TenantIDKey = "tenant_id"
	UserIDKey   = "user_id"

	bearerPrefix = "Bearer "
)

// IdentityConfig configures how callers are identified
type IdentityConfig struct {
	// Verifier checks bearer tokens. Nil disables bearer authentication.
	Verifier *auth.Verifier
	// AllowHeaders accepts X-Tenant-ID / X-User-ID when no token is sent
	AllowHeaders bool
	Logger       *zap.Logger
}

// Identity resolves the tenant and user of the request and stores them on
// the gin context, the request context logger fields and the active span.
// Requests without a usable identity are rejected with 401.
func Identity(cfg IdentityConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		tenantID, userID, code, msg := resolveIdentity(c, cfg)
		if code != "" {
			log.Debug("Request rejected by identity check",
				zap.String("path", c.Request.URL.Path),
				zap.String("reason", msg),
			)
			c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Set(UserIDKey, userID)

		ctx := logger.WithIdentity(c.Request.Context(), tenantID.String(), userID.String())
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(
				attribute.String("tenant_id", tenantID.String()),
				attribute.String("user_id", userID.String()),
			)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func resolveIdentity(c *gin.Context, cfg IdentityConfig) (uuid.UUID, uuid.UUID, string, string) {
	if header := c.GetHeader("Authorization"); header != "" {
		if cfg.Verifier == nil {
			return uuid.Nil, uuid.Nil, dto.ErrCodeUnauthorized, "Bearer authentication is not configured"
		}
		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || token == "" {
			return uuid.Nil, uuid.Nil, dto.ErrCodeUnauthorized, "Invalid authorization header format"
		}
		id, err := cfg.Verifier.Verify(token)
		if errors.Is(err, auth.ErrExpiredToken) {
			return uuid.Nil, uuid.Nil, dto.ErrCodeTokenExpired, "Token has expired"
		}
		if err != nil {
			return uuid.Nil, uuid.Nil, dto.ErrCodeUnauthorized, "Invalid token"
		}
		return id.TenantID, id.UserID, "", ""
	}

	if !cfg.AllowHeaders {
		return uuid.Nil, uuid.Nil, dto.ErrCodeUnauthorized, "Missing authorization header"
	}
	rawTenant, rawUser := c.GetHeader(TenantIDHeader), c.GetHeader(UserIDHeader)
	if rawTenant == "" || rawUser == "" {
		return uuid.Nil, uuid.Nil, dto.ErrCodeUnauthorized, "X-Tenant-ID and X-User-ID headers are required"
	}
	tenantID, err := uuid.Parse(rawTenant)
	if err != nil {
		return uuid.Nil, uuid.Nil, dto.ErrCodeBadRequest, "X-Tenant-ID must be a UUID"
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return uuid.Nil, uuid.Nil, dto.ErrCodeBadRequest, "X-User-ID must be a UUID"
	}
	return tenantID, userID, "", ""
}

// GetTenantID returns the tenant resolved by Identity
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	return getUUID(c, TenantIDKey)
}

// GetUserID returns the user resolved by Identity
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	return getUUID(c, UserIDKey)
}

func getUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	v, ok := c.Get(key)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
