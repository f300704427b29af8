package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/famvault/server/internal/module/security"
	"github.com/famvault/server/internal/shared/config"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID.
	UserIDKey = "user_id"
	// EmailKey is the context key for email.
	EmailKey = "email"
	// RoleKey is the context key for role.
	RoleKey = "role"

	// RoleAdmin marks operators allowed on admin routes.
	RoleAdmin = "admin"
)

// Identity is the authenticated caller extracted from a token.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// TokenValidator verifies tokens issued by the identity service. This server
// never issues tokens.
type TokenValidator interface {
	Validate(token string) (*Identity, error)
}

// Claims is the JWT payload the identity service issues. Subject carries the
// user ID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// JWTValidator validates HMAC-signed JWTs against a shared secret.
type JWTValidator struct {
	secret []byte
	issuer string
}

// NewJWTValidator creates a validator from auth configuration.
func NewJWTValidator(cfg config.AuthConfig) (*JWTValidator, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	return &JWTValidator{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer}, nil
}

// Validate parses and verifies a token, returning the caller identity.
func (v *JWTValidator) Validate(token string) (*Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("token subject is not a user ID: %w", err)
	}
	return &Identity{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

// Auth returns a middleware that validates bearer tokens and sets the caller
// identity in the context. Rejected tokens feed the security event recorder,
// keyed by client IP; recording failures never block the response.
func Auth(validator TokenValidator, events security.EventRecorder, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authorization header required",
			})
			return
		}

		identity, err := validator.Validate(token)
		if err != nil {
			recordFailedAuth(c.Request.Context(), events, c.ClientIP(), logger)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(UserIDKey, identity.UserID)
		c.Set(EmailKey, identity.Email)
		c.Set(RoleKey, identity.Role)

		c.Next()
	}
}

// RequireAdmin returns a middleware that rejects non-admin callers. Must run
// after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin role required",
			})
			return
		}
		c.Next()
	}
}

func recordFailedAuth(ctx context.Context, events security.EventRecorder, clientIP string, logger *zap.Logger) {
	if events == nil {
		return
	}
	if _, err := events.Record(ctx, security.EventFailedAuth, clientIP); err != nil && logger != nil {
		logger.Warn("failed to record auth rejection",
			zap.String("client_ip", clientIP),
			zap.Error(err),
		)
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimPrefix(authHeader, BearerPrefix)
	}
	return ""
}

// GetUserID returns the authenticated user ID, or uuid.Nil.
func GetUserID(c *gin.Context) uuid.UUID {
	if val, exists := c.Get(UserIDKey); exists {
		if userID, ok := val.(uuid.UUID); ok {
			return userID
		}
	}
	return uuid.Nil
}

// GetEmail returns the authenticated email, or empty string.
func GetEmail(c *gin.Context) string {
	if val, exists := c.Get(EmailKey); exists {
		if email, ok := val.(string); ok {
			return email
		}
	}
	return ""
}

// GetRole returns the authenticated role, or empty string.
func GetRole(c *gin.Context) string {
	if val, exists := c.Get(RoleKey); exists {
		if role, ok := val.(string); ok {
			return role
		}
	}
	return ""
}
