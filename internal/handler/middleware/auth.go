package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kyuaar/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ctxActorKey = "actor"

var errInvalidToken = errors.New("invalid token")

type AdminClaims struct {
	Actor string `json:"actor"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AdminMiddleware guards the operator API. Token issuance belongs to the
// external auth service; the core only verifies.
type AdminMiddleware struct {
	secret []byte
}

func NewAdminMiddleware(cfg config.Config) *AdminMiddleware {
	return &AdminMiddleware{secret: []byte(cfg.JWT.Secret)}
}

func (m *AdminMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(authHeader[len("Bearer "):])
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Access token required"},
			})
			c.Abort()
			return
		}

		claims, err := m.validate(token)
		if err != nil {
			slog.Warn("admin token validation failed", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Invalid or expired token"},
			})
			c.Abort()
			return
		}
		if claims.Role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "Insufficient permissions"},
			})
			c.Abort()
			return
		}

		c.Set(ctxActorKey, claims.Actor)
		c.Next()
	}
}

func (m *AdminMiddleware) validate(token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(time.Now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// GetActor returns the authenticated operator set by RequireAdmin.
func GetActor(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxActorKey)
	if !ok {
		return "", false
	}
	actor, ok := v.(string)
	return actor, ok
}
