package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// subjectCtxKey is the Gin context key holding the verified caller identity.
const subjectCtxKey = "auth_subject"

// JWTSettings configures bearer-token verification and minting.
type JWTSettings struct {
	Secret     string
	Issuer     string
	Audience   string
	Expiration time.Duration
}

// BearerMiddleware verifies the Authorization bearer token and stores the
// verified subject in the request context. The ingestion pipeline consumes
// the identity signal; it never re-validates the token itself.
func BearerMiddleware(settings JWTSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "BEARER_MISSING",
				"message": "Bearer token not provided",
			})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims := &jwt.RegisteredClaims{}

		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
			}
			return []byte(settings.Secret), nil
		}, jwt.WithIssuer(settings.Issuer), jwt.WithAudience(settings.Audience))

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "BEARER_INVALID",
				"message": "Invalid bearer token",
			})
			return
		}

		c.Set(subjectCtxKey, claims.Subject)
		c.Next()
	}
}

// Subject returns the verified caller identity from the request context.
func Subject(c *gin.Context) string {
	v, _ := c.Get(subjectCtxKey)
	s, _ := v.(string)
	return s
}

// MintToken issues a signed bearer token for the given subject. Only the
// development token endpoint uses it.
func MintToken(settings JWTSettings, subject string, extra map[string]string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(settings.Expiration)

	claims := jwt.MapClaims{
		"sub": subject,
		"iss": settings.Issuer,
		"aud": settings.Audience,
		"jti": uuid.New().String(),
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(settings.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
