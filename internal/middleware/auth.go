package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/layover-backend-go/pkg/response"
)

// RoleAdmin may provision hubs
const RoleAdmin = "admin"

// Claims are the JWT claims of an API caller
type Claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role"`

	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for a role
func IssueToken(secret, name, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateToken parses and verifies a token
func ValidateToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// RequireRole rejects requests without a valid bearer token for role
func RequireRole(secret, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "missing or invalid token", nil)
			c.Abort()
			return
		}
		claims, err := ValidateToken(secret, tokenString)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "missing or invalid token", err)
			c.Abort()
			return
		}
		if claims.Role != role {
			response.Error(c, http.StatusForbidden, "forbidden", nil)
			c.Abort()
			return
		}
		c.Set("claims", claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
