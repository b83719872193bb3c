// Package auth resolves the caller of an API request from a bearer token.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/drujensen/cliweb/internal/domain/entities"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const userKey = "user"

// Middleware sets the caller on the echo context. Requests without an
// Authorization header continue as anonymous; a header that does not carry
// a valid token is rejected.
func Middleware(secret string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{"error": "Malformed authorization header"})
			}

			user, err := ParseToken(secret, parts[1])
			if err != nil {
				logger.Debug("Rejected token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{"error": "Invalid token"})
			}
			c.Set(userKey, user)
			return next(c)
		}
	}
}

// User returns the authenticated caller or nil.
func User(c echo.Context) *entities.User {
	user, _ := c.Get(userKey).(*entities.User)
	return user
}

// ParseToken validates an HS256 token and reads the user from its claims.
func ParseToken(secret, tokenString string) (*entities.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	id, _ := claims["sub"].(string)
	if id == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	login, _ := claims["login"].(string)
	admin, _ := claims["admin"].(bool)
	return &entities.User{ID: id, Login: login, Admin: admin}, nil
}

// IssueToken signs a token for user valid for ttl.
func IssueToken(secret string, user *entities.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"login": user.Login,
		"admin": user.Admin,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
