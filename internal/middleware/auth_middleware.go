package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"veloraMarket/pkg/utils"

	"github.com/labstack/echo/v4"
)

type authError struct {
	Message string `json:"message"`
}

// AuthMiddleware requires a valid bearer token and stores the caller
// identity on the echo context.
func AuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := claimsFromRequest(c, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, authError{Message: err.Error()})
			}

			c.Set("user_id", claims.UserID)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

// OptionalAuth extracts the caller identity when a valid bearer token is
// present and lets anonymous requests through untouched. Recommendation
// reads serve both audiences.
func OptionalAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := claimsFromRequest(c, secret)
			if err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("role", claims.Role)
			}

			return next(c)
		}
	}
}

func claimsFromRequest(c echo.Context, secret string) (*utils.Claims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, errMissingHeader
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return nil, errInvalidFormat
	}

	claims, err := utils.ParseJWT(tokenParts[1], secret)
	if err != nil {
		return nil, errInvalidToken
	}

	expAt, err := claims.GetExpirationTime()
	if err != nil || expAt == nil || time.Now().After(expAt.Time) {
		return nil, errExpiredToken
	}

	return claims, nil
}

var (
	errMissingHeader = errors.New("missing authorization header")
	errInvalidFormat = errors.New("invalid authorization format")
	errInvalidToken  = errors.New("invalid token")
	errExpiredToken  = errors.New("token expired")
)
