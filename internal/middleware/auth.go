package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"derby-shop-api/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"

	RoleAdmin = "admin"
)

// Claims is the token payload issued by the auth service.
type Claims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware rejects requests without a valid HS256 bearer token and stores the
// caller's id and role on the echo context.
func AuthMiddleware(secret []byte, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				return c.JSON(http.StatusUnauthorized, dto.Response{
					Status: http.StatusUnauthorized,
					Msg:    "No or malformed token provided",
				})
			}

			claims := &Claims{}
			_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil {
				logger.Warn("invalid or expired token", zap.String("path", c.Path()), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, dto.Response{
					Status: http.StatusUnauthorized,
					Msg:    "Invalid or expired token",
				})
			}

			c.Set(ContextUserID, claims.ID)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role, _ := c.Get(ContextRole).(string); role != RoleAdmin {
				return c.JSON(http.StatusForbidden, dto.Response{
					Status: http.StatusForbidden,
					Msg:    "Forbidden: Admins only",
				})
			}
			return next(c)
		}
	}
}
