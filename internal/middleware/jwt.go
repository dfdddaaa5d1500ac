package middleware

import (
	"net/http"
	"strings"

	"github.com/altairhq/usermanagement/internal/constants"
	"github.com/altairhq/usermanagement/internal/service"
	ctxutil "github.com/altairhq/usermanagement/pkg/context"
	"github.com/altairhq/usermanagement/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type JWTMiddleware struct {
	jwtService *service.JWTService
}

func NewJWTMiddleware(jwtService *service.JWTService) *JWTMiddleware {
	return &JWTMiddleware{jwtService: jwtService}
}

func (m *JWTMiddleware) unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(
		http.StatusUnauthorized,
		constants.MsgUnauthorized,
		nil,
	))
	c.Abort()
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader(constants.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth validates the access token and puts the caller's identity in
// the request context.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			logger.GetLogger().Warn("Missing or malformed Authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			m.unauthorized(c)
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			logger.GetLogger().Warn("Invalid or expired token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			m.unauthorized(c)
			return
		}

		sid, err := service.SubjectFromClaims(claims)
		if err != nil {
			m.unauthorized(c)
			return
		}

		ctx := ctxutil.WithUserID(c.Request.Context(), sid)
		c.Request = c.Request.WithContext(ctx)

		c.Set("user_id", sid)
		if email, ok := claims["email"].(string); ok {
			c.Set("email", email)
		}
		if role, ok := claims["role"].(string); ok {
			c.Set("role", role)
		}

		c.Next()
	}
}

// RequireRole restricts a route to callers holding the named role.
// RequireAuth must run first.
func (m *JWTMiddleware) RequireRole(roleName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if role != roleName {
			c.JSON(http.StatusForbidden, constants.BuildErrorResponse(
				http.StatusForbidden,
				constants.MsgForbidden,
				nil,
			))
			c.Abort()
			return
		}
		c.Next()
	}
}
