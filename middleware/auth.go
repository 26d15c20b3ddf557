package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vlogsite/blogify/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextRoleKey stores the role claim inside Gin context.
	ContextRoleKey = "role"

	// SessionCookieName is the HttpOnly cookie carrying the session token.
	SessionCookieName = "token"
)

// extractToken reads the session token from the HttpOnly cookie or,
// failing that, from a Bearer Authorization header.
func extractToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthRequired ensures the request is authenticated via a valid session token.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx)
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid or expired token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Set(ContextRoleKey, claims.Role)
		ctx.Next()
	}
}

// AuthOptional resolves the session identity when a valid token is
// present but never rejects the request. Used by read endpoints whose
// visibility rules depend on who is asking (draft posts, followed feed).
func AuthOptional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx)
		if tokenString != "" && !utils.IsTokenBlacklisted(tokenString) {
			if claims, err := utils.ParseToken(tokenString); err == nil {
				ctx.Set(ContextUserIDKey, claims.UserID)
				ctx.Set(ContextUsernameKey, claims.Username)
				ctx.Set(ContextRoleKey, claims.Role)
			}
		}
		ctx.Next()
	}
}
