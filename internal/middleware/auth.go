package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"petclinic/internal/pkg/jwt"
	"petclinic/internal/pkg/response"
)

// Context keys set by JWTAuth.
const (
	CtxEmployeeID = "employee_id"
	CtxBranchID   = "branch_id"
	CtxRole       = "role"
)

// JWTAuth validates the bearer token and stores caller identity in the context.
// Websocket handshakes may pass the token as ?token= instead.
func JWTAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok && c.IsWebsocket() {
			// Browsers cannot set headers on a websocket handshake: /ws/frontdesk?token=JWT
			raw, ok = c.Query("token"), true
		}
		if !ok || strings.TrimSpace(raw) == "" {
			response.Error(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(raw))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(CtxEmployeeID, claims.EmployeeID)
		c.Set(CtxBranchID, claims.BranchID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireRoles lets the request through only for one of the given roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(r)] = true
	}

	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			response.Error(c, http.StatusUnauthorized, "role not found in token")
			c.Abort()
			return
		}
		if !allowed[strings.ToLower(role)] {
			response.Error(c, http.StatusForbidden, "access denied: insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
