package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// 认证写入的上下文键
const (
	CtxUserID      = "user_id"
	CtxUserName    = "user_name"
	CtxPermissions = "permissions"
	CtxClaims      = "claims"
)

// PermAll 拥有全部权限
const PermAll = "*"

// JWTClaims 控制台令牌
type JWTClaims struct {
	UserID      string   `json:"uid"`
	Name        string   `json:"name"`
	Permissions []string `json:"perms"`
	jwt.RegisteredClaims
}

// Can 是否拥有指定权限
func (c *JWTClaims) Can(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission || p == PermAll {
			return true
		}
	}
	return false
}

func deny(c *gin.Context, status, code int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"code": code, "message": msg})
}

// bearerToken Authorization 头优先；SSE 的 EventSource 不能带头，回退到 ?token=
func bearerToken(c *gin.Context) string {
	if scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " "); ok && scheme == "Bearer" {
		return strings.TrimSpace(token)
	}
	return c.Query("token")
}

// JWTAuth 校验 HS256 令牌并把用户信息写入上下文
func JWTAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	keyFunc := func(*jwt.Token) (interface{}, error) { return key, nil }

	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			deny(c, http.StatusUnauthorized, 40100, "Authorization is required")
			return
		}

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, keyFunc,
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			deny(c, http.StatusUnauthorized, 40102, "Invalid or expired token")
			return
		}
		if !token.Valid || claims.UserID == "" {
			deny(c, http.StatusUnauthorized, 40103, "Invalid token claims")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserName, claims.Name)
		c.Set(CtxPermissions, claims.Permissions)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

// RequirePermission 需在 JWTAuth 之后使用
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(CtxClaims)
		if !exists {
			deny(c, http.StatusForbidden, 40300, "No permissions found")
			return
		}
		claims, ok := v.(*JWTClaims)
		if !ok {
			deny(c, http.StatusForbidden, 40301, "Invalid permissions format")
			return
		}
		if !claims.Can(permission) {
			deny(c, http.StatusForbidden, 40302, "Permission denied: "+permission)
			return
		}
		c.Next()
	}
}
