package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionHeader 视图会话标识头
const SessionHeader = "X-Session-ID"

// SessionQuery SSE 连接无法设置请求头时使用的查询参数
const SessionQuery = "session_id"

// DefaultSession 匿名且未携带会话标识时使用的会话
const DefaultSession = "default"

// CtxSessionID 解析后的会话键
const CtxSessionID = "session_id"

// Session 解析视图会话
// 登录用户的会话键始终以用户ID为前缀，客户端传入的标识只能区分同一用户的多个标签页
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxSessionID, SessionKey(c.GetString(CtxUserID), clientSessionID(c)))
		c.Next()
	}
}

// SessionKey 由登录用户与客户端会话标识组合出会话键
func SessionKey(userID, clientID string) string {
	switch {
	case userID != "" && clientID != "":
		return userID + ":" + clientID
	case userID != "":
		return userID
	case clientID != "":
		return clientID
	default:
		return DefaultSession
	}
}

func clientSessionID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(SessionHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(c.Query(SessionQuery))
}
