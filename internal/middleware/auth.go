package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
	apperrors "github.com/John-Sie/YangBeiKTV/pkg/errors"
	"github.com/John-Sie/YangBeiKTV/pkg/httputil"
	"github.com/John-Sie/YangBeiKTV/pkg/jwt"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// AuthConfig JWT 认证配置
type AuthConfig struct {
	Required bool // 是否必须登录
	// 只接受这些角色签发的令牌，为空表示 ADMIN 和 USER
	Roles []string
}

// Auth JWT 认证。只校验令牌，用户记录由处理器按需读取
func Auth(tokens *jwt.Manager, cfg AuthConfig, log logger.Logger) gin.HandlerFunc {
	roles := cfg.Roles
	if len(roles) == 0 {
		roles = []string{string(domain.RoleAdmin), string(domain.RoleUser)}
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			// WebSocket 握手无法带自定义头
			token = c.Query("token")
		}
		if token == "" {
			if cfg.Required {
				httputil.AbortWithError(c, apperrors.ErrUnauthorized.WithMessage("Missing authorization header"))
				return
			}
			c.Next()
			return
		}

		claims, err := tokens.Parse(token)
		if err == nil && !slices.Contains(roles, claims.Role) {
			err = apperrors.ErrTokenInvalid
		}
		if err != nil {
			log.WithFields(
				logger.String("request_id", GetRequestID(c)),
				logger.Error(err),
			).Warn("JWT validation failed")
			if cfg.Required {
				httputil.AbortWithError(c, err)
				return
			}
			c.Next()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RequiredAuth 必须登录
func RequiredAuth(tokens *jwt.Manager, log logger.Logger) gin.HandlerFunc {
	return Auth(tokens, AuthConfig{Required: true}, log)
}

// OptionalAuth 可匿名访问，带了有效令牌就识别身份
func OptionalAuth(tokens *jwt.Manager, log logger.Logger) gin.HandlerFunc {
	return Auth(tokens, AuthConfig{}, log)
}

// RequireAdmin 令牌角色必须是 ADMIN，须放在 RequiredAuth 之后。
// 处理器仍会用最新的用户记录再次校验
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != string(domain.RoleAdmin) {
			httputil.AbortWithError(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// GetUserID 当前令牌的用户 ID，未登录为空
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetRole 当前令牌的角色
func GetRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireLogin 放在 OptionalAuth 之后，未识别出用户时返回 401
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			httputil.AbortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
