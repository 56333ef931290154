// Package middleware 提供HTTP中间件
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/charge-console/internal/config"
	"github.com/taoyao-code/charge-console/internal/coremodel"
)

const (
	ctxKeyActor = "actor"
	ctxKeyToken = "access_token"
)

// ActorClaims 访问令牌声明（与前端登录令牌一致）
type ActorClaims struct {
	jwt.RegisteredClaims
	Name      string   `json:"name"`
	FirstName string   `json:"firstName"`
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	TagIDs    []string `json:"tagIDs"`
}

// UserToken 转换为领域令牌
func (c *ActorClaims) UserToken() *coremodel.UserToken {
	return &coremodel.UserToken{
		ID:        c.Subject,
		Name:      c.Name,
		FirstName: c.FirstName,
		Email:     c.Email,
		Role:      c.Role,
		TagIDs:    c.TagIDs,
	}
}

// JWTAuth 校验 Bearer 令牌（HS256），将操作者与原始令牌放入上下文。
// 未启用时使用配置中的开发身份。
func JWTAuth(cfg cfgpkg.AuthConfig, logger *zap.Logger) gin.HandlerFunc {
	dev := &coremodel.UserToken{
		ID:        cfg.DevActor.ID,
		Name:      cfg.DevActor.Name,
		FirstName: cfg.DevActor.FirstName,
		Role:      cfg.DevActor.Role,
		TagIDs:    cfg.DevActor.TagIDs,
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Set(ctxKeyActor, dev)
			c.Next()
			return
		}

		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			logger.Warn("jwt auth: missing token",
				zap.String("path", c.Request.URL.Path),
				zap.String("remote_addr", c.ClientIP()))
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		var claims ActorClaims
		_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return secret, nil })
		if err != nil {
			logger.Warn("jwt auth: invalid token",
				zap.String("path", c.Request.URL.Path),
				zap.String("remote_addr", c.ClientIP()),
				zap.Bool("expired", errors.Is(err, jwt.ErrTokenExpired)),
				zap.Error(err))
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		if claims.Subject == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "token subject is required")
			return
		}

		c.Set(ctxKeyActor, claims.UserToken())
		c.Set(ctxKeyToken, raw)
		c.Next()
	}
}

// Actor 取当前操作者
func Actor(c *gin.Context) (*coremodel.UserToken, bool) {
	v, ok := c.Get(ctxKeyActor)
	if !ok {
		return nil, false
	}
	t, ok := v.(*coremodel.UserToken)
	return t, ok && t != nil
}

// AccessToken 取原始访问令牌（开发身份下为空）
func AccessToken(c *gin.Context) string {
	return c.GetString(ctxKeyToken)
}

func bearerToken(h string) string {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

func abortJSON(c *gin.Context, code int, errCode, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": errCode, "message": msg})
}

// CORS 允许前端控制台跨域
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
