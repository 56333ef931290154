package centralserver

import "context"

type tokenKey struct{}

// WithAccessToken 将操作者访问令牌放入 ctx，请求时作为 Bearer 转发
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// AccessToken 取出 ctx 中的访问令牌
func AccessToken(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey{}).(string)
	return s
}
