package starttx

import (
	"errors"
	"net/http"
)

// StatusCoder 携带 HTTP 状态码的传输错误
type StatusCoder interface {
	HTTPStatus() int
}

// HandleTransportError 将传输失败转为带路由提示的错误消息
//   - 401: 令牌失效，提示跳转登录页
//   - 403: 无权限
//   - 其它: 使用调用方给定的兜底文案
func HandleTransportError(err error, fallbackKey string) Message {
	m := Message{Key: fallbackKey, Category: CategoryTransport}
	if fallbackKey == "" {
		m.Key = KeyUnexpectedError
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		switch sc.HTTPStatus() {
		case http.StatusUnauthorized:
			m.Key = KeyInvalidToken
			m.Route = RouteLogin
		case http.StatusForbidden:
			m.Key = KeyNotAuthorized
		}
	}
	return m
}

var errGatewayNotConfigured = errors.New("start transaction gateway not configured")
