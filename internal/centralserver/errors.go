package centralserver

import (
	"errors"
	"fmt"
)

// ErrBreakerOpen 熔断打开，请求未发出
var ErrBreakerOpen = errors.New("central server unavailable: circuit breaker open")

// HTTPError 中心服务返回非 2xx
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("central server: http %d", e.StatusCode)
	}
	return fmt.Sprintf("central server: http %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus 供工作流区分 401/403
func (e *HTTPError) HTTPStatus() int { return e.StatusCode }

// retryable 仅 5xx 重试
func (e *HTTPError) retryable() bool { return e.StatusCode >= 500 }
