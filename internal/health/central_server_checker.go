package health

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSource 暴露熔断状态的客户端
type BreakerSource interface {
	BreakerState() gobreaker.State
}

// CentralServerChecker 中心服务熔断状态检查，不主动发请求
type CentralServerChecker struct {
	src BreakerSource
}

func NewCentralServerChecker(src BreakerSource) *CentralServerChecker {
	return &CentralServerChecker{src: src}
}

func (c *CentralServerChecker) Name() string { return "central_server" }

// Check 熔断打开时降级：提示/取消仍可用，仅提交会失败
func (c *CentralServerChecker) Check(_ context.Context) CheckResult {
	start := time.Now()
	st := c.src.BreakerState()
	res := CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]interface{}{"breaker": st.String()},
	}
	switch st {
	case gobreaker.StateOpen:
		res.Status, res.Message = StatusDegraded, "circuit breaker open"
	case gobreaker.StateHalfOpen:
		res.Status, res.Message = StatusDegraded, "circuit breaker half-open"
	}
	res.Latency = time.Since(start)
	return res
}
