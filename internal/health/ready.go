package health

import (
	"context"
	"sync/atomic"
)

// Readiness 启动阶段就绪标记（视图存储、HTTP 监听）
type Readiness struct {
	storeReady atomic.Bool
	httpReady  atomic.Bool
}

func New() *Readiness { return &Readiness{} }

func (r *Readiness) SetStoreReady(v bool) { r.storeReady.Store(v) }
func (r *Readiness) SetHTTPReady(v bool)  { r.httpReady.Store(v) }

// Ready 总体就绪：各子系统均为 true
func (r *Readiness) Ready() bool {
	return r.storeReady.Load() && r.httpReady.Load()
}

// Checker 将启动就绪标记作为一项检查
func (r *Readiness) Checker() Checker { return readinessChecker{r} }

type readinessChecker struct{ r *Readiness }

func (readinessChecker) Name() string { return "startup" }

func (c readinessChecker) Check(_ context.Context) CheckResult {
	if c.r.Ready() {
		return CheckResult{Status: StatusHealthy, Message: "ok"}
	}
	return CheckResult{
		Status:  StatusUnhealthy,
		Message: "starting",
		Details: map[string]interface{}{
			"store": c.r.storeReady.Load(),
			"http":  c.r.httpReady.Load(),
		},
	}
}
