package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taoyao-code/charge-console/internal/starttx"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	StartRunsTotal       *prometheus.CounterVec   // labels: state, reason
	PromptsPending       prometheus.Gauge         // 等待用户应答的提示数
	RunsActive           prometheus.Gauge         // 进行中的运行数
	CentralServerSeconds *prometheus.HistogramVec // labels: op, result=ok|error|open
	BreakerState         prometheus.Gauge         // 0=closed 1=half-open 2=open
	HTTPRequestsTotal    *prometheus.CounterVec   // labels: method, route, code
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		StartRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "start_runs_total",
			Help: "Start transaction runs by terminal state and reason.",
		}, []string{"state", "reason"}),
		PromptsPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "start_prompts_pending",
			Help: "Prompts currently waiting for an operator answer.",
		}),
		RunsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "start_runs_active",
			Help: "Start transaction runs not yet terminal.",
		}),
		CentralServerSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "central_server_request_seconds",
			Help:    "Latency of central server calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "result"}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "central_server_breaker_state",
			Help: "Central server circuit breaker state (0 closed, 1 half-open, 2 open).",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served by route.",
		}, []string{"method", "route", "code"}),
	}
	reg.MustRegister(m.StartRunsTotal, m.PromptsPending, m.RunsActive, m.CentralServerSeconds, m.BreakerState, m.HTTPRequestsTotal)
	return m
}

// StartObserver 将运行终态计入 start_runs_total
func (m *AppMetrics) StartObserver() starttx.Observer {
	if m == nil {
		return starttx.ObserverFunc(nil)
	}
	return starttx.ObserverFunc(func(state starttx.State, reason starttx.Reason) {
		m.StartRunsTotal.WithLabelValues(string(state), string(reason)).Inc()
	})
}

// ObserveCentralServer 记录一次中心服务调用
func (m *AppMetrics) ObserveCentralServer(op, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CentralServerSeconds.WithLabelValues(op, result).Observe(elapsed.Seconds())
}

// PromptOpened / PromptClosed 维护待应答提示数
func (m *AppMetrics) PromptOpened() {
	if m != nil {
		m.PromptsPending.Inc()
	}
}

func (m *AppMetrics) PromptClosed() {
	if m != nil {
		m.PromptsPending.Dec()
	}
}

// RunStarted / RunFinished 维护进行中的运行数
func (m *AppMetrics) RunStarted() {
	if m != nil {
		m.RunsActive.Inc()
	}
}

func (m *AppMetrics) RunFinished() {
	if m != nil {
		m.RunsActive.Dec()
	}
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *AppMetrics) ObserveHTTP(method, route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// SetBreakerState 记录熔断状态
func (m *AppMetrics) SetBreakerState(v float64) {
	if m == nil {
		return
	}
	m.BreakerState.Set(v)
}
