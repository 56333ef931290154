package app

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/taoyao-code/charge-console/internal/centralserver"
	cfgpkg "github.com/taoyao-code/charge-console/internal/config"
	"github.com/taoyao-code/charge-console/internal/metrics"
)

// NewCentralServerClient 创建中心服务客户端（启动网关 + 站点快照）
func NewCentralServerClient(cfg cfgpkg.CentralServerConfig, appm *metrics.AppMetrics, logger *zap.Logger) *centralserver.Client {
	client := centralserver.New(cfg, logger,
		centralserver.WithMetrics(appm),
		centralserver.WithTracer(otel.Tracer("charge-console/centralserver")),
	)
	logger.Info("central server client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("retries", cfg.Retries))
	return client
}
