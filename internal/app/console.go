package app

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/taoyao-code/charge-console/internal/centralserver"
	"github.com/taoyao-code/charge-console/internal/console"
	"github.com/taoyao-code/charge-console/internal/messages"
	"github.com/taoyao-code/charge-console/internal/metrics"
	"github.com/taoyao-code/charge-console/internal/session"
	"github.com/taoyao-code/charge-console/internal/starttx"
	"github.com/taoyao-code/charge-console/internal/storage"
)

// NewMessageCatalog 加载文案目录，Path 为空使用内置目录
func NewMessageCatalog(path string, logger *zap.Logger) (*messages.Catalog, error) {
	if path == "" {
		return messages.Default(), nil
	}
	cat, err := messages.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Info("message catalog loaded", zap.String("path", path), zap.String("default_locale", cat.DefaultLocale))
	return cat, nil
}

// NewStartHub 组装启动交易工作流与运行调度；audit 可为空
func NewStartHub(
	client *centralserver.Client,
	store session.Store,
	catalog *messages.Catalog,
	audit storage.AuditRepo,
	appm *metrics.AppMetrics,
	logger *zap.Logger,
) *console.Hub {
	ctrl := starttx.NewController(nil, client,
		starttx.WithLogger(logger.Named("starttx")),
		starttx.WithTracer(otel.Tracer("charge-console/starttx")),
		starttx.WithObserver(appm.StartObserver()),
	)
	opts := []console.Option{
		console.WithStationSource(client),
		console.WithMetrics(appm),
		console.WithLogger(logger.Named("console")),
	}
	if audit != nil {
		opts = append(opts, console.WithAudit(audit))
	}
	return console.NewHub(ctrl, store, catalog, opts...)
}
