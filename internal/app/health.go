package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taoyao-code/charge-console/internal/health"
)

// NewHealthAggregator 创建健康检查聚合器；启动就绪与中心服务熔断为固定项
func NewHealthAggregator(ready *health.Readiness, central health.BreakerSource) *health.Aggregator {
	agg := health.NewAggregator(ready.Checker())
	if central != nil {
		agg.AddChecker(health.NewCentralServerChecker(central))
	}
	return agg
}

// AddDatabaseChecker 添加数据库检查器
func AddDatabaseChecker(aggregator *health.Aggregator, dbpool *pgxpool.Pool) {
	if dbpool != nil {
		aggregator.AddChecker(health.NewDatabaseChecker(dbpool))
	}
}

// RegisterHealthRoutes 注册健康检查HTTP路由
func RegisterHealthRoutes(r *gin.Engine, aggregator *health.Aggregator) {
	health.RegisterHTTPRoutes(r, aggregator)
}
