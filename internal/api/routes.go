package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/charge-console/internal/api/middleware"
	cfgpkg "github.com/taoyao-code/charge-console/internal/config"
)

// RegisterStartRoutes 注册远程启动交易路由
func RegisterStartRoutes(
	r gin.IRouter,
	handler *StartHandler,
	authCfg cfgpkg.AuthConfig,
	rateCfg cfgpkg.RateLimitConfig,
	logger *zap.Logger,
) {
	if r == nil || handler == nil {
		return
	}

	api := r.Group("/api/v1")
	api.GET("/connector-statuses", handler.ConnectorStatuses)

	secured := api.Group("")
	secured.Use(middleware.JWTAuth(authCfg, logger))
	if authCfg.Enabled {
		logger.Info("jwt authentication enabled", zap.String("issuer", authCfg.Issuer))
	} else {
		logger.Warn("api authentication disabled - only for development!", zap.String("dev_actor", authCfg.DevActor.ID))
	}

	// 仅限制发起启动，轮询与应答不受限
	secured.POST("/charging-stations/:station_id/connectors/:connector_id/start",
		middleware.RateLimit(rateCfg), handler.StartTransaction)

	secured.GET("/start-runs/:run_id", handler.GetRun)
	secured.POST("/start-runs/:run_id/answer", handler.AnswerPrompt)
	secured.DELETE("/start-runs/:run_id", handler.CancelRun)

	secured.GET("/start-attempts", handler.ListAttempts)
	secured.GET("/start-attempts/:run_id", handler.GetAttempt)

	logger.Info("start routes registered", zap.Int("endpoints", 7))
}
