package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterHTTPRoutes 注册健康检查HTTP路由
//
//	GET /health/live   liveness
//	GET /health/ready  readiness（Degraded 仍就绪）
//	GET /health        详细报告
func RegisterHTTPRoutes(r gin.IRoutes, aggregator *Aggregator) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"alive": true})
	})

	r.GET("/health/ready", func(c *gin.Context) {
		rep := aggregator.Report(c.Request.Context())
		if rep.Status == StatusUnhealthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": rep.Status, "ready": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": rep.Status, "ready": true})
	})

	r.GET("/health", func(c *gin.Context) {
		rep := aggregator.Report(c.Request.Context())
		code := http.StatusOK
		if rep.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, rep)
	})
}
