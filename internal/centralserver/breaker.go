package centralserver

import (
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/charge-console/internal/config"
)

func newBreaker(cfg cfgpkg.BreakerConfig, logger *zap.Logger, onState func(gobreaker.State)) *gobreaker.CircuitBreaker {
	minReq := cfg.MinRequests
	if minReq == 0 {
		minReq = 5
	}
	ratio := cfg.FailureRatio
	if ratio <= 0 {
		ratio = 0.6
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "central-server",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minReq {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if onState != nil {
				onState(to)
			}
		},
	})
}

// breakerGauge closed=0 half-open=1 open=2
func breakerGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
