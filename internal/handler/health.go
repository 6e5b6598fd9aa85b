package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ChristianJLC/web/internal/infra"
	"github.com/ChristianJLC/web/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// Redis is optional: a nil client reports "disabled" and does not fail the check.
func Health(db *gorm.DB, rdb *redis.Client, cb *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		body := gin.H{}
		ok := true

		body["db"] = "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			body["db"] = "error"
			ok = false
		}

		switch {
		case rdb == nil:
			body["redis"] = "disabled"
		case rdb.Ping(ctx).Err() != nil:
			body["redis"] = "error"
			ok = false
		default:
			body["redis"] = "connected"
			if n, err := worker.DLQLength(ctx, rdb, worker.QueueAlertas); err == nil {
				body["alertas_dlq"] = n
				if n > 0 {
					if ultimos, err := worker.PeekDLQ(ctx, rdb, worker.QueueAlertas, 1); err == nil && len(ultimos) == 1 {
						body["alertas_dlq_ultimo_fallo"] = ultimos[0].FailedAt
					}
				}
			}
		}
		if cb != nil {
			body["smtp_circuit"] = cb.State().String()
		}

		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = ok
		c.JSON(status, body)
	}
}
