package handler

import (
	"context"
	"net/http"
	"time"

	"beautypos/internal/infra"
	"beautypos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports DB and Redis connectivity, the SMTP breaker state and how
// many jobs sit in each dead letter queue. Neither an open breaker nor parked
// jobs fail the check; they only degrade receipts and emails.
func Health(db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if mailCB != nil {
			body["smtp"] = mailCB.State().String()
		}
		if redisStatus == "connected" {
			body["dlq"] = deadLetters(ctx, rdb)
		}
		c.JSON(status, body)
	}
}

var dlqQueues = map[string]string{
	"receipt": worker.QueueReceipt,
	"closing": worker.QueueClosing,
	"email":   worker.QueueEmail,
}

// deadLetters returns the DLQ length per job queue, or "error" for a queue
// whose length could not be read.
func deadLetters(ctx context.Context, rdb *redis.Client) gin.H {
	out := gin.H{}
	for name, queue := range dlqQueues {
		n, err := worker.DLQLength(ctx, rdb, queue)
		if err != nil {
			out[name] = "error"
			continue
		}
		out[name] = n
	}
	return out
}
