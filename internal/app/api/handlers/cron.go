package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/fatflowers/steamwatch/internal/app/api/middleware"
	"github.com/fatflowers/steamwatch/pkg/logctx"
	"github.com/fatflowers/steamwatch/pkg/response"
)

func rejectCron(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.JobError{Error: "Unauthorized"})
}

func jobFailed(c *gin.Context, job string, err error) {
	logctx.FromGin(c, zap.NewNop().Sugar()).Errorw("job_failed", "job", job, "error", err)
	c.JSON(http.StatusInternalServerError, response.JobError{Error: "Internal server error"})
}

// @Summary      Sync prices
// @Description  Refreshes the popular games on sale and records today's prices. Answers with flat counters.
// @Tags         Jobs
// @Produce      json
// @Security     CronBearer
// @Success      200  {object}  handlers.SyncPricesSummary
// @Failure      401  {object}  response.JobError
// @Failure      500  {object}  response.JobError
// @Router       /api/cron/sync-prices [post]
func ApiCronSyncPrices(svc PriceSyncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.SyncPrices(c.Request.Context())
		if err != nil {
			jobFailed(c, "sync_prices", err)
			return
		}
		c.JSON(http.StatusOK, response.JobSummary{
			"success": true,
			"synced":  res.Synced,
			"errors":  res.Errors,
			"total":   res.Total,
		})
	}
}

// @Summary      Check price drops
// @Description  Evaluates every active subscription and sends due alerts. Answers with flat counters.
// @Tags         Jobs
// @Produce      json
// @Security     CronBearer
// @Success      200  {object}  handlers.CheckPriceDropsSummary
// @Failure      401  {object}  response.JobError
// @Failure      500  {object}  response.JobError
// @Router       /api/cron/check-price-drops [post]
func ApiCronCheckPriceDrops(svc PriceDropChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.CheckPriceDrops(c.Request.Context())
		if err != nil {
			jobFailed(c, "check_price_drops", err)
			return
		}
		c.JSON(http.StatusOK, response.JobSummary{
			"success":           true,
			"checked":           res.Checked,
			"notificationsSent": res.NotificationsSent,
			"errors":            res.Errors,
			"total":             res.Total,
		})
	}
}

// RegisterCronRoutes mounts both triggers for GET and POST so any scheduler can call them.
func RegisterCronRoutes(r gin.IRouter, secret string, syncer PriceSyncer, checker PriceDropChecker) {
	r.Use(mw.BearerAuth(secret, rejectCron))
	sync := ApiCronSyncPrices(syncer)
	check := ApiCronCheckPriceDrops(checker)
	r.GET("/sync-prices", sync)
	r.POST("/sync-prices", sync)
	r.GET("/check-price-drops", check)
	r.POST("/check-price-drops", check)
}
