package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/steamwatch/internal/app/api/middleware"
	"github.com/fatflowers/steamwatch/internal/app/service/statistics"
	"github.com/fatflowers/steamwatch/internal/app/service/watchlist"
	"github.com/fatflowers/steamwatch/pkg/response"
)

func rejectAdmin(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
}

// @Summary      List watchlist entries (Admin)
// @Description  Paginated, filterable listing of every subscription.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     CronBearer
// @Param        request  body  watchlist.ScanRequest  true  "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespScanWatchlist
// @Router       /api/v1/admin/list_watchlist [post]
func ApiAdminListWatchlist(svc WatchlistScanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req watchlist.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.Scan(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Get statistics (Admin)
// @Description  Daily snapshot, sale and notification counts plus the active subscription count.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     CronBearer
// @Param        request  body  statistics.Request  true  "Statistic request parameters"
// @Success      200  {object}  handlers.RespStatistics
// @Router       /api/v1/admin/get_statistics [post]
func ApiAdminGetStatistics(svc AdminStatistics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.GetStatistics(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, secret string, scanner WatchlistScanner, stats AdminStatistics) {
	r.Use(mw.BearerAuth(secret, rejectAdmin))
	r.POST("/list_watchlist", ApiAdminListWatchlist(scanner))
	r.POST("/get_statistics", ApiAdminGetStatistics(stats))
}
