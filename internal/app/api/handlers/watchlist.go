package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/steamwatch/internal/app/service/watchlist"
	"github.com/fatflowers/steamwatch/pkg/response"
)

type SubscribeResponse struct {
	Success     bool   `json:"success"`
	WatchlistID string `json:"watchlist_id"`
}

type UnsubscribeRequest struct {
	GameID string `json:"game_id" binding:"required"`
	Email  string `json:"email" binding:"required"`
}

type WatchlistStatusQuery struct {
	GameID string `form:"game_id" binding:"required"`
	Email  string `form:"email"`
}

type WatchlistByEmailQuery struct {
	Email string `form:"email" binding:"required"`
}

type UnsubscribeLinkQuery struct {
	Token string `form:"token" binding:"required"`
}

// @Summary      Watch a game
// @Description  Creates or reactivates a subscription. Omitted thresholds are cleared.
// @Tags         Watchlist
// @Accept       json
// @Produce      json
// @Param        request  body  watchlist.SubscribeRequest  true  "Subscription"
// @Success      200  {object}  handlers.RespSubscribe
// @Router       /api/v1/watchlist [post]
func ApiSubscribe(svc Watchlists) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req watchlist.SubscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		entry, err := svc.Subscribe(c.Request.Context(), &req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&SubscribeResponse{Success: true, WatchlistID: entry.ID}))
	}
}

// @Summary      Stop watching a game
// @Tags         Watchlist
// @Accept       json
// @Produce      json
// @Param        request  body  handlers.UnsubscribeRequest  true  "Subscription key"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/watchlist [delete]
func ApiUnsubscribe(svc Watchlists) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UnsubscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svc.Unsubscribe(c.Request.Context(), req.GameID, req.Email); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]bool{"success": true}))
	}
}

// @Summary      Watch status
// @Description  Whether the email actively watches the game. Without an email the answer is always false.
// @Tags         Watchlist
// @Produce      json
// @Param        game_id  query  string  true   "Game id"
// @Param        email    query  string  false  "Subscriber email"
// @Success      200  {object}  handlers.RespWatchStatus
// @Router       /api/v1/watchlist/status [get]
func ApiWatchStatus(svc Watchlists) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q WatchlistStatusQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.Status(c.Request.Context(), q.GameID, q.Email)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List watched games
// @Tags         Watchlist
// @Produce      json
// @Param        email  query  string  true  "Subscriber email"
// @Success      200  {object}  handlers.RespWatchlist
// @Router       /api/v1/watchlist [get]
func ApiListWatchlist(svc Watchlists) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q WatchlistByEmailQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.ListByEmail(c.Request.Context(), q.Email)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      One-click unsubscribe
// @Description  Target of the link in alert emails.
// @Tags         Watchlist
// @Produce      json
// @Param        token  query  string  true  "Signed unsubscribe token"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/watchlist/unsubscribe [get]
func ApiUnsubscribeLink(svc Watchlists) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q UnsubscribeLinkQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svc.UnsubscribeByToken(c.Request.Context(), q.Token); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]bool{"success": true}))
	}
}

func RegisterWatchlistRoutes(r gin.IRouter, svc Watchlists) {
	r.POST("/watchlist", ApiSubscribe(svc))
	r.DELETE("/watchlist", ApiUnsubscribe(svc))
	r.GET("/watchlist", ApiListWatchlist(svc))
	r.GET("/watchlist/status", ApiWatchStatus(svc))
	r.GET("/watchlist/unsubscribe", ApiUnsubscribeLink(svc))
}
