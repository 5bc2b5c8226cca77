package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/steamwatch/pkg/response"
)

type SearchGamesQuery struct {
	Q     string `form:"q" binding:"required"`
	Limit int    `form:"limit"`
}

type PopularGamesQuery struct {
	Limit       int    `form:"limit"`
	CountryCode string `form:"country_code"`
}

type GetGameQuery struct {
	Sync        bool   `form:"sync"`
	CountryCode string `form:"country_code"`
}

type HistoryQuery struct {
	Limit int `form:"limit"`
}

func appIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("appId"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid app id")
		return 0, false
	}
	return id, true
}

// @Summary      Search games
// @Description  Case-insensitive name search over stored games, ranked by match quality.
// @Tags         Games
// @Produce      json
// @Param        q      query  string  true   "Search text"
// @Param        limit  query  int     false  "1-50, default 20"
// @Success      200  {object}  handlers.RespSearchGames
// @Router       /api/v1/games/search [get]
func ApiSearchGames(svc GameCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q SearchGamesQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.Search(c.Request.Context(), q.Q, q.Limit)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Popular games on sale
// @Description  Discounted featured games, optionally priced for a region.
// @Tags         Games
// @Produce      json
// @Param        limit         query  int     false  "1-100, default 50"
// @Param        country_code  query  string  false  "Store country code, default us"
// @Success      200  {object}  handlers.RespPopularGames
// @Router       /api/v1/games/popular [get]
func ApiPopularGames(svc GameCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q PopularGamesQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.ListPopularOnSale(c.Request.Context(), q.Limit, q.CountryCode)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Get game by app id
// @Description  Returns the game with its newest 100 snapshots. Unknown games, or sync=true, are fetched from the store first.
// @Tags         Games
// @Produce      json
// @Param        appId         path   int     true   "Store app id"
// @Param        sync          query  bool    false  "Force a refresh from the store"
// @Param        country_code  query  string  false  "Store country code, default us"
// @Success      200  {object}  handlers.RespGameDetail
// @Router       /api/v1/games/{appId} [get]
func ApiGetGame(svc GameCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		appID, ok := appIDParam(c)
		if !ok {
			return
		}
		var q GetGameQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.GetByAppID(c.Request.Context(), appID, q.Sync, q.CountryCode)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Sync game
// @Description  Refreshes a game from the store and records today's price if missing.
// @Tags         Games
// @Produce      json
// @Param        appId  path  int  true  "Store app id"
// @Success      200  {object}  handlers.RespSyncGame
// @Router       /api/v1/games/{appId}/sync [post]
func ApiSyncGame(svc GameCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		appID, ok := appIDParam(c)
		if !ok {
			return
		}
		res, err := svc.SyncGame(c.Request.Context(), appID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Price history
// @Tags         Games
// @Produce      json
// @Param        gameId  path   string  true   "Game id"
// @Param        limit   query  int     false  "1-500, default 100"
// @Success      200  {object}  handlers.RespPriceHistory
// @Router       /api/v1/games/id/{gameId}/history [get]
func ApiPriceHistory(svc GameCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q HistoryQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.GetPriceHistory(c.Request.Context(), c.Param("gameId"), q.Limit)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Price statistics
// @Description  Lowest, highest and average recorded price of a game.
// @Tags         Games
// @Produce      json
// @Param        gameId  path  string  true  "Game id"
// @Success      200  {object}  handlers.RespPriceStats
// @Router       /api/v1/games/id/{gameId}/stats [get]
func ApiPriceStats(svc PriceStatistics) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.GetPriceStats(c.Request.Context(), c.Param("gameId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterGameRoutes(r gin.IRouter, svc GameCatalog, stats PriceStatistics) {
	r.GET("/games/search", ApiSearchGames(svc))
	r.GET("/games/popular", ApiPopularGames(svc))
	r.GET("/games/:appId", ApiGetGame(svc))
	r.POST("/games/:appId/sync", ApiSyncGame(svc))
	r.GET("/games/id/:gameId/history", ApiPriceHistory(svc))
	r.GET("/games/id/:gameId/stats", ApiPriceStats(stats))
}
