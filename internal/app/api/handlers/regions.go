package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/steamwatch/pkg/currency"
	"github.com/fatflowers/steamwatch/pkg/response"
)

// @Summary      Selectable regions
// @Description  Storefront regions a client can price the popular list in.
// @Tags         System
// @Produce      json
// @Success      200  {object}  handlers.RespRegions
// @Router       /api/v1/regions [get]
func ApiRegions(c *gin.Context) {
	c.JSON(http.StatusOK, response.OKT(currency.Selectable()))
}

func RegisterRegionRoutes(r gin.IRouter) {
	r.GET("/regions", ApiRegions)
}
