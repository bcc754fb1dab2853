package api

import (
	"fmt"

	"levsim/internal/domain"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) listMarkets(c *gin.Context) {
	c.JSON(200, gin.H{
		"markets": domain.ListMarkets(),
	})
}

func (m ApiHandler) listReserves(c *gin.Context) {
	marketKey := c.Param("market")
	if _, ok := domain.V3Markets[marketKey]; !ok {
		returnErrorJsonCode(fmt.Errorf("unknown market %q", marketKey), c, 404)
		return
	}

	reserves, err := m.ReserveRepository.Get(c.Request.Context(), marketKey)
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to load reserves: %w", err), c)
		return
	}

	c.JSON(200, gin.H{
		"market":   marketKey,
		"reserves": reserves,
	})
}
