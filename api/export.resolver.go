package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
)

// exportSnapshots streams a cached simulation's daily snapshots as CSV.
func (m ApiHandler) exportSnapshots(c *gin.Context) {
	hash := c.Param("hash")

	result, ok := m.DispatchService.Cached(hash)
	if !ok {
		returnErrorJsonCode(fmt.Errorf("no cached simulation for key %s", hash), c, 404)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-snapshots.csv", hash[:12]))
	snapshots := result.Snapshots
	if err := gocsv.Marshal(&snapshots, c.Writer); err != nil {
		returnErrorJson(fmt.Errorf("failed to write csv: %w", err), c)
	}
}

// evictSimulation removes a completed result from the cache. Results are
// never evicted automatically, so this is the only way to drop one.
func (m ApiHandler) evictSimulation(c *gin.Context) {
	hash := c.Param("hash")
	m.DispatchService.Evict(hash)
	c.Status(204)
}
