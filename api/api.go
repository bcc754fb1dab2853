package api

import (
	"fmt"
	"time"

	"levsim/internal/app"
	"levsim/internal/recorder"
	"levsim/internal/repository"
	"levsim/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	DispatchService   *service.DispatchService
	RequestService    app.RequestService
	ReserveRepository repository.ReserveRepository
	Recorder          recorder.Recorder
	Logger            *zap.SugaredLogger
}

func (m ApiHandler) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to levsim"})
	})
	router.POST("/simulate", m.simulate)
	router.GET("/simulate/ws", m.simulateStream)
	router.GET("/markets", m.listMarkets)
	router.GET("/markets/:market/reserves", m.listReserves)
	router.GET("/simulations/:hash/snapshots.csv", m.exportSnapshots)
	router.DELETE("/simulations/:hash", m.evictSimulation)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.Router().Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, 500)
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	zap.S().Error(err.Error())
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m ApiHandler) logRequestMiddleware(ctx *gin.Context) {
	requestID := uuid.New()
	ctx.Set("requestID", requestID.String())

	start := time.Now().UTC()
	ctx.Next()

	m.Logger.Infow("request handled",
		"requestID", requestID,
		"method", ctx.Request.Method,
		"route", ctx.Request.URL.Path,
		"status", ctx.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
	)
}
