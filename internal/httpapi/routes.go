// Package httpapi exposes the tracker over a JSON HTTP API.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abcdabansu666/TimeSheet/internal/syncer"
	"github.com/Abcdabansu666/TimeSheet/internal/tracker"
)

// SyncStatus reports the state of the background write queue.
type SyncStatus interface {
	Status() syncer.Status
}

// Register mounts every route under /api. sync may be nil when no queue is
// running.
func Register(router *gin.Engine, t *tracker.Tracker, sync SyncStatus, allowedOrigins []string) {
	router.Use(corsMiddleware(allowedOrigins))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	entryHandler := NewEntryHandler(t)
	sessionHandler := NewSessionHandler(t)
	reportHandler := NewReportHandler(t)
	importHandler := NewImportHandler(t)
	registryHandler := NewRegistryHandler(t)

	api := router.Group("/api")
	{
		api.GET("/entries", entryHandler.List)
		api.GET("/entries/:id", entryHandler.Get)
		api.POST("/entries", entryHandler.Create)
		api.PUT("/entries/:id", entryHandler.Update)
		api.DELETE("/entries/:id", entryHandler.Delete)

		api.GET("/sessions", sessionHandler.List)
		api.POST("/sessions/clock-in", sessionHandler.ClockIn)
		api.POST("/sessions/clock-out", sessionHandler.ClockOut)

		api.GET("/report", reportHandler.Get)
		api.POST("/report/approve", reportHandler.Approve)

		api.POST("/import/preview", importHandler.Preview)
		api.POST("/import/confirm", importHandler.Confirm)

		api.GET("/people", registryHandler.People)
		api.POST("/people", registryHandler.AddPerson)
		api.GET("/jobs", registryHandler.Jobs)
		api.POST("/jobs", registryHandler.AddJob)

		api.GET("/sync", func(c *gin.Context) {
			if sync == nil {
				c.JSON(http.StatusOK, syncer.Status{})
				return
			}
			c.JSON(http.StatusOK, sync.Status())
		})
	}
}

// NewRouter returns a router with recovery, request logging and every route
// registered.
func NewRouter(t *tracker.Tracker, sync SyncStatus, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	Register(router, t, sync, allowedOrigins)
	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowedOrigin := range origins {
				if origin == allowedOrigin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					c.Writer.Header().Set("Vary", "Origin")
					break
				}
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
