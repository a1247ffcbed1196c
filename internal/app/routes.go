package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/casedesk/internal/catalog"
	"github.com/simp-lee/casedesk/internal/pkg"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	// Public modules are served without authentication.
	Public []Module
	// Records are the record-type modules, guarded by Auth when it is set.
	Records []Module
	Auth    gin.HandlerFunc
	DB      *gorm.DB
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Records) == 0 {
		return errors.New("at least one record module is required")
	}

	r.GET("/health", healthHandler(deps.DB))

	api := r.Group(catalog.APIPrefix)
	for i, m := range deps.Public {
		if m == nil {
			return fmt.Errorf("public module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	records := api.Group("")
	if deps.Auth != nil {
		records.Use(deps.Auth)
	}
	for i, m := range deps.Records {
		if m == nil {
			return fmt.Errorf("record module at index %d is nil", i)
		}
		m.RegisterRoutes(records)
	}

	r.NoRoute(noRouteHandler())

	return nil
}

// healthHandler returns a handler that pings the database and reports status.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := "ok"
		code := http.StatusOK

		if err := pingDB(c.Request.Context(), db); err != nil {
			dbStatus = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// noRouteHandler answers unknown paths with the JSON envelope.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, pkg.Response{Code: http.StatusNotFound, Message: "not found"})
	}
}
