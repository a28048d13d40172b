package controllers

import (
	"context"
	"time"

	"shulebook_go/database"

	"github.com/gofiber/fiber/v2"
)

type HealthController struct{}

// GetHealthStatus reports database and Redis connectivity. Redis being down
// degrades the report but does not fail it; the ledger works without it.
func (hc *HealthController) GetHealthStatus(c *fiber.Ctx) error {
	status := "ok"
	checks := fiber.Map{}

	dbStatus := "ok"
	if db := database.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			dbStatus = "down"
			status = "down"
		}
	} else {
		dbStatus = "down"
		status = "down"
	}
	checks["database"] = dbStatus

	redisStatus := "ok"
	if rc := database.GetRedisClient(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
			if status == "ok" {
				status = "degraded"
			}
		}
	} else {
		redisStatus = "disabled"
		if status == "ok" {
			status = "degraded"
		}
	}
	checks["redis"] = redisStatus

	code := fiber.StatusOK
	if status == "down" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC(),
	})
}
