package controllers

import (
	"strconv"

	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services"

	"github.com/gofiber/fiber/v2"
)

type LogController struct {
	archive *services.LogArchiveService
}

func NewLogController(archive *services.LogArchiveService) *LogController {
	return &LogController{archive: archive}
}

// GetLogs returns the activity log, newest first
func (lc *LogController) GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}

	query := database.DB.Model(&models.ActivityLog{})
	if entityType := c.Query("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID := c.Query("entity_id"); entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}

	var total int64
	query.Count(&total)

	var logs []models.ActivityLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch logs",
		})
	}

	return c.JSON(fiber.Map{
		"logs": logs,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// FlushCachedLogs drains the Redis queue into the database on demand
func (lc *LogController) FlushCachedLogs(c *fiber.Ctx) error {
	if err := lc.archive.FlushQueuedLogs(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Queued logs flushed to database"})
}

// ArchiveOldLogs triggers an archive run on demand
func (lc *LogController) ArchiveOldLogs(c *fiber.Ctx) error {
	if err := lc.archive.ArchiveOldLogs(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Archive run completed"})
}

// GetArchives lists past archive runs
func (lc *LogController) GetArchives(c *fiber.Ctx) error {
	var archives []models.LogArchive
	if err := database.DB.Order("created_at DESC").Find(&archives).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch archives",
		})
	}
	return c.JSON(fiber.Map{"archives": archives})
}
