package controllers

import (
	"time"

	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/metrics"

	"github.com/gofiber/fiber/v2"
)

type DashboardController struct {
	metrics *metrics.Service
}

func NewDashboardController() *DashboardController {
	return &DashboardController{metrics: metrics.NewService()}
}

// GetAlerts returns the dashboard alert counts computed as of now
func (dc *DashboardController) GetAlerts(c *fiber.Ctx) error {
	counts, err := dc.metrics.Alerts(time.Now())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"alerts": counts})
}

// GetOverview returns headline counts for the dashboard
func (dc *DashboardController) GetOverview(c *fiber.Ctx) error {
	var activeStudents, activeGroups, activeTeachers int64
	database.DB.Model(&models.Student{}).Where("status = ?", "active").Count(&activeStudents)
	database.DB.Model(&models.Group{}).Where("is_active = ?", true).Count(&activeGroups)
	database.DB.Model(&models.Teacher{}).Where("is_active = ?", true).Count(&activeTeachers)

	counts, err := dc.metrics.Alerts(time.Now())
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"active_students": activeStudents,
		"active_groups":   activeGroups,
		"active_teachers": activeTeachers,
		"alerts":          counts,
	})
}
