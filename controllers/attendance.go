package controllers

import (
	"time"

	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/attendance"

	"github.com/gofiber/fiber/v2"
)

type AttendanceController struct {
	attendance *attendance.Service
}

func NewAttendanceController() *AttendanceController {
	return &AttendanceController{attendance: attendance.NewService()}
}

// GetGroupAttendance returns the attendance sheet of a group, optionally for
// one date.
func (ac *AttendanceController) GetGroupAttendance(c *fiber.Ctx) error {
	groupID, err := parseIDParam(c, "group_id")
	if err != nil {
		return err
	}

	query := database.DB.Model(&models.Attendance{}).
		Where("group_id = ?", groupID).Preload("Student")
	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid date, expected YYYY-MM-DD",
			})
		}
		query = query.Where("session_date = ?", day)
	}

	var records []models.Attendance
	if err := query.Order("session_date DESC, student_id ASC").Find(&records).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch attendance",
		})
	}

	return c.JSON(fiber.Map{"attendance": records})
}

// RecordAttendance upserts one attendance record
func (ac *AttendanceController) RecordAttendance(c *fiber.Ctx) error {
	var req struct {
		StudentID   uint   `json:"student_id"`
		GroupID     uint   `json:"group_id"`
		SessionDate string `json:"session_date"`
		Status      string `json:"status"`
		Reason      string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	day, err := parseSessionDate(req.SessionDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session_date, expected YYYY-MM-DD",
		})
	}

	record, err := ac.attendance.Record(attendance.RecordInput{
		StudentID:   req.StudentID,
		GroupID:     req.GroupID,
		SessionDate: day,
		Status:      req.Status,
		Reason:      req.Reason,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Attendance recorded successfully",
		"attendance": record,
	})
}

// EditAttendance corrects an existing record; an edit reason is mandatory
func (ac *AttendanceController) EditAttendance(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status     string `json:"status"`
		Reason     string `json:"reason"`
		EditReason string `json:"edit_reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	record, err := ac.attendance.Edit(id, req.Status, req.Reason, req.EditReason)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Attendance updated successfully",
		"attendance": record,
	})
}

// MarkAllAttendance records one status for every active student of a group
func (ac *AttendanceController) MarkAllAttendance(c *fiber.Ctx) error {
	var req struct {
		GroupID     uint   `json:"group_id"`
		SessionDate string `json:"session_date"`
		Status      string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	day, err := parseSessionDate(req.SessionDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session_date, expected YYYY-MM-DD",
		})
	}

	result, err := ac.attendance.MarkAll(req.GroupID, day, req.Status)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Bulk attendance completed",
		"result":  result,
	})
}

func parseSessionDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}
