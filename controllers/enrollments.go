package controllers

import (
	"linguadesk_go/services/enrollments"

	"github.com/gofiber/fiber/v2"
)

type EnrollmentController struct {
	enrollments *enrollments.Service
}

func NewEnrollmentController() *EnrollmentController {
	return &EnrollmentController{enrollments: enrollments.NewService()}
}

// Enroll adds a student to a group
func (ec *EnrollmentController) Enroll(c *fiber.Ctx) error {
	var req struct {
		StudentID       uint `json:"student_id"`
		GroupID         uint `json:"group_id"`
		InitialSessions int  `json:"initial_sessions"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	enrollment, err := ec.enrollments.Enroll(req.StudentID, req.GroupID, req.InitialSessions)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Student enrolled successfully",
		"enrollment": enrollment,
	})
}

// Unenroll deactivates a student's enrollment in a group
func (ec *EnrollmentController) Unenroll(c *fiber.Ctx) error {
	var req struct {
		StudentID uint `json:"student_id"`
		GroupID   uint `json:"group_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ec.enrollments.Unenroll(req.StudentID, req.GroupID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Student unenrolled successfully"})
}

// Move transfers a student between groups carrying the session balance
func (ec *EnrollmentController) Move(c *fiber.Ctx) error {
	var req struct {
		StudentID   uint `json:"student_id"`
		FromGroupID uint `json:"from_group_id"`
		ToGroupID   uint `json:"to_group_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	enrollment, err := ec.enrollments.Move(req.StudentID, req.FromGroupID, req.ToGroupID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Student moved successfully",
		"enrollment": enrollment,
	})
}
