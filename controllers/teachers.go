package controllers

import (
	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/activity"
	"linguadesk_go/services/notify"
	"linguadesk_go/utils"

	"github.com/gofiber/fiber/v2"
)

type TeacherController struct{}

// GetTeachers returns all teachers
func (tc *TeacherController) GetTeachers(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Teacher{})
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var teachers []models.Teacher
	if err := query.Order("name ASC").Find(&teachers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch teachers",
		})
	}

	return c.JSON(fiber.Map{"teachers": teachers})
}

// GetTeacher returns a specific teacher by ID
func (tc *TeacherController) GetTeacher(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Teacher not found",
		})
	}

	return c.JSON(fiber.Map{"teacher": teacher})
}

// CreateTeacher creates a new teacher
func (tc *TeacherController) CreateTeacher(c *fiber.Ctx) error {
	var teacher models.Teacher
	if err := c.BodyParser(&teacher); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	teacher.Name = utils.SanitizeString(teacher.Name)
	if teacher.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}
	teacher.IsActive = true

	if err := database.DB.Create(&teacher).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create teacher",
		})
	}

	activity.Append("Teacher created", "teacher", &teacher.ID, nil, teacher)
	notify.EntityChanged("teachers")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Teacher created successfully",
		"teacher": teacher,
	})
}

// UpdateTeacher updates an existing teacher
func (tc *TeacherController) UpdateTeacher(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Teacher not found",
		})
	}
	old := teacher

	var req struct {
		Name     *string `json:"name"`
		Phone    *string `json:"phone"`
		Email    *string `json:"email"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = utils.SanitizeString(*req.Name)
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if len(fields) > 0 {
		if err := database.DB.Model(&teacher).Updates(fields).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update teacher",
			})
		}
		database.DB.First(&teacher, id)
	}

	activity.Append("Teacher updated", "teacher", &teacher.ID, old, teacher)
	notify.EntityChanged("teachers")

	return c.JSON(fiber.Map{
		"message": "Teacher updated successfully",
		"teacher": teacher,
	})
}

// DeleteTeacher soft-deletes a teacher. Groups keep their teacher reference.
func (tc *TeacherController) DeleteTeacher(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Teacher not found",
		})
	}

	if err := database.DB.Delete(&teacher).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete teacher",
		})
	}

	activity.Append("Teacher deleted", "teacher", &id, teacher, nil)
	notify.EntityChanged("teachers")

	return c.JSON(fiber.Map{"message": "Teacher deleted successfully"})
}
