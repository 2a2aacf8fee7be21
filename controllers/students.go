package controllers

import (
	"strconv"

	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/activity"
	"linguadesk_go/services/metrics"
	"linguadesk_go/services/notify"
	"linguadesk_go/utils"

	"github.com/gofiber/fiber/v2"
)

type StudentController struct {
	metrics *metrics.Service
}

func NewStudentController() *StudentController {
	return &StudentController{metrics: metrics.NewService()}
}

// GetStudents returns students with pagination. Archived students are
// excluded unless include_archived=true.
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Student{})
	if c.Query("include_archived") == "true" {
		query = query.Unscoped()
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var students []models.Student
	if err := query.Preload("Enrollments").Preload("Enrollments.Group").
		Order("name ASC").Offset(offset).Limit(limit).Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch students",
		})
	}

	return c.JSON(fiber.Map{
		"students": students,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetStudent returns a specific student by ID
func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var student models.Student
	if err := database.DB.Preload("Enrollments").Preload("Enrollments.Group").
		Preload("Discounts", "is_active = ?", true).
		First(&student, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	return c.JSON(fiber.Map{"student": student})
}

// GetStudentMetrics returns the derived figures for one student
func (sc *StudentController) GetStudentMetrics(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	m, err := sc.metrics.ForStudent(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"metrics": m})
}

// CreateStudent creates a new student
func (sc *StudentController) CreateStudent(c *fiber.Ctx) error {
	var student models.Student
	if err := c.BodyParser(&student); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	student.Name = utils.SanitizeString(student.Name)
	if student.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}
	if student.Status == "" {
		student.Status = "active"
	}
	if !utils.IsValidStudentStatus(student.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student status",
		})
	}

	if err := database.DB.Create(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create student",
		})
	}

	activity.Append("Student created", "student", &student.ID, nil, student)
	notify.EntityChanged("students")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Student created successfully",
		"student": student,
	})
}

// UpdateStudent updates an existing student
func (sc *StudentController) UpdateStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var student models.Student
	if err := database.DB.First(&student, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}
	old := student

	var updates models.Student
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if updates.Status != "" && !utils.IsValidStudentStatus(updates.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student status",
		})
	}

	fields := map[string]interface{}{
		"name":     utils.SanitizeString(firstNonEmpty(updates.Name, student.Name)),
		"phone":    firstNonEmpty(updates.Phone, student.Phone),
		"whatsapp": firstNonEmpty(updates.Whatsapp, student.Whatsapp),
		"status":   firstNonEmpty(updates.Status, student.Status),
		"notes":    firstNonEmpty(updates.Notes, student.Notes),
	}
	if updates.EntranceFeeAmount > 0 {
		fields["entrance_fee_amount"] = updates.EntranceFeeAmount
	}
	if updates.EnrollmentDate != nil {
		fields["enrollment_date"] = updates.EnrollmentDate
	}
	if err := database.DB.Model(&student).Updates(fields).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update student",
		})
	}

	database.DB.First(&student, id)

	activity.Append("Student updated", "student", &student.ID, old, student)
	notify.EntityChanged("students")

	return c.JSON(fiber.Map{
		"message": "Student updated successfully",
		"student": student,
	})
}

// ArchiveStudent soft-deletes a student. History (payments, attendance,
// enrollments) is preserved; the student disappears from default listings.
func (sc *StudentController) ArchiveStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var student models.Student
	if err := database.DB.First(&student, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	if err := database.DB.Delete(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to archive student",
		})
	}

	activity.Append("Student archived", "student", &id, student, nil)
	notify.EntityChanged("students")

	return c.JSON(fiber.Map{"message": "Student archived successfully"})
}

// RestoreStudent clears the soft delete on an archived student
func (sc *StudentController) RestoreStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var student models.Student
	if err := database.DB.Unscoped().First(&student, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}
	if !student.DeletedAt.Valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Student is not archived",
		})
	}

	if err := database.DB.Unscoped().Model(&student).
		Update("deleted_at", nil).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to restore student",
		})
	}

	activity.Append("Student restored", "student", &id, nil, student)
	notify.EntityChanged("students")

	return c.JSON(fiber.Map{"message": "Student restored successfully"})
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
