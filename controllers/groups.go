package controllers

import (
	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/activity"
	"linguadesk_go/services/groups"
	"linguadesk_go/services/notify"
	"linguadesk_go/utils"

	"github.com/gofiber/fiber/v2"
)

type GroupController struct {
	groups *groups.Service
}

func NewGroupController() *GroupController {
	return &GroupController{groups: groups.NewService()}
}

// GetGroups returns all groups with their teacher
func (gc *GroupController) GetGroups(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Group{}).Preload("Teacher")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	if language := c.Query("language"); language != "" {
		query = query.Where("language = ?", language)
	}

	var list []models.Group
	if err := query.Order("name ASC").Find(&list).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch groups",
		})
	}

	return c.JSON(fiber.Map{"groups": list})
}

// GetGroup returns one group with its roster
func (gc *GroupController) GetGroup(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var group models.Group
	if err := database.DB.Preload("Teacher").
		Preload("Enrollments", "is_active = ?", true).
		Preload("Enrollments.Student").
		First(&group, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	return c.JSON(fiber.Map{"group": group})
}

// CreateGroup creates a new group
func (gc *GroupController) CreateGroup(c *fiber.Ctx) error {
	var group models.Group
	if err := c.BodyParser(&group); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	group.Name = utils.SanitizeString(group.Name)
	if group.Name == "" || group.Language == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and language are required",
		})
	}
	if group.SessionsPerCycle <= 0 {
		group.SessionsPerCycle = 8
	}
	group.IsActive = true

	if group.TeacherID != nil {
		var teacher models.Teacher
		if err := database.DB.First(&teacher, *group.TeacherID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Teacher not found",
			})
		}
	}

	if err := database.DB.Create(&group).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create group",
		})
	}

	activity.Append("Group created", "group", &group.ID, nil, group)
	notify.EntityChanged("groups")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Group created successfully",
		"group":   group,
	})
}

// UpdateGroup updates an existing group
func (gc *GroupController) UpdateGroup(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var group models.Group
	if err := database.DB.First(&group, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}
	old := group

	var req struct {
		Name             *string      `json:"name"`
		Language         *string      `json:"language"`
		TeacherID        *uint        `json:"teacher_id"`
		ScheduleDays     *models.JSON `json:"schedule_days"`
		ScheduleTime     *string      `json:"schedule_time"`
		SessionsPerCycle *int         `json:"sessions_per_cycle"`
		SessionFee       *float64     `json:"session_fee"`
		IsPaused         *bool        `json:"is_paused"`
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
	if req.Language != nil {
		fields["language"] = *req.Language
	}
	if req.TeacherID != nil {
		var teacher models.Teacher
		if err := database.DB.First(&teacher, *req.TeacherID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Teacher not found",
			})
		}
		fields["teacher_id"] = *req.TeacherID
	}
	if req.ScheduleDays != nil {
		fields["schedule_days"] = *req.ScheduleDays
	}
	if req.ScheduleTime != nil {
		fields["schedule_time"] = *req.ScheduleTime
	}
	if req.SessionsPerCycle != nil && *req.SessionsPerCycle > 0 {
		fields["sessions_per_cycle"] = *req.SessionsPerCycle
	}
	if req.SessionFee != nil {
		fields["session_fee"] = *req.SessionFee
	}
	if req.IsPaused != nil {
		fields["is_paused"] = *req.IsPaused
	}

	if len(fields) > 0 {
		if err := database.DB.Model(&group).Updates(fields).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update group",
			})
		}
		database.DB.First(&group, id)
	}

	activity.Append("Group updated", "group", &group.ID, old, group)
	notify.EntityChanged("groups")

	return c.JSON(fiber.Map{
		"message": "Group updated successfully",
		"group":   group,
	})
}

// DeactivateGroup flips the group inactive and deactivates its enrollments
func (gc *GroupController) DeactivateGroup(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := gc.groups.Deactivate(id); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Group deactivated successfully"})
}

// DeleteGroup permanently removes a group, its enrollments and its attendance
func (gc *GroupController) DeleteGroup(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := gc.groups.HardDelete(id); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Group deleted permanently"})
}
