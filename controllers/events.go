package controllers

import (
	"time"

	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/activity"
	"linguadesk_go/services/notify"
	"linguadesk_go/utils"

	"github.com/gofiber/fiber/v2"
)

type EventController struct{}

var validEventTypes = map[string]bool{
	"holiday":     true,
	"extra_class": true,
	"rescheduled": true,
	"workshop":    true,
	"exam":        true,
	"open_day":    true,
}

// GetEvents returns calendar events, optionally for one month
func (ec *EventController) GetEvents(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Event{}).Preload("Group")
	if month := c.Query("month"); month != "" {
		start, err := time.ParseInLocation("2006-01", month, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid month, expected YYYY-MM",
			})
		}
		query = query.Where("event_date >= ? AND event_date < ?", start, start.AddDate(0, 1, 0))
	}
	if groupID := c.Query("group_id"); groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}

	var events []models.Event
	if err := query.Order("event_date ASC").Find(&events).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch events",
		})
	}

	return c.JSON(fiber.Map{"events": events})
}

// CreateEvent creates a new calendar event
func (ec *EventController) CreateEvent(c *fiber.Ctx) error {
	var event models.Event
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	event.Title = utils.SanitizeString(event.Title)
	if event.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}
	if !validEventTypes[event.EventType] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event type",
		})
	}
	if event.EventDate.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Event date is required",
		})
	}
	if event.GroupID != nil {
		var group models.Group
		if err := database.DB.First(&group, *event.GroupID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Group not found",
			})
		}
	}

	if err := database.DB.Create(&event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create event",
		})
	}

	activity.Append("Event created", "event", &event.ID, nil, event)
	notify.EntityChanged("events")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Event created successfully",
		"event":   event,
	})
}

// UpdateEvent updates an existing event
func (ec *EventController) UpdateEvent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var event models.Event
	if err := database.DB.First(&event, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}
	old := event

	var updates models.Event
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if updates.EventType != "" && !validEventTypes[updates.EventType] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event type",
		})
	}

	fields := map[string]interface{}{}
	if updates.Title != "" {
		fields["title"] = utils.SanitizeString(updates.Title)
	}
	if updates.EventType != "" {
		fields["event_type"] = updates.EventType
	}
	if !updates.EventDate.IsZero() {
		fields["event_date"] = updates.EventDate
	}
	if updates.StartTime != "" {
		fields["start_time"] = updates.StartTime
	}
	if updates.EndTime != "" {
		fields["end_time"] = updates.EndTime
	}
	if updates.Notes != "" {
		fields["notes"] = updates.Notes
	}

	if len(fields) > 0 {
		if err := database.DB.Model(&event).Updates(fields).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update event",
			})
		}
		database.DB.First(&event, id)
	}

	activity.Append("Event updated", "event", &event.ID, old, event)
	notify.EntityChanged("events")

	return c.JSON(fiber.Map{
		"message": "Event updated successfully",
		"event":   event,
	})
}

// DeleteEvent removes an event
func (ec *EventController) DeleteEvent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var event models.Event
	if err := database.DB.First(&event, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	if err := database.DB.Delete(&event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete event",
		})
	}

	activity.Append("Event deleted", "event", &id, event, nil)
	notify.EntityChanged("events")

	return c.JSON(fiber.Map{"message": "Event deleted successfully"})
}
