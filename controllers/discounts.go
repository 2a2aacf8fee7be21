package controllers

import (
	"linguadesk_go/services/discounts"

	"github.com/gofiber/fiber/v2"
)

type DiscountController struct {
	discounts *discounts.Service
}

func NewDiscountController() *DiscountController {
	return &DiscountController{discounts: discounts.NewService()}
}

// GetStudentDiscounts lists a student's active discounts
func (dc *DiscountController) GetStudentDiscounts(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "student_id")
	if err != nil {
		return err
	}

	list, err := dc.discounts.ActiveForStudent(studentID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"discounts": list})
}

// AddDiscount attaches a discount to a student
func (dc *DiscountController) AddDiscount(c *fiber.Ctx) error {
	var in discounts.AddDiscountInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	discount, err := dc.discounts.Add(in)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Discount added successfully",
		"discount": discount,
	})
}

// RemoveDiscount deactivates a discount
func (dc *DiscountController) RemoveDiscount(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := dc.discounts.Remove(id); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Discount removed successfully"})
}
