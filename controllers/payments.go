package controllers

import (
	"strconv"
	"time"

	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/discounts"
	"linguadesk_go/services/payments"

	"github.com/gofiber/fiber/v2"
)

type PaymentController struct {
	payments  *payments.Service
	discounts *discounts.Service
}

func NewPaymentController() *PaymentController {
	return &PaymentController{
		payments:  payments.NewService(),
		discounts: discounts.NewService(),
	}
}

// GetPayments returns payments, optionally filtered by student or month
func (pc *PaymentController) GetPayments(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 20
	}

	query := database.DB.Model(&models.Payment{}).Preload("Student").Preload("Group")
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if month := c.Query("month"); month != "" {
		start, err := time.ParseInLocation("2006-01", month, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid month, expected YYYY-MM",
			})
		}
		query = query.Where("payment_date >= ? AND payment_date < ?", start, start.AddDate(0, 1, 0))
	}

	var total int64
	query.Count(&total)

	var list []models.Payment
	if err := query.Order("payment_date DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&list).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payments",
		})
	}

	return c.JSON(fiber.Map{
		"payments": list,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// QuoteDiscount previews the discounted amount for a student without
// recording anything.
func (pc *PaymentController) QuoteDiscount(c *fiber.Ctx) error {
	var req struct {
		StudentID      uint    `json:"student_id"`
		OriginalAmount float64 `json:"original_amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	active, err := pc.discounts.ActiveForStudent(req.StudentID)
	if err != nil {
		return serviceError(c, err)
	}

	result := discounts.Calculate(req.OriginalAmount, active)
	return c.JSON(fiber.Map{"quote": result})
}

// CreatePayment records a new payment. When apply_discounts is set the
// active discounts are applied server-side to the original amount.
func (pc *PaymentController) CreatePayment(c *fiber.Ctx) error {
	var req struct {
		payments.RecordPaymentInput
		ApplyDiscounts bool `json:"apply_discounts"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	in := req.RecordPaymentInput
	if req.ApplyDiscounts {
		active, err := pc.discounts.ActiveForStudent(in.StudentID)
		if err != nil {
			return serviceError(c, err)
		}
		result := discounts.Calculate(in.OriginalAmount, active)
		in.Amount = result.FinalAmount
		in.DiscountApplied = result.DiscountAmount
	}

	payment, err := pc.payments.Record(in)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"payment": payment,
	})
}

// UpdatePayment corrects an existing payment
func (pc *PaymentController) UpdatePayment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var in payments.UpdatePaymentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	payment, err := pc.payments.Update(id, in)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Payment updated successfully",
		"payment": payment,
	})
}

// DeletePayment removes a payment, reversing its session effect
func (pc *PaymentController) DeletePayment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := pc.payments.Delete(id); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Payment deleted successfully"})
}

// GetMonthlySummary returns the financial summary for one calendar month
func (pc *PaymentController) GetMonthlySummary(c *fiber.Ctx) error {
	now := time.Now()
	year, _ := strconv.Atoi(c.Query("year", strconv.Itoa(now.Year())))
	monthNum, _ := strconv.Atoi(c.Query("month", strconv.Itoa(int(now.Month()))))
	if monthNum < 1 || monthNum > 12 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid month",
		})
	}

	summary, err := pc.payments.SummaryForMonth(year, time.Month(monthNum))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"year":    year,
		"month":   monthNum,
		"summary": summary,
	})
}
