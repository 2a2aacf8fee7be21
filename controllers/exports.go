package controllers

import (
	"strconv"
	"time"

	"linguadesk_go/services/exports"

	"github.com/gofiber/fiber/v2"
)

type ExportController struct {
	exports *exports.Service
}

func NewExportController() *ExportController {
	return &ExportController{exports: exports.NewService()}
}

func exportFormat(c *fiber.Ctx) exports.Format {
	return exports.Format(c.Query("format", "csv"))
}

func sendExport(c *fiber.Ctx, file *exports.File) error {
	c.Set("Content-Type", file.ContentType)
	c.Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	return c.Send(file.Data)
}

// ExportStudents downloads the student roster as CSV or XLSX
func (ec *ExportController) ExportStudents(c *fiber.Ctx) error {
	file, err := ec.exports.Students(exportFormat(c))
	if err != nil {
		return serviceError(c, err)
	}
	return sendExport(c, file)
}

// ExportPayments downloads the payment ledger, optionally for one month
func (ec *ExportController) ExportPayments(c *fiber.Ctx) error {
	var year int
	var month time.Month
	if m := c.Query("month"); m != "" {
		start, err := time.ParseInLocation("2006-01", m, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid month, expected YYYY-MM",
			})
		}
		year, month = start.Year(), start.Month()
	}

	file, err := ec.exports.Payments(exportFormat(c), year, month)
	if err != nil {
		return serviceError(c, err)
	}
	return sendExport(c, file)
}

// ExportGroupAttendance downloads one group's attendance sheet
func (ec *ExportController) ExportGroupAttendance(c *fiber.Ctx) error {
	groupID, err := strconv.ParseUint(c.Params("group_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group_id",
		})
	}

	file, err := ec.exports.GroupAttendance(exportFormat(c), uint(groupID))
	if err != nil {
		return serviceError(c, err)
	}
	return sendExport(c, file)
}
