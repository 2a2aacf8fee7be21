package exports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"linguadesk_go/apperrors"
	"linguadesk_go/database"
	"linguadesk_go/models"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Format selects the output encoding of an export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// File is a finished export ready to stream to the client.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Service renders roster and ledger data as downloadable CSV or XLSX files.
type Service struct{}

func NewService() *Service { return &Service{} }

// Students exports the full student roster including archived students.
func (s *Service) Students(format Format) (*File, error) {
	var students []models.Student
	if err := database.DB.Unscoped().Order("id ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	header := []string{"ID", "Name", "Phone", "WhatsApp", "Status", "Enrollment Date", "Entrance Fee Paid", "Archived"}
	rows := make([][]string, 0, len(students))
	for _, st := range students {
		enrolled := ""
		if st.EnrollmentDate != nil {
			enrolled = st.EnrollmentDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(st.ID), 10),
			st.Name,
			st.Phone,
			st.Whatsapp,
			st.Status,
			enrolled,
			strconv.FormatBool(st.EntranceFeePaid),
			strconv.FormatBool(st.DeletedAt.Valid),
		})
	}

	return render("students", format, header, rows)
}

// Payments exports the payment ledger for one month, or everything when
// year is zero.
func (s *Service) Payments(format Format, year int, month time.Month) (*File, error) {
	q := database.DB.Model(&models.Payment{}).Preload("Student").Order("payment_date ASC")
	name := "payments"
	if year != 0 {
		start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
		end := start.AddDate(0, 1, 0)
		q = q.Where("payment_date >= ? AND payment_date < ?", start, end)
		name = fmt.Sprintf("payments_%04d-%02d", year, month)
	}

	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}

	header := []string{"Receipt No", "Date", "Student", "Type", "Original Amount", "Discount", "Amount", "Sessions"}
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []string{
			p.ReceiptNo,
			p.PaymentDate.Format("2006-01-02"),
			p.Student.Name,
			p.PaymentType,
			strconv.FormatFloat(p.OriginalAmount, 'f', 2, 64),
			strconv.FormatFloat(p.DiscountApplied, 'f', 2, 64),
			strconv.FormatFloat(p.Amount, 'f', 2, 64),
			strconv.Itoa(p.SessionsPurchased),
		})
	}

	return render(name, format, header, rows)
}

// GroupAttendance exports the attendance sheet of one group.
func (s *Service) GroupAttendance(format Format, groupID uint) (*File, error) {
	var group models.Group
	if err := database.DB.First(&group, groupID).Error; err != nil {
		return nil, apperrors.NewNotFound("group")
	}

	var records []models.Attendance
	if err := database.DB.Where("group_id = ?", groupID).
		Preload("Student").Order("session_date ASC, student_id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	header := []string{"Date", "Student", "Status", "Reason", "Edited"}
	rows := make([][]string, 0, len(records))
	for _, a := range records {
		edited := ""
		if a.EditedAt != nil {
			edited = a.EditedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			a.SessionDate.Format("2006-01-02"),
			a.Student.Name,
			a.Status,
			a.Reason,
			edited,
		})
	}

	return render(fmt.Sprintf("attendance_group_%d", groupID), format, header, rows)
}

func render(name string, format Format, header []string, rows [][]string) (*File, error) {
	suffix := uuid.New().String()[:8]
	switch format {
	case FormatCSV:
		data, err := renderCSV(header, rows)
		if err != nil {
			return nil, err
		}
		return &File{
			Name:        fmt.Sprintf("%s_%s.csv", name, suffix),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case FormatXLSX:
		data, err := renderXLSX(header, rows)
		if err != nil {
			return nil, err
		}
		return &File{
			Name:        fmt.Sprintf("%s_%s.xlsx", name, suffix),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		return nil, apperrors.NewValidation("export format must be csv or xlsx")
	}
}

func renderCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	for r, row := range rows {
		for i, v := range row {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
