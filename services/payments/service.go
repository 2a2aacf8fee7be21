package payments

import (
	"time"

	"linguadesk_go/apperrors"
	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/activity"
	"linguadesk_go/services/notify"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service is the payment ledger. Every mutation runs its primary write and
// its enrollment side effects inside one transaction; the activity log entry
// is appended best-effort after commit.
type Service struct{}

func NewService() *Service { return &Service{} }

type RecordPaymentInput struct {
	StudentID         uint    `json:"student_id"`
	GroupID           *uint   `json:"group_id"`
	PaymentType       string  `json:"payment_type"`
	Amount            float64 `json:"amount"`
	OriginalAmount    float64 `json:"original_amount"`
	DiscountApplied   float64 `json:"discount_applied"`
	SessionsPurchased int     `json:"sessions_purchased"`
	Notes             string  `json:"notes"`
}

type UpdatePaymentInput struct {
	GroupID           *uint    `json:"group_id"`
	PaymentType       *string  `json:"payment_type"`
	Amount            *float64 `json:"amount"`
	OriginalAmount    *float64 `json:"original_amount"`
	DiscountApplied   *float64 `json:"discount_applied"`
	SessionsPurchased *int     `json:"sessions_purchased"`
	Notes             *string  `json:"notes"`
}

// FinancialSummary aggregates payments for one calendar month.
type FinancialSummary struct {
	TotalCollected float64 `json:"total_collected"`
	TotalDiscounts float64 `json:"total_discounts"`
	PaymentCount   int     `json:"payment_count"`
}

var validPaymentTypes = map[string]bool{
	"tuition":      true,
	"partial":      true,
	"entrance_fee": true,
	"event":        true,
}

// Record validates and stores a charge, applying enrollment and entrance-fee
// side effects atomically with the payment insert.
func (s *Service) Record(in RecordPaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, apperrors.NewValidation("payment amount must be greater than zero")
	}
	if !validPaymentTypes[in.PaymentType] {
		return nil, apperrors.NewValidation("invalid payment type: " + in.PaymentType)
	}

	var student models.Student
	if err := database.DB.First(&student, in.StudentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("student")
		}
		return nil, err
	}

	// Hard business rule: the entrance fee can never be charged twice.
	// Checked before any write so a rejection leaves no partial state.
	if in.PaymentType == "entrance_fee" && student.EntranceFeePaid {
		return nil, apperrors.NewValidation("student has already paid the entrance fee")
	}

	payment := models.Payment{
		StudentID:         in.StudentID,
		GroupID:           in.GroupID,
		PaymentType:       in.PaymentType,
		Amount:            in.Amount,
		OriginalAmount:    in.OriginalAmount,
		DiscountApplied:   in.DiscountApplied,
		SessionsPurchased: in.SessionsPurchased,
		PaymentDate:       time.Now(),
		ReceiptNo:         uuid.New().String(),
		Notes:             in.Notes,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if in.PaymentType == "tuition" && in.GroupID != nil && in.SessionsPurchased > 0 {
			var enrollment models.StudentGroup
			if err := tx.Where("student_id = ? AND group_id = ? AND is_active = ?",
				in.StudentID, *in.GroupID, true).First(&enrollment).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return apperrors.NewIntegrity("tuition payment for a group the student is not enrolled in")
				}
				return err
			}
			if err := tx.Model(&enrollment).
				Update("sessions_total", enrollment.SessionsTotal+in.SessionsPurchased).Error; err != nil {
				return err
			}
		}

		if in.PaymentType == "entrance_fee" {
			now := time.Now()
			if err := tx.Model(&student).Updates(map[string]interface{}{
				"entrance_fee_paid":      true,
				"entrance_fee_paid_date": now,
			}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	activity.Append("Payment recorded", "payment", &payment.ID, nil, in)
	notify.EntityChanged("payments")
	return &payment, nil
}

// Update reverses the old payment's enrollment side effect before applying
// the new values. The session adjustment is best-effort: a missing enrollment
// is logged and skipped, never fatal to the update itself.
func (s *Service) Update(id uint, in UpdatePaymentInput) (*models.Payment, error) {
	var payment models.Payment
	if err := database.DB.First(&payment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("payment")
		}
		return nil, err
	}
	old := payment

	if in.Amount != nil && *in.Amount <= 0 {
		return nil, apperrors.NewValidation("payment amount must be greater than zero")
	}
	if in.PaymentType != nil && !validPaymentTypes[*in.PaymentType] {
		return nil, apperrors.NewValidation("invalid payment type: " + *in.PaymentType)
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		reverseSessionEffect(tx, &old)

		if in.GroupID != nil {
			payment.GroupID = in.GroupID
		}
		if in.PaymentType != nil {
			payment.PaymentType = *in.PaymentType
		}
		if in.Amount != nil {
			payment.Amount = *in.Amount
		}
		if in.OriginalAmount != nil {
			payment.OriginalAmount = *in.OriginalAmount
		}
		if in.DiscountApplied != nil {
			payment.DiscountApplied = *in.DiscountApplied
		}
		if in.SessionsPurchased != nil {
			payment.SessionsPurchased = *in.SessionsPurchased
		}
		if in.Notes != nil {
			payment.Notes = *in.Notes
		}

		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		applySessionEffect(tx, &payment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	activity.Append("Payment updated", "payment", &payment.ID, old, payment)
	notify.EntityChanged("payments")
	return &payment, nil
}

// Delete reverses the tuition session side effect (best-effort) and removes
// the payment row. The row is physically removed, not soft-deleted, so the
// reversal is the only record of the adjustment besides the activity log.
func (s *Service) Delete(id uint) error {
	var payment models.Payment
	if err := database.DB.First(&payment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("payment")
		}
		return err
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		reverseSessionEffect(tx, &payment)
		return tx.Unscoped().Delete(&payment).Error
	})
	if err != nil {
		return err
	}

	activity.Append("Payment deleted", "payment", &payment.ID, payment, nil)
	notify.EntityChanged("payments")
	return nil
}

// SummaryForMonth filters payments to one calendar month and totals amounts,
// discounts and count.
func (s *Service) SummaryForMonth(year int, month time.Month) (*FinancialSummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	var list []models.Payment
	if err := database.DB.Where("payment_date >= ? AND payment_date < ?", start, end).
		Find(&list).Error; err != nil {
		return nil, err
	}

	summary := &FinancialSummary{PaymentCount: len(list)}
	for _, p := range list {
		summary.TotalCollected += p.Amount
		summary.TotalDiscounts += p.DiscountApplied
	}
	return summary, nil
}

// reverseSessionEffect subtracts a tuition payment's purchased sessions from
// the matching enrollment, floored at zero. A missing enrollment is skipped.
func reverseSessionEffect(tx *gorm.DB, p *models.Payment) {
	if p.PaymentType != "tuition" || p.GroupID == nil || p.SessionsPurchased <= 0 {
		return
	}
	var enrollment models.StudentGroup
	if err := tx.Where("student_id = ? AND group_id = ?", p.StudentID, *p.GroupID).
		Order("is_active DESC, id DESC").First(&enrollment).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"payment_id": p.ID,
			"student_id": p.StudentID,
			"group_id":   *p.GroupID,
		}).Warn("Enrollment missing, skipping session reversal")
		return
	}
	total := enrollment.SessionsTotal - p.SessionsPurchased
	if total < 0 {
		total = 0
	}
	if err := tx.Model(&enrollment).Update("sessions_total", total).Error; err != nil {
		logrus.WithError(err).WithField("payment_id", p.ID).Warn("Failed to reverse session effect")
	}
}

// applySessionEffect adds a tuition payment's purchased sessions to the
// matching enrollment, best-effort.
func applySessionEffect(tx *gorm.DB, p *models.Payment) {
	if p.PaymentType != "tuition" || p.GroupID == nil || p.SessionsPurchased <= 0 {
		return
	}
	var enrollment models.StudentGroup
	if err := tx.Where("student_id = ? AND group_id = ?", p.StudentID, *p.GroupID).
		Order("is_active DESC, id DESC").First(&enrollment).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"payment_id": p.ID,
			"student_id": p.StudentID,
			"group_id":   *p.GroupID,
		}).Warn("Enrollment missing, skipping session adjustment")
		return
	}
	if err := tx.Model(&enrollment).
		Update("sessions_total", enrollment.SessionsTotal+p.SessionsPurchased).Error; err != nil {
		logrus.WithError(err).WithField("payment_id", p.ID).Warn("Failed to apply session effect")
	}
}
