package discounts

import (
	"linguadesk_go/apperrors"
	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/activity"
	"linguadesk_go/services/notify"
)

type Service struct{}

func NewService() *Service { return &Service{} }

type AddDiscountInput struct {
	StudentID       uint    `json:"student_id"`
	DiscountType    string  `json:"discount_type"`
	IsPercentage    bool    `json:"is_percentage"`
	DiscountValue   float64 `json:"discount_value"`
	LinkedStudentID *uint   `json:"linked_student_id"`
	Notes           string  `json:"notes"`
}

var validDiscountTypes = map[string]bool{
	"two_groups": true,
	"family":     true,
	"special":    true,
}

// Add attaches a new active discount to a student.
func (s *Service) Add(in AddDiscountInput) (*models.Discount, error) {
	if !validDiscountTypes[in.DiscountType] {
		return nil, apperrors.NewValidation("invalid discount type: " + in.DiscountType)
	}
	if in.DiscountValue <= 0 {
		return nil, apperrors.NewValidation("discount value must be greater than zero")
	}
	if in.IsPercentage && in.DiscountValue > 100 {
		return nil, apperrors.NewValidation("percentage discount cannot exceed 100")
	}

	var student models.Student
	if err := database.DB.First(&student, in.StudentID).Error; err != nil {
		return nil, apperrors.NewNotFound("student")
	}

	discount := models.Discount{
		StudentID:       in.StudentID,
		DiscountType:    in.DiscountType,
		IsPercentage:    in.IsPercentage,
		DiscountValue:   in.DiscountValue,
		LinkedStudentID: in.LinkedStudentID,
		Notes:           in.Notes,
		IsActive:        true,
	}
	if err := database.DB.Create(&discount).Error; err != nil {
		return nil, err
	}

	activity.Append("Discount added", "discount", &discount.ID, nil, in)
	notify.EntityChanged("discounts")
	return &discount, nil
}

// Remove deactivates a discount. The row stays for audit history.
func (s *Service) Remove(id uint) error {
	var discount models.Discount
	if err := database.DB.First(&discount, id).Error; err != nil {
		return apperrors.NewNotFound("discount")
	}

	if err := database.DB.Model(&discount).Update("is_active", false).Error; err != nil {
		return err
	}

	activity.Append("Discount removed", "discount", &id, discount, nil)
	notify.EntityChanged("discounts")
	return nil
}

// ActiveForStudent returns the student's currently active discounts.
func (s *Service) ActiveForStudent(studentID uint) ([]models.Discount, error) {
	var list []models.Discount
	err := database.DB.Where("student_id = ? AND is_active = ?", studentID, true).Find(&list).Error
	return list, err
}
