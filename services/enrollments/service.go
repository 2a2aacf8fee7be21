package enrollments

import (
	"time"

	"linguadesk_go/apperrors"
	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/activity"
	"linguadesk_go/services/notify"

	"gorm.io/gorm"
)

// Service manages the student-group enrollment ledger.
type Service struct{}

func NewService() *Service { return &Service{} }

// Enroll creates a new enrollment. A second active enrollment for the same
// (student, group) pair is rejected.
func (s *Service) Enroll(studentID, groupID uint, initialSessions int) (*models.StudentGroup, error) {
	if initialSessions < 0 {
		return nil, apperrors.NewValidation("initial sessions cannot be negative")
	}

	var student models.Student
	if err := database.DB.First(&student, studentID).Error; err != nil {
		return nil, apperrors.NewNotFound("student")
	}
	var group models.Group
	if err := database.DB.First(&group, groupID).Error; err != nil {
		return nil, apperrors.NewNotFound("group")
	}

	var existing models.StudentGroup
	if err := database.DB.Where("student_id = ? AND group_id = ? AND is_active = ?",
		studentID, groupID, true).First(&existing).Error; err == nil {
		return nil, apperrors.NewValidation("student is already actively enrolled in this group")
	}

	now := time.Now()
	enrollment := models.StudentGroup{
		StudentID:     studentID,
		GroupID:       groupID,
		SessionsTotal: initialSessions,
		SessionsUsed:  0,
		JoinedAt:      &now,
		IsActive:      true,
	}
	if err := database.DB.Create(&enrollment).Error; err != nil {
		return nil, err
	}

	activity.Append("Student enrolled in group", "student_group", &enrollment.ID, nil, map[string]interface{}{
		"student_id":     studentID,
		"group_id":       groupID,
		"sessions_total": initialSessions,
	})
	notify.EntityChanged("student_groups")
	return &enrollment, nil
}

// Unenroll deactivates the student's enrollment(s) in a group. History is
// kept; nothing is deleted.
func (s *Service) Unenroll(studentID, groupID uint) error {
	result := database.DB.Model(&models.StudentGroup{}).
		Where("student_id = ? AND group_id = ? AND is_active = ?", studentID, groupID, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("enrollment")
	}

	activity.Append("Student unenrolled from group", "student_group", nil, nil, map[string]interface{}{
		"student_id": studentID,
		"group_id":   groupID,
	})
	notify.EntityChanged("student_groups")
	return nil
}

// Move transfers a student between groups, carrying the unused session
// balance into the new enrollment. The balance is taken as-is, so real debt
// (a negative balance) follows the student rather than being forgiven.
func (s *Service) Move(studentID, fromGroupID, toGroupID uint) (*models.StudentGroup, error) {
	if fromGroupID == toGroupID {
		return nil, apperrors.NewValidation("source and destination group are the same")
	}
	var toGroup models.Group
	if err := database.DB.First(&toGroup, toGroupID).Error; err != nil {
		return nil, apperrors.NewNotFound("destination group")
	}

	var enrollment models.StudentGroup
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		remaining := 0
		var source models.StudentGroup
		if err := tx.Where("student_id = ? AND group_id = ? AND is_active = ?",
			studentID, fromGroupID, true).First(&source).Error; err == nil {
			remaining = source.SessionsTotal - source.SessionsUsed
			if err := tx.Model(&source).Update("is_active", false).Error; err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		now := time.Now()
		enrollment = models.StudentGroup{
			StudentID:     studentID,
			GroupID:       toGroupID,
			SessionsTotal: remaining,
			SessionsUsed:  0,
			JoinedAt:      &now,
			IsActive:      true,
		}
		return tx.Create(&enrollment).Error
	})
	if err != nil {
		return nil, err
	}

	activity.Append("Student moved between groups", "student_group", &enrollment.ID, nil, map[string]interface{}{
		"student_id": studentID,
		"from_group": fromGroupID,
		"to_group":   toGroupID,
	})
	notify.EntityChanged("student_groups")
	return &enrollment, nil
}
