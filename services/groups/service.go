package groups

import (
	"linguadesk_go/apperrors"
	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/activity"
	"linguadesk_go/services/notify"

	"gorm.io/gorm"
)

// Service implements the dual deletion semantics for groups: deactivate
// (soft, keeps history) and permanent delete (cascades to enrollments and
// attendance; payments keep their group reference so financial history
// survives).
type Service struct{}

func NewService() *Service { return &Service{} }

// Deactivate flips the group inactive and deactivates all of its
// enrollments.
func (s *Service) Deactivate(id uint) error {
	var group models.Group
	if err := database.DB.First(&group, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("group")
		}
		return err
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&group).Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.StudentGroup{}).
			Where("group_id = ?", id).
			Update("is_active", false).Error
	})
	if err != nil {
		return err
	}

	activity.Append("Group deactivated", "group", &id, group, nil)
	notify.EntityChanged("groups")
	return nil
}

// HardDelete removes the group row and cascades to enrollments and
// attendance. Payments are deliberately untouched.
func (s *Service) HardDelete(id uint) error {
	var group models.Group
	if err := database.DB.First(&group, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("group")
		}
		return err
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("group_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("group_id = ?", id).Delete(&models.StudentGroup{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&group).Error
	})
	if err != nil {
		return err
	}

	activity.Append("Group deleted", "group", &id, group, nil)
	notify.EntityChanged("groups")
	return nil
}
