package attendance

import (
	"fmt"
	"time"

	"linguadesk_go/apperrors"
	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/activity"
	"linguadesk_go/services/notify"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service records per-session attendance. A session is consumed from the
// enrollment balance only the first time a (student, group, date) key is
// recorded as present; later updates to the same key never re-consume.
type Service struct{}

func NewService() *Service { return &Service{} }

type RecordInput struct {
	StudentID   uint      `json:"student_id"`
	GroupID     uint      `json:"group_id"`
	SessionDate time.Time `json:"session_date"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason"`
}

// BulkResult reports the outcome of a mark-all batch.
type BulkResult struct {
	Marked  int      `json:"marked"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

var validStatuses = map[string]bool{
	"present": true,
	"absent":  true,
	"excused": true,
}

// DateOnly truncates a timestamp to its local calendar day, the granularity
// of the attendance uniqueness key.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Record upserts attendance for (student, group, date). Insert consumes a
// session when the status is present; an update of an existing row only
// changes status and reason.
func (s *Service) Record(in RecordInput) (*models.Attendance, error) {
	if !validStatuses[in.Status] {
		return nil, apperrors.NewValidation("invalid attendance status: " + in.Status)
	}
	day := DateOnly(in.SessionDate)

	var record models.Attendance
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Attendance
		lookupErr := tx.Where("student_id = ? AND group_id = ? AND session_date = ?",
			in.StudentID, in.GroupID, day).First(&existing).Error

		if lookupErr == nil {
			// Update path: the insert-vs-update branch is the sole gate on
			// session consumption, so nothing is re-consumed here.
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"status": in.Status,
				"reason": in.Reason,
			}).Error; err != nil {
				return err
			}
			existing.Status = in.Status
			existing.Reason = in.Reason
			record = existing
			return nil
		}
		if lookupErr != gorm.ErrRecordNotFound {
			return lookupErr
		}

		record = models.Attendance{
			StudentID:   in.StudentID,
			GroupID:     in.GroupID,
			SessionDate: day,
			Status:      in.Status,
			Reason:      in.Reason,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		if in.Status == "present" {
			var enrollment models.StudentGroup
			if err := tx.Where("student_id = ? AND group_id = ?", in.StudentID, in.GroupID).
				Order("is_active DESC, id DESC").First(&enrollment).Error; err != nil {
				logrus.WithFields(logrus.Fields{
					"student_id": in.StudentID,
					"group_id":   in.GroupID,
				}).Warn("No enrollment found, session not consumed")
				return nil
			}
			if err := tx.Model(&enrollment).
				Update("sessions_used", enrollment.SessionsUsed+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	activity.Append("Attendance recorded", "attendance", &record.ID, nil, in)
	notify.EntityChanged("attendance")
	return &record, nil
}

// Edit is the corrective path: it requires an edit reason, stamps EditedAt and
// keeps old/new snapshots in the audit trail. Session consumption from the
// original recording is final and is not adjusted here.
func (s *Service) Edit(id uint, status, reason, editReason string) (*models.Attendance, error) {
	if editReason == "" {
		return nil, apperrors.NewValidation("edit reason is required")
	}
	if !validStatuses[status] {
		return nil, apperrors.NewValidation("invalid attendance status: " + status)
	}

	var record models.Attendance
	if err := database.DB.First(&record, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("attendance record")
		}
		return nil, err
	}
	old := record

	now := time.Now()
	if err := database.DB.Model(&record).Updates(map[string]interface{}{
		"status":      status,
		"reason":      reason,
		"edited_at":   now,
		"edit_reason": editReason,
	}).Error; err != nil {
		return nil, err
	}
	record.Status = status
	record.Reason = reason
	record.EditedAt = &now
	record.EditReason = editReason

	activity.Append("Attendance edited", "attendance", &record.ID, old, record)
	notify.EntityChanged("attendance")
	return &record, nil
}

// MarkAll records the given status for every actively enrolled, non-archived
// student in the group. Students already at the target status are skipped and
// per-student failures never abort the batch.
func (s *Service) MarkAll(groupID uint, sessionDate time.Time, status string) (*BulkResult, error) {
	if !validStatuses[status] {
		return nil, apperrors.NewValidation("invalid attendance status: " + status)
	}

	var group models.Group
	if err := database.DB.First(&group, groupID).Error; err != nil {
		return nil, apperrors.NewNotFound("group")
	}

	var enrollments []models.StudentGroup
	if err := database.DB.Preload("Student").
		Where("group_id = ? AND is_active = ?", groupID, true).
		Find(&enrollments).Error; err != nil {
		return nil, err
	}

	day := DateOnly(sessionDate)
	result := &BulkResult{}

	for _, e := range enrollments {
		// Archived students fail the soft-delete scoped preload.
		if e.Student.ID == 0 {
			result.Skipped++
			continue
		}

		var existing models.Attendance
		if err := database.DB.Where("student_id = ? AND group_id = ? AND session_date = ?",
			e.StudentID, groupID, day).First(&existing).Error; err == nil && existing.Status == status {
			result.Skipped++
			continue
		}

		if _, err := s.Record(RecordInput{
			StudentID:   e.StudentID,
			GroupID:     groupID,
			SessionDate: day,
			Status:      status,
		}); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("student %d: %v", e.StudentID, err))
			continue
		}
		result.Marked++
	}

	return result, nil
}
