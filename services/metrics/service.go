package metrics

import (
	"math"
	"time"

	"linguadesk_go/apperrors"
	"linguadesk_go/database"
	"linguadesk_go/models"

	"gorm.io/gorm"
)

// Service derives per-student metrics and fleet-wide alert counts. Nothing is
// stored or cached; every call recomputes from the raw tables so callers
// always see post-mutation state.
type Service struct{}

func NewService() *Service { return &Service{} }

// StudentMetrics are the derived per-student figures shown on the roster.
type StudentMetrics struct {
	TotalPaid            float64 `json:"total_paid"`
	RemainingSessions    int     `json:"remaining_sessions"`
	AttendancePercentage int     `json:"attendance_percentage"`
}

// AlertCounts are the dashboard alert widgets.
type AlertCounts struct {
	OverduePayments   int `json:"overdue_payments"`
	LowSessions       int `json:"low_sessions"`
	MissingAttendance int `json:"missing_attendance"`
}

// ForStudent computes the derived metrics for one student. The session
// balance spans ALL enrollments, active and inactive alike, so a balance left
// behind in a deactivated group still counts.
func (s *Service) ForStudent(studentID uint) (*StudentMetrics, error) {
	var student models.Student
	if err := database.DB.First(&student, studentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("student")
		}
		return nil, err
	}

	m := &StudentMetrics{}

	var totalPaid *float64
	if err := database.DB.Model(&models.Payment{}).
		Where("student_id = ?", studentID).
		Select("SUM(amount)").Scan(&totalPaid).Error; err != nil {
		return nil, err
	}
	if totalPaid != nil {
		m.TotalPaid = *totalPaid
	}

	var balance *int
	if err := database.DB.Model(&models.StudentGroup{}).
		Where("student_id = ?", studentID).
		Select("SUM(sessions_total - sessions_used)").Scan(&balance).Error; err != nil {
		return nil, err
	}
	if balance != nil {
		m.RemainingSessions = *balance
	}

	var total, present int64
	if err := database.DB.Model(&models.Attendance{}).
		Where("student_id = ?", studentID).Count(&total).Error; err != nil {
		return nil, err
	}
	if total > 0 {
		if err := database.DB.Model(&models.Attendance{}).
			Where("student_id = ? AND status = ?", studentID, "present").
			Count(&present).Error; err != nil {
			return nil, err
		}
		m.AttendancePercentage = int(math.Round(100 * float64(present) / float64(total)))
	}

	return m, nil
}

// Alerts computes the fleet-wide alert counts over the non-archived student
// set: overdue balances, low session balances (0..2) and active students with
// no attendance recorded today.
func (s *Service) Alerts(now time.Time) (*AlertCounts, error) {
	var students []models.Student
	if err := database.DB.Find(&students).Error; err != nil {
		return nil, err
	}

	type balanceRow struct {
		StudentID uint
		Balance   int
	}
	var rows []balanceRow
	if err := database.DB.Model(&models.StudentGroup{}).
		Select("student_id, SUM(sessions_total - sessions_used) AS balance").
		Group("student_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	balances := make(map[uint]int, len(rows))
	for _, r := range rows {
		balances[r.StudentID] = r.Balance
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	var recorded []uint
	if err := database.DB.Model(&models.Attendance{}).
		Where("session_date >= ? AND session_date < ?", dayStart, dayEnd).
		Distinct("student_id").Pluck("student_id", &recorded).Error; err != nil {
		return nil, err
	}
	recordedToday := make(map[uint]bool, len(recorded))
	for _, id := range recorded {
		recordedToday[id] = true
	}

	counts := &AlertCounts{}
	for _, st := range students {
		balance := balances[st.ID]
		if balance < 0 {
			counts.OverduePayments++
		} else if balance <= 2 {
			counts.LowSessions++
		}
		if st.Status == "active" && !recordedToday[st.ID] {
			counts.MissingAttendance++
		}
	}
	return counts, nil
}
