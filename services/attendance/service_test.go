package attendance

import (
	"testing"
	"time"

	"linguadesk_go/apperrors"
	"linguadesk_go/database"
	"linguadesk_go/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Student{}, &models.Group{}, &models.StudentGroup{},
		&models.Attendance{}, &models.ActivityLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	database.RedisClient = nil
}

func seedEnrollment(t *testing.T, sessionsTotal, sessionsUsed int) (models.Student, models.Group, models.StudentGroup) {
	t.Helper()
	student := models.Student{Name: "Vera", Status: "active"}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	group := models.Group{Name: "C1 Morning", Language: "english", IsActive: true}
	if err := database.DB.Create(&group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}
	enrollment := models.StudentGroup{
		StudentID:     student.ID,
		GroupID:       group.ID,
		SessionsTotal: sessionsTotal,
		SessionsUsed:  sessionsUsed,
		IsActive:      true,
	}
	if err := database.DB.Create(&enrollment).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}
	return student, group, enrollment
}

func sessionsUsed(t *testing.T, enrollmentID uint) int {
	t.Helper()
	var e models.StudentGroup
	if err := database.DB.First(&e, enrollmentID).Error; err != nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	return e.SessionsUsed
}

func TestRecordConsumesSessionOnFirstInsertOnly(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, group, enrollment := seedEnrollment(t, 8, 0)
	day := time.Date(2026, 3, 2, 14, 30, 0, 0, time.Local)

	if _, err := svc.Record(RecordInput{
		StudentID: student.ID, GroupID: group.ID, SessionDate: day, Status: "present",
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if got := sessionsUsed(t, enrollment.ID); got != 1 {
		t.Fatalf("sessions_used after first record = %d, want 1", got)
	}

	// Re-recording the same key, even at a different time of day, updates in
	// place and never consumes again.
	later := day.Add(3 * time.Hour)
	rec, err := svc.Record(RecordInput{
		StudentID: student.ID, GroupID: group.ID, SessionDate: later, Status: "present",
	})
	if err != nil {
		t.Fatalf("Record() second call error = %v", err)
	}
	if got := sessionsUsed(t, enrollment.ID); got != 1 {
		t.Errorf("sessions_used after re-record = %d, want 1", got)
	}
	if rec.Status != "present" {
		t.Errorf("status = %q, want present", rec.Status)
	}

	var count int64
	database.DB.Model(&models.Attendance{}).Count(&count)
	if count != 1 {
		t.Errorf("attendance rows = %d, want 1", count)
	}
}

func TestRecordAbsentDoesNotConsume(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, group, enrollment := seedEnrollment(t, 8, 2)

	if _, err := svc.Record(RecordInput{
		StudentID: student.ID, GroupID: group.ID, SessionDate: time.Now(), Status: "absent", Reason: "sick",
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if got := sessionsUsed(t, enrollment.ID); got != 2 {
		t.Errorf("sessions_used = %d, want 2", got)
	}
}

func TestRecordRejectsUnknownStatus(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, group, _ := seedEnrollment(t, 8, 0)

	if _, err := svc.Record(RecordInput{
		StudentID: student.ID, GroupID: group.ID, SessionDate: time.Now(), Status: "late",
	}); !apperrors.IsValidation(err) {
		t.Errorf("Record() error = %v, want validation error", err)
	}
}

func TestEditRequiresReasonAndKeepsConsumption(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, group, enrollment := seedEnrollment(t, 8, 0)

	rec, err := svc.Record(RecordInput{
		StudentID: student.ID, GroupID: group.ID, SessionDate: time.Now(), Status: "present",
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if _, err := svc.Edit(rec.ID, "absent", "", ""); !apperrors.IsValidation(err) {
		t.Fatalf("Edit() without reason error = %v, want validation error", err)
	}

	edited, err := svc.Edit(rec.ID, "absent", "left early", "recorded wrong student")
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if edited.Status != "absent" {
		t.Errorf("status = %q, want absent", edited.Status)
	}
	if edited.EditedAt == nil {
		t.Error("EditedAt not stamped")
	}
	if edited.EditReason != "recorded wrong student" {
		t.Errorf("edit_reason = %q", edited.EditReason)
	}

	// Editing present to absent does not refund the consumed session.
	if got := sessionsUsed(t, enrollment.ID); got != 1 {
		t.Errorf("sessions_used after edit = %d, want 1", got)
	}
}

func TestMarkAllSkipsAlreadyMarkedAndArchived(t *testing.T) {
	newTestDB(t)
	svc := NewService()

	group := models.Group{Name: "Kids A", Language: "french", IsActive: true}
	if err := database.DB.Create(&group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}

	var students []models.Student
	for _, name := range []string{"One", "Two", "Three"} {
		s := models.Student{Name: name, Status: "active"}
		if err := database.DB.Create(&s).Error; err != nil {
			t.Fatalf("create student: %v", err)
		}
		if err := database.DB.Create(&models.StudentGroup{
			StudentID: s.ID, GroupID: group.ID, SessionsTotal: 8, IsActive: true,
		}).Error; err != nil {
			t.Fatalf("create enrollment: %v", err)
		}
		students = append(students, s)
	}

	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)

	// First student already marked present; third student archived.
	if _, err := svc.Record(RecordInput{
		StudentID: students[0].ID, GroupID: group.ID, SessionDate: day, Status: "present",
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := database.DB.Delete(&students[2]).Error; err != nil {
		t.Fatalf("archive student: %v", err)
	}

	result, err := svc.MarkAll(group.ID, day, "present")
	if err != nil {
		t.Fatalf("MarkAll() error = %v", err)
	}
	if result.Marked != 1 {
		t.Errorf("Marked = %d, want 1", result.Marked)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}
	if result.Failed != 0 {
		t.Errorf("Failed = %d, want 0: %v", result.Failed, result.Errors)
	}
}
