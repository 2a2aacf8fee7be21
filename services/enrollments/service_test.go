package enrollments

import (
	"testing"

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
		&models.Student{}, &models.Group{}, &models.StudentGroup{}, &models.ActivityLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	database.RedisClient = nil
}

func seed(t *testing.T) (models.Student, models.Group, models.Group) {
	t.Helper()
	student := models.Student{Name: "Nina", Status: "active"}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	groupA := models.Group{Name: "A1", Language: "italian", IsActive: true}
	groupB := models.Group{Name: "A2", Language: "italian", IsActive: true}
	for _, g := range []*models.Group{&groupA, &groupB} {
		if err := database.DB.Create(g).Error; err != nil {
			t.Fatalf("create group: %v", err)
		}
	}
	return student, groupA, groupB
}

func TestEnroll(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, group, _ := seed(t)

	enrollment, err := svc.Enroll(student.ID, group.ID, 8)
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if enrollment.SessionsTotal != 8 || enrollment.SessionsUsed != 0 {
		t.Errorf("enrollment = %d/%d, want 8/0", enrollment.SessionsUsed, enrollment.SessionsTotal)
	}
	if !enrollment.IsActive {
		t.Error("enrollment not active")
	}
	if enrollment.JoinedAt == nil {
		t.Error("JoinedAt not stamped")
	}
}

func TestEnrollRejectsDuplicateActive(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, group, _ := seed(t)

	if _, err := svc.Enroll(student.ID, group.ID, 8); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if _, err := svc.Enroll(student.ID, group.ID, 4); !apperrors.IsValidation(err) {
		t.Fatalf("second Enroll() error = %v, want validation error", err)
	}

	// An inactive enrollment does not block re-enrolling.
	if err := svc.Unenroll(student.ID, group.ID); err != nil {
		t.Fatalf("Unenroll() error = %v", err)
	}
	if _, err := svc.Enroll(student.ID, group.ID, 4); err != nil {
		t.Errorf("re-Enroll() after unenroll error = %v", err)
	}
}

func TestEnrollValidation(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, group, _ := seed(t)

	if _, err := svc.Enroll(student.ID, group.ID, -1); !apperrors.IsValidation(err) {
		t.Errorf("Enroll() negative sessions error = %v, want validation error", err)
	}
	if _, err := svc.Enroll(student.ID+99, group.ID, 0); !apperrors.IsNotFound(err) {
		t.Errorf("Enroll() missing student error = %v, want not found", err)
	}
	if _, err := svc.Enroll(student.ID, group.ID+99, 0); !apperrors.IsNotFound(err) {
		t.Errorf("Enroll() missing group error = %v, want not found", err)
	}
}

func TestUnenrollMissing(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, group, _ := seed(t)

	if err := svc.Unenroll(student.ID, group.ID); !apperrors.IsNotFound(err) {
		t.Errorf("Unenroll() error = %v, want not found", err)
	}
}

func TestMoveCarriesRemainingBalance(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, groupA, groupB := seed(t)

	source, err := svc.Enroll(student.ID, groupA.ID, 10)
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	database.DB.Model(&models.StudentGroup{}).Where("id = ?", source.ID).
		Update("sessions_used", 7)

	dest, err := svc.Move(student.ID, groupA.ID, groupB.ID)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if dest.SessionsTotal != 3 || dest.SessionsUsed != 0 {
		t.Errorf("destination = %d/%d, want 0/3", dest.SessionsUsed, dest.SessionsTotal)
	}

	var old models.StudentGroup
	database.DB.First(&old, source.ID)
	if old.IsActive {
		t.Error("source enrollment still active after move")
	}
}

func TestMoveCarriesDebt(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, groupA, groupB := seed(t)

	source, err := svc.Enroll(student.ID, groupA.ID, 5)
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	database.DB.Model(&models.StudentGroup{}).Where("id = ?", source.ID).
		Update("sessions_used", 8)

	// A negative balance follows the student instead of being forgiven.
	dest, err := svc.Move(student.ID, groupA.ID, groupB.ID)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if dest.SessionsTotal != -3 {
		t.Errorf("destination sessions_total = %d, want -3", dest.SessionsTotal)
	}
}

func TestMoveWithoutSourceEnrollment(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, groupA, groupB := seed(t)

	dest, err := svc.Move(student.ID, groupA.ID, groupB.ID)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if dest.SessionsTotal != 0 {
		t.Errorf("destination sessions_total = %d, want 0", dest.SessionsTotal)
	}
}

func TestMoveSameGroupRejected(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, groupA, _ := seed(t)

	if _, err := svc.Move(student.ID, groupA.ID, groupA.ID); !apperrors.IsValidation(err) {
		t.Errorf("Move() error = %v, want validation error", err)
	}
}
