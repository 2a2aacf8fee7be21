package groups

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
		&models.Payment{}, &models.Attendance{}, &models.ActivityLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	database.RedisClient = nil
}

func seedGroupWithHistory(t *testing.T) (models.Group, models.Student) {
	t.Helper()
	student := models.Student{Name: "Karl", Status: "active"}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	group := models.Group{Name: "B2", Language: "dutch", IsActive: true}
	if err := database.DB.Create(&group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}
	if err := database.DB.Create(&models.StudentGroup{
		StudentID: student.ID, GroupID: group.ID, SessionsTotal: 8, IsActive: true,
	}).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}
	if err := database.DB.Create(&models.Attendance{
		StudentID: student.ID, GroupID: group.ID,
		SessionDate: time.Now(), Status: "present",
	}).Error; err != nil {
		t.Fatalf("create attendance: %v", err)
	}
	if err := database.DB.Create(&models.Payment{
		StudentID: student.ID, GroupID: &group.ID, PaymentType: "tuition",
		Amount: 200, PaymentDate: time.Now(), ReceiptNo: "r1",
	}).Error; err != nil {
		t.Fatalf("create payment: %v", err)
	}
	return group, student
}

func TestDeactivateCascadesToEnrollments(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	group, student := seedGroupWithHistory(t)

	if err := svc.Deactivate(group.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	var after models.Group
	database.DB.First(&after, group.ID)
	if after.IsActive {
		t.Error("group still active")
	}

	var enrollment models.StudentGroup
	database.DB.Where("student_id = ? AND group_id = ?", student.ID, group.ID).First(&enrollment)
	if enrollment.IsActive {
		t.Error("enrollment still active after group deactivation")
	}

	// Soft path keeps everything else.
	var attendanceCount, paymentCount int64
	database.DB.Model(&models.Attendance{}).Count(&attendanceCount)
	database.DB.Model(&models.Payment{}).Count(&paymentCount)
	if attendanceCount != 1 || paymentCount != 1 {
		t.Errorf("attendance=%d payments=%d, want 1 and 1", attendanceCount, paymentCount)
	}
}

func TestHardDeleteCascadesButKeepsPayments(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	group, _ := seedGroupWithHistory(t)

	if err := svc.HardDelete(group.ID); err != nil {
		t.Fatalf("HardDelete() error = %v", err)
	}

	var groupCount, enrollmentCount, attendanceCount, paymentCount int64
	database.DB.Unscoped().Model(&models.Group{}).Count(&groupCount)
	database.DB.Unscoped().Model(&models.StudentGroup{}).Count(&enrollmentCount)
	database.DB.Unscoped().Model(&models.Attendance{}).Count(&attendanceCount)
	database.DB.Model(&models.Payment{}).Count(&paymentCount)

	if groupCount != 0 {
		t.Errorf("group rows = %d, want 0", groupCount)
	}
	if enrollmentCount != 0 {
		t.Errorf("enrollment rows = %d, want 0", enrollmentCount)
	}
	if attendanceCount != 0 {
		t.Errorf("attendance rows = %d, want 0", attendanceCount)
	}
	if paymentCount != 1 {
		t.Errorf("payment rows = %d, want 1 (financial history survives)", paymentCount)
	}
}

func TestDeleteMissingGroup(t *testing.T) {
	newTestDB(t)
	svc := NewService()

	if err := svc.Deactivate(42); !apperrors.IsNotFound(err) {
		t.Errorf("Deactivate() error = %v, want not found", err)
	}
	if err := svc.HardDelete(42); !apperrors.IsNotFound(err) {
		t.Errorf("HardDelete() error = %v, want not found", err)
	}
}
