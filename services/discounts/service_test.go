package discounts

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
	if err := db.AutoMigrate(&models.Student{}, &models.Discount{}, &models.ActivityLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	database.RedisClient = nil
}

func TestAddDiscountValidation(t *testing.T) {
	newTestDB(t)
	svc := NewService()

	student := models.Student{Name: "Ana", Status: "active"}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}

	tests := []struct {
		name string
		in   AddDiscountInput
	}{
		{"unknown type", AddDiscountInput{StudentID: student.ID, DiscountType: "loyalty", DiscountValue: 5}},
		{"zero value", AddDiscountInput{StudentID: student.ID, DiscountType: "family", DiscountValue: 0}},
		{"percentage over 100", AddDiscountInput{StudentID: student.ID, DiscountType: "special", IsPercentage: true, DiscountValue: 120}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Add(tt.in); !apperrors.IsValidation(err) {
				t.Errorf("Add() error = %v, want validation error", err)
			}
		})
	}

	if _, err := svc.Add(AddDiscountInput{StudentID: student.ID + 99, DiscountType: "family", DiscountValue: 10}); !apperrors.IsNotFound(err) {
		t.Errorf("Add() with missing student error = %v, want not found", err)
	}
}

func TestRemoveDeactivatesDiscount(t *testing.T) {
	newTestDB(t)
	svc := NewService()

	student := models.Student{Name: "Ben", Status: "active"}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}

	d, err := svc.Add(AddDiscountInput{StudentID: student.ID, DiscountType: "two_groups", IsPercentage: true, DiscountValue: 10})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := svc.Remove(d.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	active, err := svc.ActiveForStudent(student.ID)
	if err != nil {
		t.Fatalf("ActiveForStudent() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active discounts after removal = %d, want 0", len(active))
	}

	// Row is kept for history
	var count int64
	database.DB.Model(&models.Discount{}).Where("student_id = ?", student.ID).Count(&count)
	if count != 1 {
		t.Errorf("discount rows = %d, want 1", count)
	}
}
