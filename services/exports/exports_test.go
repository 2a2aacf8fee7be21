package exports

import (
	"bytes"
	"encoding/csv"
	"strings"
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
		&models.Student{}, &models.Group{}, &models.Payment{}, &models.Attendance{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
}

func TestStudentsCSVIncludesArchived(t *testing.T) {
	newTestDB(t)
	svc := NewService()

	active := models.Student{Name: "Active One", Status: "active"}
	archived := models.Student{Name: "Archived One", Status: "dropped"}
	for _, s := range []*models.Student{&active, &archived} {
		if err := database.DB.Create(s).Error; err != nil {
			t.Fatalf("create student: %v", err)
		}
	}
	if err := database.DB.Delete(&archived).Error; err != nil {
		t.Fatalf("archive student: %v", err)
	}

	file, err := svc.Students(FormatCSV)
	if err != nil {
		t.Fatalf("Students() error = %v", err)
	}
	if !strings.HasSuffix(file.Name, ".csv") {
		t.Errorf("file name = %q, want .csv suffix", file.Name)
	}

	rows, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("csv rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "ID" {
		t.Errorf("header[0] = %q, want ID", rows[0][0])
	}
	// Archived column is the last one.
	last := len(rows[1]) - 1
	if rows[1][last] != "false" || rows[2][last] != "true" {
		t.Errorf("archived flags = %q, %q; want false, true", rows[1][last], rows[2][last])
	}
}

func TestStudentsXLSX(t *testing.T) {
	newTestDB(t)
	svc := NewService()

	if err := database.DB.Create(&models.Student{Name: "Solo", Status: "active"}).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}

	file, err := svc.Students(FormatXLSX)
	if err != nil {
		t.Fatalf("Students() error = %v", err)
	}
	if !strings.HasSuffix(file.Name, ".xlsx") {
		t.Errorf("file name = %q, want .xlsx suffix", file.Name)
	}
	if len(file.Data) == 0 {
		t.Error("xlsx export is empty")
	}
}

func TestUnknownFormatRejected(t *testing.T) {
	newTestDB(t)
	svc := NewService()

	if _, err := svc.Students(Format("pdf")); !apperrors.IsValidation(err) {
		t.Errorf("Students() error = %v, want validation error", err)
	}
}

func TestGroupAttendanceMissingGroup(t *testing.T) {
	newTestDB(t)
	svc := NewService()

	if _, err := svc.GroupAttendance(FormatCSV, 7); !apperrors.IsNotFound(err) {
		t.Errorf("GroupAttendance() error = %v, want not found", err)
	}
}
