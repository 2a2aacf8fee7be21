package payments

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
		&models.Payment{}, &models.ActivityLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	database.RedisClient = nil
}

func seedEnrollment(t *testing.T, sessionsTotal, sessionsUsed int) (models.Student, models.Group, models.StudentGroup) {
	t.Helper()
	student := models.Student{Name: "Mira", Status: "active"}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	group := models.Group{Name: "B1 Evening", Language: "german", IsActive: true, SessionsPerCycle: 8}
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

func TestRecordTuitionAddsSessions(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, group, enrollment := seedEnrollment(t, 10, 3)

	payment, err := svc.Record(RecordPaymentInput{
		StudentID:         student.ID,
		GroupID:           &group.ID,
		PaymentType:       "tuition",
		Amount:            170,
		OriginalAmount:    200,
		DiscountApplied:   30,
		SessionsPurchased: 5,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if payment.ReceiptNo == "" {
		t.Error("payment has no receipt number")
	}
	if payment.PaymentDate.IsZero() {
		t.Error("payment date not stamped")
	}

	var after models.StudentGroup
	if err := database.DB.First(&after, enrollment.ID).Error; err != nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if after.SessionsTotal != 15 {
		t.Errorf("sessions_total = %d, want 15", after.SessionsTotal)
	}
	if after.SessionsUsed != 3 {
		t.Errorf("sessions_used = %d, want 3 (unchanged)", after.SessionsUsed)
	}
}

func TestRecordTuitionWithoutEnrollment(t *testing.T) {
	newTestDB(t)
	svc := NewService()

	student := models.Student{Name: "Leo", Status: "active"}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	group := models.Group{Name: "A2", Language: "spanish", IsActive: true}
	if err := database.DB.Create(&group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}

	_, err := svc.Record(RecordPaymentInput{
		StudentID:         student.ID,
		GroupID:           &group.ID,
		PaymentType:       "tuition",
		Amount:            100,
		SessionsPurchased: 4,
	})
	if !apperrors.IsIntegrity(err) {
		t.Fatalf("Record() error = %v, want integrity error", err)
	}

	// The transaction must leave no partial state behind.
	var count int64
	database.DB.Model(&models.Payment{}).Count(&count)
	if count != 0 {
		t.Errorf("payment rows = %d, want 0", count)
	}
}

func TestEntranceFeeDoubleChargeRejected(t *testing.T) {
	newTestDB(t)
	svc := NewService()

	now := time.Now()
	student := models.Student{Name: "Iris", Status: "active", EntranceFeePaid: true, EntranceFeePaidDate: &now}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}

	_, err := svc.Record(RecordPaymentInput{
		StudentID:   student.ID,
		PaymentType: "entrance_fee",
		Amount:      50,
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Record() error = %v, want validation error", err)
	}

	// Rejection before any write: no payment row and no audit entry.
	var payments, logs int64
	database.DB.Model(&models.Payment{}).Count(&payments)
	database.DB.Model(&models.ActivityLog{}).Count(&logs)
	if payments != 0 {
		t.Errorf("payment rows = %d, want 0", payments)
	}
	if logs != 0 {
		t.Errorf("activity log rows = %d, want 0", logs)
	}
}

func TestEntranceFeeMarksStudent(t *testing.T) {
	newTestDB(t)
	svc := NewService()

	student := models.Student{Name: "Omar", Status: "active", EntranceFeeAmount: 50}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}

	if _, err := svc.Record(RecordPaymentInput{
		StudentID:   student.ID,
		PaymentType: "entrance_fee",
		Amount:      50,
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	var after models.Student
	if err := database.DB.First(&after, student.ID).Error; err != nil {
		t.Fatalf("reload student: %v", err)
	}
	if !after.EntranceFeePaid {
		t.Error("entrance_fee_paid not set")
	}
	if after.EntranceFeePaidDate == nil {
		t.Error("entrance_fee_paid_date not set")
	}
}

func TestRecordValidation(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, group, _ := seedEnrollment(t, 0, 0)

	tests := []struct {
		name string
		in   RecordPaymentInput
	}{
		{"zero amount", RecordPaymentInput{StudentID: student.ID, GroupID: &group.ID, PaymentType: "tuition", Amount: 0}},
		{"negative amount", RecordPaymentInput{StudentID: student.ID, PaymentType: "partial", Amount: -5}},
		{"unknown type", RecordPaymentInput{StudentID: student.ID, PaymentType: "refund", Amount: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Record(tt.in); !apperrors.IsValidation(err) {
				t.Errorf("Record() error = %v, want validation error", err)
			}
		})
	}
}

func TestUpdateReappliesSessionEffect(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, group, enrollment := seedEnrollment(t, 10, 0)

	payment, err := svc.Record(RecordPaymentInput{
		StudentID:         student.ID,
		GroupID:           &group.ID,
		PaymentType:       "tuition",
		Amount:            200,
		SessionsPurchased: 5,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	newSessions := 3
	if _, err := svc.Update(payment.ID, UpdatePaymentInput{SessionsPurchased: &newSessions}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	var after models.StudentGroup
	database.DB.First(&after, enrollment.ID)
	if after.SessionsTotal != 13 {
		t.Errorf("sessions_total = %d, want 13", after.SessionsTotal)
	}
}

func TestDeleteReversesAndFloorsAtZero(t *testing.T) {
	newTestDB(t)
	svc := NewService()
	student, group, enrollment := seedEnrollment(t, 0, 2)

	payment, err := svc.Record(RecordPaymentInput{
		StudentID:         student.ID,
		GroupID:           &group.ID,
		PaymentType:       "tuition",
		Amount:            200,
		SessionsPurchased: 5,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	// Consume part of the balance, then delete the payment. The reversal
	// floors at zero instead of going negative.
	database.DB.Model(&models.StudentGroup{}).Where("id = ?", enrollment.ID).
		Update("sessions_total", 4)

	if err := svc.Delete(payment.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var after models.StudentGroup
	database.DB.First(&after, enrollment.ID)
	if after.SessionsTotal != 0 {
		t.Errorf("sessions_total = %d, want 0", after.SessionsTotal)
	}

	var count int64
	database.DB.Model(&models.Payment{}).Count(&count)
	if count != 0 {
		t.Errorf("payment rows = %d, want 0", count)
	}
}

func TestSummaryForMonth(t *testing.T) {
	newTestDB(t)
	svc := NewService()

	student := models.Student{Name: "Pia", Status: "active"}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}

	now := time.Now()
	inMonth := []models.Payment{
		{StudentID: student.ID, PaymentType: "partial", Amount: 100, DiscountApplied: 10, PaymentDate: now, ReceiptNo: "r1"},
		{StudentID: student.ID, PaymentType: "event", Amount: 25, PaymentDate: now, ReceiptNo: "r2"},
	}
	outOfMonth := models.Payment{
		StudentID: student.ID, PaymentType: "partial", Amount: 999,
		PaymentDate: now.AddDate(0, -2, 0), ReceiptNo: "r3",
	}
	for _, p := range inMonth {
		if err := database.DB.Create(&p).Error; err != nil {
			t.Fatalf("create payment: %v", err)
		}
	}
	if err := database.DB.Create(&outOfMonth).Error; err != nil {
		t.Fatalf("create payment: %v", err)
	}

	summary, err := svc.SummaryForMonth(now.Year(), now.Month())
	if err != nil {
		t.Fatalf("SummaryForMonth() error = %v", err)
	}
	if summary.TotalCollected != 125 {
		t.Errorf("TotalCollected = %v, want 125", summary.TotalCollected)
	}
	if summary.TotalDiscounts != 10 {
		t.Errorf("TotalDiscounts = %v, want 10", summary.TotalDiscounts)
	}
	if summary.PaymentCount != 2 {
		t.Errorf("PaymentCount = %d, want 2", summary.PaymentCount)
	}
}
