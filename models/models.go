package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch s := value.(type) {
	case []byte:
		*j = append((*j)[0:0], s...)
	case string:
		*j = append((*j)[0:0], s...)
	}
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Student model. Archiving a student is a soft delete via BaseModel.DeletedAt,
// so default reads exclude archived students.
type Student struct {
	BaseModel
	Name                string     `json:"name" gorm:"size:200;not null"`
	Phone               string     `json:"phone" gorm:"size:20"`
	Whatsapp            string     `json:"whatsapp" gorm:"size:20"`
	Status              string     `json:"status" gorm:"size:20;not null;default:'active'"` // active, paused, dropped
	EnrollmentDate      *time.Time `json:"enrollment_date"`
	EntranceFeeAmount   float64    `json:"entrance_fee_amount"`
	EntranceFeePaid     bool       `json:"entrance_fee_paid" gorm:"default:false"`
	EntranceFeePaidDate *time.Time `json:"entrance_fee_paid_date"`
	Notes               string     `json:"notes" gorm:"type:text"`

	// Relationships
	Enrollments []StudentGroup `json:"enrollments,omitempty" gorm:"foreignKey:StudentID"`
	Discounts   []Discount     `json:"discounts,omitempty" gorm:"foreignKey:StudentID"`
	Payments    []Payment      `json:"payments,omitempty" gorm:"foreignKey:StudentID"`
	Attendance  []Attendance   `json:"attendance,omitempty" gorm:"foreignKey:StudentID"`
}

// Teacher model
type Teacher struct {
	BaseModel
	Name     string `json:"name" gorm:"size:200;not null"`
	Phone    string `json:"phone" gorm:"size:20"`
	Email    string `json:"email" gorm:"size:255"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

// Group model. Two deletion modes: deactivate flips IsActive and cascades to
// enrollments; hard delete removes the row plus its enrollments and attendance
// while payments keep their group reference for financial history.
type Group struct {
	BaseModel
	Name             string  `json:"name" gorm:"size:200;not null"`
	Language         string  `json:"language" gorm:"size:50;not null"`
	TeacherID        *uint   `json:"teacher_id"`
	ScheduleDays     JSON    `json:"schedule_days" gorm:"type:json"` // ["monday","wednesday"]
	ScheduleTime     string  `json:"schedule_time" gorm:"size:20"`
	SessionsPerCycle int     `json:"sessions_per_cycle" gorm:"default:8"`
	SessionFee       float64 `json:"session_fee"`
	IsActive         bool    `json:"is_active" gorm:"default:true"`
	IsPaused         bool    `json:"is_paused" gorm:"default:false"`

	// Relationships
	Teacher     *Teacher       `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Enrollments []StudentGroup `json:"enrollments,omitempty" gorm:"foreignKey:GroupID"`
}

// StudentGroup is the enrollment ledger between one student and one group.
// SessionsTotal - SessionsUsed is the remaining balance; negative means overdue.
type StudentGroup struct {
	BaseModel
	StudentID     uint       `json:"student_id" gorm:"not null;index:idx_student_group"`
	GroupID       uint       `json:"group_id" gorm:"not null;index:idx_student_group"`
	SessionsTotal int        `json:"sessions_total" gorm:"default:0"`
	SessionsUsed  int        `json:"sessions_used" gorm:"default:0"`
	JoinedAt      *time.Time `json:"joined_at"`
	IsActive      bool       `json:"is_active" gorm:"default:true"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Group   Group   `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}

// Discount model. Active discounts stack additively at charge time.
type Discount struct {
	BaseModel
	StudentID       uint    `json:"student_id" gorm:"not null;index"`
	DiscountType    string  `json:"discount_type" gorm:"size:20;not null"` // two_groups, family, special
	IsPercentage    bool    `json:"is_percentage" gorm:"default:false"`
	DiscountValue   float64 `json:"discount_value"`
	LinkedStudentID *uint   `json:"linked_student_id"`
	Notes           string  `json:"notes" gorm:"type:text"`
	IsActive        bool    `json:"is_active" gorm:"default:true"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Payment model. GroupID is nullable so payments survive a group hard delete.
type Payment struct {
	BaseModel
	StudentID         uint      `json:"student_id" gorm:"not null;index"`
	GroupID           *uint     `json:"group_id"`
	PaymentType       string    `json:"payment_type" gorm:"size:20;not null"` // tuition, partial, entrance_fee, event
	Amount            float64   `json:"amount" gorm:"not null"`
	OriginalAmount    float64   `json:"original_amount"`
	DiscountApplied   float64   `json:"discount_applied"`
	SessionsPurchased int       `json:"sessions_purchased"` // meaningful for tuition only
	PaymentDate       time.Time `json:"payment_date" gorm:"not null"`
	ReceiptNo         string    `json:"receipt_no" gorm:"size:40;uniqueIndex"`
	Notes             string    `json:"notes" gorm:"type:text"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Group   *Group  `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}

// Attendance model. One row per (student, group, session_date).
type Attendance struct {
	BaseModel
	StudentID   uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_attendance_key"`
	GroupID     uint       `json:"group_id" gorm:"not null;uniqueIndex:idx_attendance_key"`
	SessionDate time.Time  `json:"session_date" gorm:"not null;uniqueIndex:idx_attendance_key"`
	Status      string     `json:"status" gorm:"size:20;not null"` // present, absent, excused
	Reason      string     `json:"reason" gorm:"size:500"`
	EditedAt    *time.Time `json:"edited_at"`
	EditReason  string     `json:"edit_reason" gorm:"size:500"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Group   Group   `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}

// Event model for school calendar entries
type Event struct {
	BaseModel
	Title           string    `json:"title" gorm:"size:255;not null"`
	EventType       string    `json:"event_type" gorm:"size:30;not null"` // holiday, extra_class, rescheduled, workshop, exam, open_day
	EventDate       time.Time `json:"event_date" gorm:"not null"`
	StartTime       string    `json:"start_time" gorm:"size:20"`
	EndTime         string    `json:"end_time" gorm:"size:20"`
	GroupID         *uint     `json:"group_id"`
	IsPaid          bool      `json:"is_paid" gorm:"default:false"`
	FeeAmount       float64   `json:"fee_amount"`
	AffectsSessions bool      `json:"affects_sessions" gorm:"default:false"`
	Notes           string    `json:"notes" gorm:"type:text"`

	// Relationships
	Group *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}

// ActivityLog is the append-only audit trail written by every mutating
// operation. Rows are never updated, only archived.
type ActivityLog struct {
	BaseModel
	Action     string `json:"action" gorm:"size:100;not null"`
	EntityType string `json:"entity_type" gorm:"size:50;not null"`
	EntityID   *uint  `json:"entity_id"`
	OldValue   JSON   `json:"old_value" gorm:"type:json"`
	NewValue   JSON   `json:"new_value" gorm:"type:json"`
}

// User model for staff accounts
type User struct {
	BaseModel
	Username string `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:255;not null"`
	Email    string `json:"email" gorm:"size:255"`
	Role     string `json:"role" gorm:"size:20;not null;default:'staff'"` // owner, admin, staff
	Status   string `json:"status" gorm:"size:20;not null;default:'active'"`
}

// Notification model for in-app staff alerts
type Notification struct {
	BaseModel
	UserID  uint       `json:"user_id" gorm:"not null;index"`
	Title   string     `json:"title" gorm:"size:255;not null"`
	Message string     `json:"message" gorm:"type:text;not null"`
	Type    string     `json:"type" gorm:"size:20;not null"` // info, warning, error, success
	Read    bool       `json:"read" gorm:"default:false"`
	ReadAt  *time.Time `json:"read_at"`
}

// LogArchive tracks activity-log batches exported to S3
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:20;not null;default:'pending'"` // pending, completed, failed
	Error       string    `json:"error" gorm:"type:text"`
}
