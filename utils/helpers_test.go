package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Error("hash equals plaintext")
	}
	if err := CheckPassword("correct horse battery staple", hash); err != nil {
		t.Errorf("CheckPassword() with right password error = %v", err)
	}
	if err := CheckPassword("wrong", hash); err == nil {
		t.Error("CheckPassword() accepted wrong password")
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(string) bool
		value string
		want  bool
	}{
		{"valid role", IsValidRole, "admin", true},
		{"invalid role", IsValidRole, "teacher", false},
		{"valid student status", IsValidStudentStatus, "paused", true},
		{"invalid student status", IsValidStudentStatus, "inactive", false},
		{"valid attendance status", IsValidAttendanceStatus, "excused", true},
		{"invalid attendance status", IsValidAttendanceStatus, "late", false},
		{"valid payment type", IsValidPaymentType, "entrance_fee", true},
		{"invalid payment type", IsValidPaymentType, "refund", false},
		{"valid discount type", IsValidDiscountType, "two_groups", true},
		{"invalid discount type", IsValidDiscountType, "loyalty", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.value); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeString() = %q", got)
	}
}
