package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateRandomString generates a random string of specified length
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// IsValidRole checks if a staff role is valid
func IsValidRole(role string) bool {
	switch role {
	case "owner", "admin", "staff":
		return true
	}
	return false
}

// IsValidStudentStatus checks if a student status is valid
func IsValidStudentStatus(status string) bool {
	switch status {
	case "active", "paused", "dropped":
		return true
	}
	return false
}

// IsValidAttendanceStatus checks if an attendance status is valid
func IsValidAttendanceStatus(status string) bool {
	switch status {
	case "present", "absent", "excused":
		return true
	}
	return false
}

// IsValidPaymentType checks if a payment type is valid
func IsValidPaymentType(paymentType string) bool {
	switch paymentType {
	case "tuition", "partial", "entrance_fee", "event":
		return true
	}
	return false
}

// IsValidDiscountType checks if a discount type is valid
func IsValidDiscountType(discountType string) bool {
	switch discountType {
	case "two_groups", "family", "special":
		return true
	}
	return false
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)
	return input
}
