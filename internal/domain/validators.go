package domain

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// IsValidEmail - проверка формата email
func IsValidEmail(email string) bool {
	return emailRe.MatchString(strings.ToLower(email))
}

// IsValidPhone - проверка телефона, пробелы игнорируются
func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(strings.Join(strings.Fields(phone), ""))
}
