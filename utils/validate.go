package utils

import (
	"regexp"
	"strings"
	"time"
)

var (
	phonePattern = regexp.MustCompile(`^\+?1?\d{10}$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// ValidatePhone 校验北美十位号码，允许 +1 前缀
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NormalizePhone 统一为 E.164 格式（+1XXXXXXXXXX）
func NormalizePhone(phone string) string {
	if !ValidatePhone(phone) {
		return phone
	}
	digits := phone
	if digits[0] == '+' {
		digits = digits[1:]
	}
	if len(digits) == 10 {
		digits = "1" + digits
	}
	return "+" + digits
}

// MaskPhone 只保留尾号四位
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

// ValidateZipCode 校验美国邮编，支持 ZIP+4
func ValidateZipCode(zip string) bool {
	return zipPattern.MatchString(zip)
}

// ValidateTimezone 校验 IANA 时区名
func ValidateTimezone(name string) bool {
	if name == "" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}
