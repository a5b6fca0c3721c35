package utils

import (
	"strings"
	"time"
)

const (
	layoutDate      = "2006-01-02"
	layoutTimestamp = "20060102150405"
)

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// FormatDate formats time to YYYY-MM-DD in local timezone.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(layoutDate)
}

// GatewayTimestamp formats time to the compact YYYYMMDDHHMMSS layout the
// payment gateway expects in push/query passwords and callback metadata.
func GatewayTimestamp(t time.Time) string {
	return t.Format(layoutTimestamp)
}

// ParseGatewayTimestamp parses the compact gateway layout; zero time on failure.
func ParseGatewayTimestamp(s string) time.Time {
	t, err := time.ParseInLocation(layoutTimestamp, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
