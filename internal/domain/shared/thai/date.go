package thai

import (
	"fmt"
	"time"
)

// BuddhistEraOffset converts a Gregorian year to the Thai Buddhist era
const BuddhistEraOffset = 543

var monthNames = [...]string{
	"",
	"มกราคม",
	"กุมภาพันธ์",
	"มีนาคม",
	"เมษายน",
	"พฤษภาคม",
	"มิถุนายน",
	"กรกฎาคม",
	"สิงหาคม",
	"กันยายน",
	"ตุลาคม",
	"พฤศจิกายน",
	"ธันวาคม",
}

// MonthName returns the Thai name of a month
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m]
}

// Date formats t as "31 มกราคม 2568"
func Date(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), MonthName(t.Month()), t.Year()+BuddhistEraOffset)
}

// FormatDate formats t as "31 มกราคม 2568 / 31-01-2025"
func FormatDate(t time.Time) string {
	return Date(t) + " / " + t.Format("02-01-2006")
}
