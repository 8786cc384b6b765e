package repo

import "strings"

func isDupKey(err error) bool {
	// not gorm.ErrDuplicatedKey: it needs TranslateError and each driver words it differently
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
