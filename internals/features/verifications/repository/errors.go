package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"compsphere_backend/internals/features/verifications/token"
)

var (
	ErrNotFound               = errors.New("verification not found")
	ErrAlreadyConsumed        = errors.New("verification already used")
	ErrDuplicateActiveSubject = errors.New("subject already has an active verification")
	ErrTokenCollision         = token.ErrTokenCollision
)

// isDuplicateKey: gorm.ErrDuplicatedKey (TranslateError) atau fallback cek pesan driver
// (Postgres 23505 / SQLite "UNIQUE constraint failed").
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
