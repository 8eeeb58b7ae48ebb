package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a conditional decrement matched no row.
var ErrInsufficientStock = errors.New("insufficient stock")

// conn picks the caller's transaction when one is given.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
