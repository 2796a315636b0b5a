package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Password  []byte    `db:"password" json:"-"`
	IsStaff   bool      `db:"is_staff" json:"is_staff"`
	LastLogin time.Time `db:"last_login,omitempty" json:"last_login,omitempty"`
}
