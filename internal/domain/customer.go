package domain

import "time"

type Customer struct {
	ID           int32      `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"`
	LastLoginOn  *time.Time `json:"last_login_on,omitempty"`
	CreatedOn    time.Time  `json:"created_on"`
}
