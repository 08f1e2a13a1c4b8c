package models

import "time"

// DefaultTokenName is the name given to tokens issued on register and login.
const DefaultTokenName = "auth_token"

type Token struct {
	ID         string
	UserID     string
	Name       string
	LastUsedAt *time.Time
	CreatedAt  time.Time
}
