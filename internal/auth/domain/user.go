package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Disabled     bool
	Role         Role
	CreatedOn    time.Time
	LastLogin    *time.Time
}
