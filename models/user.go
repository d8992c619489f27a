package models

import "time"

type Plan string

const (
	PlanStarter Plan = "Starter"
	PlanPro     Plan = "Pro"
	PlanElite   Plan = "Elite"
)

const RoleOrganizer = "organizer"

// User is an organizer account. Every championship belongs to exactly one.
type User struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Plan         Plan      `json:"plan" db:"plan"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
