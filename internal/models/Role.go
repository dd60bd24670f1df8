package models

import (
	"errors"
	"strings"
)

// Role mirrors the app_role enum: every profile and whitelist entry carries one.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole normalizes input and falls back to student when it is blank.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if role == "" {
		return RoleStudent, nil
	}
	if !role.Valid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// HomePath is the dashboard a signed-in user lands on.
func (r Role) HomePath() string {
	switch r {
	case RoleStudent:
		return "/student"
	case RoleStaff:
		return "/staff"
	case RoleAdmin:
		return "/admin"
	default:
		return "/"
	}
}
