// Package services implements the transport rules shared by the HTTP API and
// the command line: the whitelist procedures, sign-in, and bus assignment.
package services

import (
	"errors"

	"rideconnect/internal/models"
)

var (
	ErrMissingUserDetails     = errors.New("please fill in all user details")
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrMissingCredentials     = errors.New("email and password are required")
	ErrWeakPassword           = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong        = errors.New("password must be at most 72 bytes")
	ErrAlreadyWhitelisted     = errors.New("user with this email is already whitelisted")
	ErrNotWhitelisted         = errors.New("email not found in whitelist")
	ErrAlreadyRegistered      = errors.New("user already registered")
	ErrInvalidCredentials     = errors.New("invalid login credentials")
	ErrMissingAssignment      = errors.New("please select both student and bus")
	ErrStudentNotFound        = errors.New("student not found")
	ErrBusNotFound            = errors.New("bus not found")
	ErrAssignmentNotFound     = errors.New("assignment not found")
	ErrStudentAlreadyAssigned = errors.New("student is already assigned to a bus")
	ErrBusFull                = errors.New("bus is at full capacity")
)

var userMessages = map[error]string{
	ErrMissingUserDetails:     "Please fill in all user details",
	ErrInvalidEmail:           "Please enter a valid email address",
	ErrMissingCredentials:     "Email and password are required",
	ErrWeakPassword:           "Password should be at least 6 characters",
	ErrPasswordTooLong:        "Password should be at most 72 characters",
	ErrAlreadyWhitelisted:     "User with this email is already whitelisted",
	ErrNotWhitelisted:         "Email not found in whitelist. Please contact your administrator.",
	ErrAlreadyRegistered:      "User already registered",
	ErrInvalidCredentials:     "Invalid login credentials",
	ErrMissingAssignment:      "Please select both student and bus",
	ErrStudentNotFound:        "Student not found",
	ErrBusNotFound:            "Bus not found",
	ErrAssignmentNotFound:     "Assignment not found",
	ErrStudentAlreadyAssigned: "Student is already assigned to a bus",
	ErrBusFull:                "Bus is at full capacity",
	models.ErrInvalidRole:     "Role must be one of student, staff or admin",
}

// UserMessage returns the text shown to the user for err. Unknown errors
// pass through unchanged.
func UserMessage(err error) string {
	for sentinel, msg := range userMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return err.Error()
}
