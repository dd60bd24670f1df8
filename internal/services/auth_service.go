package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rideconnect/internal/models"
)

const (
	MinPasswordLength = 6
	// bcrypt only accepts up to 72 bytes of input.
	MaxPasswordLength = 72
)

var validate = validator.New()

// NormalizeEmail lowercases and trims an address so lookups are exact.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// RegisterWhitelistedUser creates the profile for a whitelisted, active email
// that has not registered yet. Name and role come from the whitelist entry.
func RegisterWhitelistedUser(db *gorm.DB, email, password string) (*models.Profile, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var profile models.Profile
	err = db.Transaction(func(tx *gorm.DB) error {
		var entry models.WhitelistedUser
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ? AND is_active = ?", email, true).
			First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotWhitelisted
			}
			return err
		}
		if entry.IsRegistered {
			return ErrAlreadyRegistered
		}

		profile = models.Profile{
			Name:         entry.Name,
			Email:        entry.Email,
			Role:         entry.Role,
			PasswordHash: hash,
		}
		if err := tx.Create(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return err
		}

		return tx.Model(&entry).Updates(map[string]interface{}{
			"is_registered": true,
			"registered_at": time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Authenticate checks an email/password pair.
func Authenticate(db *gorm.DB, email, password string) (*models.Profile, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	var profile models.Profile
	if err := db.Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &profile, nil
}

// BootstrapAdmin creates an admin profile directly, together with a
// registered whitelist entry, so a fresh install has someone to whitelist
// everybody else.
func BootstrapAdmin(db *gorm.DB, email, name, password string) (*models.Profile, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil, ErrMissingUserDetails
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := models.Profile{Name: name, Email: email, Role: models.RoleAdmin, PasswordHash: hash}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return err
		}
		now := time.Now()
		entry := models.WhitelistedUser{
			Email:        email,
			Name:         name,
			Role:         models.RoleAdmin,
			AddedBy:      profile.ID,
			IsActive:     true,
			IsRegistered: true,
			RegisteredAt: &now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyWhitelisted
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
