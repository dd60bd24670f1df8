package services

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"rideconnect/internal/models"
)

type WhitelistInput struct {
	Email string
	Name  string
	Role  string
}

// AddWhitelistedUser pre-authorizes an email. Role defaults to student.
func AddWhitelistedUser(db *gorm.DB, addedBy uuid.UUID, in WhitelistInput) (*models.WhitelistedUser, error) {
	email := NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return nil, ErrMissingUserDetails
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := db.Model(&models.WhitelistedUser{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check whitelist: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyWhitelisted
	}

	entry := models.WhitelistedUser{
		Email:    email,
		Name:     name,
		Role:     role,
		AddedBy:  addedBy,
		IsActive: true,
	}
	if err := db.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyWhitelisted
		}
		return nil, fmt.Errorf("insert whitelist entry: %w", err)
	}
	return &entry, nil
}

// SetWhitelistActive toggles whether an entry may still be used to register.
func SetWhitelistActive(db *gorm.DB, id uuid.UUID, active bool) (*models.WhitelistedUser, error) {
	var entry models.WhitelistedUser
	if err := db.First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entry).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	entry.IsActive = active
	return &entry, nil
}

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportReport struct {
	Imported   int        `json:"imported"`
	Skipped    int        `json:"skipped"`
	Duplicates int        `json:"duplicates"`
	Errors     []RowError `json:"errors,omitempty"`
}

// ImportWhitelist reads the first sheet of an xlsx workbook with the columns
// email, name, role (header row first) and whitelists every row.
func ImportWhitelist(db *gorm.DB, addedBy uuid.UUID, file io.Reader) (*ImportReport, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Warn("ImportWhitelist: closing workbook")
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}

	report := &ImportReport{}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		in := WhitelistInput{Email: cell(row, 0), Name: cell(row, 1), Role: cell(row, 2)}
		if in.Email == "" && in.Name == "" {
			report.Skipped++
			continue
		}

		_, err := AddWhitelistedUser(db, addedBy, in)
		switch {
		case err == nil:
			report.Imported++
		case errors.Is(err, ErrAlreadyWhitelisted):
			report.Duplicates++
		default:
			report.Skipped++
			report.Errors = append(report.Errors, RowError{Row: i + 1, Error: UserMessage(err)})
		}
	}

	logrus.WithFields(logrus.Fields{
		"sheet":      sheetName,
		"imported":   report.Imported,
		"duplicates": report.Duplicates,
		"skipped":    report.Skipped,
	}).Info("Whitelist import finished")
	return report, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
