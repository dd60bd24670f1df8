// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"rideconnect/internal/config"
	"rideconnect/internal/models"
)

// NewTestDB opens a migrated in-memory SQLite database and installs it as
// config.DB. The pool holds a single connection so every query sees the same
// database.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))

	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })
	return db
}

// CreateProfile inserts a profile. The password hash is left empty, so the
// profile cannot sign in.
func CreateProfile(t testing.TB, db *gorm.DB, name, email string, role models.Role) models.Profile {
	t.Helper()
	p := models.Profile{Name: name, Email: email, Role: role}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func CreateBus(t testing.TB, db *gorm.DB, number, route string, capacity int) models.Bus {
	t.Helper()
	b := models.Bus{BusNumber: number, RouteName: route, Capacity: &capacity}
	require.NoError(t, db.Create(&b).Error)
	return b
}

func CreateAssignment(t testing.TB, db *gorm.DB, student, bus uuid.UUID, at time.Time) models.BusAssignment {
	t.Helper()
	a := models.BusAssignment{StudentID: student, BusID: bus, AssignedAt: at}
	require.NoError(t, db.Omit("Student", "Bus").Create(&a).Error)
	return a
}
