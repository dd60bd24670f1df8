package services_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rideconnect/internal/models"
	"rideconnect/internal/services"
	"rideconnect/internal/testutil"
)

func TestAddWhitelistedUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	admin := testutil.CreateProfile(t, db, "Admin", "admin@pu.edu", models.RoleAdmin)

	entry, err := services.AddWhitelistedUser(db, admin.ID, services.WhitelistInput{
		Email: "  Ama.Boateng@PU.edu ",
		Name:  " Ama Boateng ",
	})
	require.NoError(t, err)
	assert.Equal(t, "ama.boateng@pu.edu", entry.Email)
	assert.Equal(t, "Ama Boateng", entry.Name)
	assert.Equal(t, models.RoleStudent, entry.Role)
	assert.Equal(t, admin.ID, entry.AddedBy)
	assert.True(t, entry.IsActive)
	assert.False(t, entry.IsRegistered)

	tests := []struct {
		name    string
		in      services.WhitelistInput
		wantErr error
	}{
		{name: "duplicate ignoring case", in: services.WhitelistInput{Email: "AMA.BOATENG@pu.edu", Name: "Again"}, wantErr: services.ErrAlreadyWhitelisted},
		{name: "missing name", in: services.WhitelistInput{Email: "x@pu.edu", Name: "  "}, wantErr: services.ErrMissingUserDetails},
		{name: "missing email", in: services.WhitelistInput{Name: "Nobody"}, wantErr: services.ErrMissingUserDetails},
		{name: "malformed email", in: services.WhitelistInput{Email: "not-an-email", Name: "Nobody"}, wantErr: services.ErrInvalidEmail},
		{name: "unknown role", in: services.WhitelistInput{Email: "y@pu.edu", Name: "Y", Role: "driver"}, wantErr: models.ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.AddWhitelistedUser(db, admin.ID, tt.in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.WhitelistedUser{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSetWhitelistActive(t *testing.T) {
	db := testutil.NewTestDB(t)
	admin := testutil.CreateProfile(t, db, "Admin", "admin@pu.edu", models.RoleAdmin)
	entry, err := services.AddWhitelistedUser(db, admin.ID, services.WhitelistInput{Email: "k@pu.edu", Name: "K"})
	require.NoError(t, err)

	updated, err := services.SetWhitelistActive(db, entry.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	var stored models.WhitelistedUser
	require.NoError(t, db.First(&stored, "id = ?", entry.ID).Error)
	assert.False(t, stored.IsActive)

	_, err = services.SetWhitelistActive(db, uuid.New(), true)
	require.Error(t, err)
}

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportWhitelist(t *testing.T) {
	db := testutil.NewTestDB(t)
	admin := testutil.CreateProfile(t, db, "Admin", "admin@pu.edu", models.RoleAdmin)
	_, err := services.AddWhitelistedUser(db, admin.ID, services.WhitelistInput{Email: "existing@pu.edu", Name: "Existing"})
	require.NoError(t, err)

	buf := workbook(t,
		[]interface{}{"Email", "Name", "Role"},
		[]interface{}{"kofi@pu.edu", "Kofi", "student"},
		[]interface{}{"", " ", ""},
		[]interface{}{"esi@pu.edu", "Esi", "driver"},
		[]interface{}{"EXISTING@pu.edu", "Existing Again", ""},
		[]interface{}{"yaw@pu.edu", "Yaw", "Staff"},
	)

	report, err := services.ImportWhitelist(db, admin.ID, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 2, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 4, report.Errors[0].Row)
	assert.Contains(t, report.Errors[0].Error, "Role must be one of")

	var yaw models.WhitelistedUser
	require.NoError(t, db.First(&yaw, "email = ?", "yaw@pu.edu").Error)
	assert.Equal(t, models.RoleStaff, yaw.Role)
	assert.Equal(t, admin.ID, yaw.AddedBy)
}

func TestImportWhitelist_NotAWorkbook(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := services.ImportWhitelist(db, uuid.New(), strings.NewReader("email,name\nx@pu.edu,X\n"))
	require.Error(t, err)
}
