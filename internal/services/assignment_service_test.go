package services_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rideconnect/internal/models"
	"rideconnect/internal/services"
	"rideconnect/internal/testutil"
)

func TestAssignStudent(t *testing.T) {
	db := testutil.NewTestDB(t)
	staff := testutil.CreateProfile(t, db, "Staff", "staff@pu.edu", models.RoleStaff)
	kofi := testutil.CreateProfile(t, db, "Kofi", "kofi@pu.edu", models.RoleStudent)
	ama := testutil.CreateProfile(t, db, "Ama", "ama@pu.edu", models.RoleStudent)
	bus := testutil.CreateBus(t, db, "PU-01", "Campus Loop", 40)

	assignment, err := services.AssignStudent(db, kofi.ID, bus.ID, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, kofi.ID, assignment.StudentID)
	assert.Equal(t, bus.ID, assignment.BusID)
	require.NotNil(t, assignment.AssignedBy)
	assert.Equal(t, staff.ID, *assignment.AssignedBy)
	assert.Equal(t, "Kofi", assignment.Student.Name)
	assert.Equal(t, "PU-01", assignment.Bus.BusNumber)

	tests := []struct {
		name    string
		student uuid.UUID
		bus     uuid.UUID
		wantErr error
	}{
		{name: "second assignment", student: kofi.ID, bus: bus.ID, wantErr: services.ErrStudentAlreadyAssigned},
		{name: "staff is not a student", student: staff.ID, bus: bus.ID, wantErr: services.ErrStudentNotFound},
		{name: "unknown student", student: uuid.New(), bus: bus.ID, wantErr: services.ErrStudentNotFound},
		{name: "unknown bus", student: ama.ID, bus: uuid.New(), wantErr: services.ErrBusNotFound},
		{name: "missing student", student: uuid.Nil, bus: bus.ID, wantErr: services.ErrMissingAssignment},
		{name: "missing bus", student: ama.ID, bus: uuid.Nil, wantErr: services.ErrMissingAssignment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.AssignStudent(db, tt.student, tt.bus, staff.ID)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.BusAssignment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAssignStudent_Capacity(t *testing.T) {
	db := testutil.NewTestDB(t)
	staff := testutil.CreateProfile(t, db, "Staff", "staff@pu.edu", models.RoleStaff)
	first := testutil.CreateProfile(t, db, "First", "first@pu.edu", models.RoleStudent)
	second := testutil.CreateProfile(t, db, "Second", "second@pu.edu", models.RoleStudent)
	small := testutil.CreateBus(t, db, "PU-02", "Shuttle", 1)

	_, err := services.AssignStudent(db, first.ID, small.ID, staff.ID)
	require.NoError(t, err)

	_, err = services.AssignStudent(db, second.ID, small.ID, staff.ID)
	require.ErrorIs(t, err, services.ErrBusFull)

	// A bus without a recorded capacity takes anyone.
	open := models.Bus{BusNumber: "PU-03", RouteName: "Open"}
	require.NoError(t, db.Create(&open).Error)
	_, err = services.AssignStudent(db, second.ID, open.ID, staff.ID)
	require.NoError(t, err)
}

func TestUnassign(t *testing.T) {
	db := testutil.NewTestDB(t)
	staff := testutil.CreateProfile(t, db, "Staff", "staff@pu.edu", models.RoleStaff)
	student := testutil.CreateProfile(t, db, "Kwame", "kwame@pu.edu", models.RoleStudent)
	bus := testutil.CreateBus(t, db, "PU-01", "Campus Loop", 1)

	assignment, err := services.AssignStudent(db, student.ID, bus.ID, staff.ID)
	require.NoError(t, err)

	removed, err := services.Unassign(db, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, removed.StudentID)

	_, err = services.Unassign(db, assignment.ID)
	require.ErrorIs(t, err, services.ErrAssignmentNotFound)

	// The freed seat can be taken again.
	_, err = services.AssignStudent(db, student.ID, bus.ID, staff.ID)
	require.NoError(t, err)
}

func TestExportRoster(t *testing.T) {
	db := testutil.NewTestDB(t)
	zoe := testutil.CreateProfile(t, db, "Zoe", "zoe@pu.edu", models.RoleStudent)
	abe := testutil.CreateProfile(t, db, "Abe", "abe@pu.edu", models.RoleStudent)
	kat := testutil.CreateProfile(t, db, "Kat", "kat@pu.edu", models.RoleStudent)
	b2 := testutil.CreateBus(t, db, "PU-02", "North", 10)
	b1 := testutil.CreateBus(t, db, "PU-01", "South", 10)

	at := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	testutil.CreateAssignment(t, db, zoe.ID, b1.ID, at)
	testutil.CreateAssignment(t, db, abe.ID, b1.ID, at)
	testutil.CreateAssignment(t, db, kat.ID, b2.ID, at)

	var buf bytes.Buffer
	n, err := services.ExportRoster(db, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Roster")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Bus Number", "Route", "Student Name", "Student Email", "Assigned At"}, rows[0])
	assert.Equal(t, []string{"PU-01", "South", "Abe", "abe@pu.edu", "2024-09-02T08:00:00Z"}, rows[1])
	assert.Equal(t, "Zoe", rows[2][2])
	assert.Equal(t, "PU-02", rows[3][0])
}
