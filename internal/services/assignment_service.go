package services

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rideconnect/internal/models"
)

// AssignStudent puts a student on a bus. A student holds at most one
// assignment and a bus with a capacity never takes more riders than that.
func AssignStudent(db *gorm.DB, studentID, busID, assignedBy uuid.UUID) (*models.BusAssignment, error) {
	if studentID == uuid.Nil || busID == uuid.Nil {
		return nil, ErrMissingAssignment
	}

	var assignment models.BusAssignment
	err := db.Transaction(func(tx *gorm.DB) error {
		var student models.Profile
		if err := tx.Where("id = ? AND role = ?", studentID, models.RoleStudent).First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}

		// Lock the bus row so concurrent assignments see each other's seats.
		var bus models.Bus
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&bus, "id = ?", busID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBusNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.BusAssignment{}).Where("student_id = ?", studentID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrStudentAlreadyAssigned
		}

		if bus.Capacity != nil {
			var riders int64
			if err := tx.Model(&models.BusAssignment{}).Where("bus_id = ?", busID).Count(&riders).Error; err != nil {
				return err
			}
			if riders >= int64(*bus.Capacity) {
				return ErrBusFull
			}
		}

		by := assignedBy
		assignment = models.BusAssignment{
			StudentID:  studentID,
			BusID:      busID,
			AssignedBy: &by,
			AssignedAt: time.Now(),
		}
		if err := tx.Omit(clause.Associations).Create(&assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrStudentAlreadyAssigned
			}
			return err
		}
		assignment.Student = student
		assignment.Bus = bus
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Unassign removes an assignment and returns the removed row.
func Unassign(db *gorm.DB, id uuid.UUID) (*models.BusAssignment, error) {
	var assignment models.BusAssignment
	if err := db.First(&assignment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if err := db.Delete(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

const rosterSheet = "Roster"

var rosterHeader = []interface{}{"Bus Number", "Route", "Student Name", "Student Email", "Assigned At"}

// ExportRoster writes every assignment, grouped by bus, as an xlsx workbook.
func ExportRoster(db *gorm.DB, w io.Writer) (int, error) {
	var assignments []models.BusAssignment
	if err := db.
		Joins("Bus").
		Joins("Student").
		Order(`"Bus".bus_number ASC`).
		Order(`"Student".name ASC`).
		Find(&assignments).Error; err != nil {
		return 0, fmt.Errorf("load assignments: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rosterSheet); err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(rosterSheet, "A1", &rosterHeader); err != nil {
		return 0, err
	}
	for i, a := range assignments {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		row := []interface{}{
			a.Bus.BusNumber,
			a.Bus.RouteName,
			a.Student.Name,
			a.Student.Email,
			a.AssignedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(rosterSheet, cellName, &row); err != nil {
			return 0, err
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(assignments), nil
}
