package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rideconnect/internal/config"
	"rideconnect/internal/metrics"
	"rideconnect/internal/middleware"
	"rideconnect/internal/models"
	"rideconnect/internal/search"
	"rideconnect/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type assignmentStudent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type assignmentBus struct {
	BusNumber string `json:"bus_number"`
	RouteName string `json:"route_name"`
	Capacity  *int   `json:"capacity"`
}

type AssignmentResponse struct {
	ID         uuid.UUID          `json:"id"`
	StudentID  uuid.UUID          `json:"student_id"`
	BusID      uuid.UUID          `json:"bus_id"`
	AssignedBy *uuid.UUID         `json:"assigned_by"`
	AssignedAt time.Time          `json:"assigned_at"`
	Student    *assignmentStudent `json:"student,omitempty"`
	Bus        assignmentBus      `json:"bus"`
}

func toAssignmentResponse(a models.BusAssignment, withStudent bool) AssignmentResponse {
	resp := AssignmentResponse{
		ID:         a.ID,
		StudentID:  a.StudentID,
		BusID:      a.BusID,
		AssignedBy: a.AssignedBy,
		AssignedAt: a.AssignedAt,
		Bus: assignmentBus{
			BusNumber: a.Bus.BusNumber,
			RouteName: a.Bus.RouteName,
			Capacity:  a.Bus.Capacity,
		},
	}
	if withStudent {
		resp.Student = &assignmentStudent{Name: a.Student.Name, Email: a.Student.Email}
	}
	return resp
}

// ListAssignments joins each assignment with its student and bus, newest
// first. ?q= matches student name or bus number.
func ListAssignments(c *gin.Context) {
	var rows []models.BusAssignment
	query := config.DB.Model(&models.BusAssignment{}).Joins("Student").Joins("Bus")
	query = search.Apply(query, c.Query("q"), `"Student".name`, `"Bus".bus_number`)
	if err := query.Order("bus_assignments.assigned_at DESC").Find(&rows).Error; err != nil {
		respondError(c, err, "Failed to fetch assignments")
		return
	}

	resp := make([]AssignmentResponse, 0, len(rows))
	for _, a := range rows {
		resp = append(resp, toAssignmentResponse(a, true))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func CreateAssignment(c *gin.Context) {
	var input struct {
		StudentID string `json:"student_id"`
		BusID     string `json:"bus_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select both student and bus"})
		return
	}
	input.StudentID = strings.TrimSpace(input.StudentID)
	input.BusID = strings.TrimSpace(input.BusID)
	if input.StudentID == "" || input.BusID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select both student and bus"})
		return
	}
	studentID, err := uuid.Parse(input.StudentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student_id format"})
		return
	}
	busID, err := uuid.Parse(input.BusID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus_id format"})
		return
	}

	staffID := middleware.CurrentUserID(c)
	assignment, err := services.AssignStudent(config.DB, studentID, busID, staffID)
	if err != nil {
		respondError(c, err, "Failed to assign student")
		return
	}
	metrics.AssignmentsTotal.Inc()

	services.RecordAction(config.DB, staffID, models.ActionStudentAssigned, map[string]interface{}{
		"assignment_id": assignment.ID,
		"student_id":    studentID,
		"bus_id":        busID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Student assigned to bus successfully",
		"assignment": toAssignmentResponse(*assignment, true),
	})
}

func DeleteAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	removed, err := services.Unassign(config.DB, id)
	if err != nil {
		respondError(c, err, "Failed to remove assignment")
		return
	}

	services.RecordAction(config.DB, middleware.CurrentUserID(c), models.ActionStudentUnassigned, map[string]interface{}{
		"assignment_id": removed.ID,
		"student_id":    removed.StudentID,
		"bus_id":        removed.BusID,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Assignment removed"})
}

// ExportAssignments downloads the roster as an xlsx workbook.
func ExportAssignments(c *gin.Context) {
	var buf bytes.Buffer
	n, err := services.ExportRoster(config.DB, &buf)
	if err != nil {
		respondError(c, err, "Failed to export roster")
		return
	}
	logrus.WithField("rows", n).Debug("roster exported")

	filename := fmt.Sprintf("bus-roster-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetMyAssignment returns the caller's bus, or a null assignment when the
// student has not been placed yet.
func GetMyAssignment(c *gin.Context) {
	var rows []models.BusAssignment
	err := config.DB.Joins("Bus").
		Where("bus_assignments.student_id = ?", middleware.CurrentUserID(c)).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		respondError(c, err, "Failed to fetch assignment")
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusOK, gin.H{"assignment": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": toAssignmentResponse(rows[0], false)})
}
