package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rideconnect/internal/controllers"
	"rideconnect/internal/models"
	"rideconnect/internal/realtime"
	"rideconnect/internal/testutil"
)

func TestAssignments(t *testing.T) {
	s := newTestServer(t)
	staffProfile, staff := s.profile("Staff", "staff@pu.edu", models.RoleStaff)
	kofi := testutil.CreateProfile(t, s.db, "Kofi Mensah", "kofi@pu.edu", models.RoleStudent)
	ama := testutil.CreateProfile(t, s.db, "Ama Owusu", "ama@pu.edu", models.RoleStudent)
	yaw := testutil.CreateProfile(t, s.db, "Yaw Darko", "yaw@pu.edu", models.RoleStudent)
	loop := testutil.CreateBus(t, s.db, "PU-01", "Campus Loop", 2)
	tiny := testutil.CreateBus(t, s.db, "PU-09", "Shuttle", 1)

	w := s.do(http.MethodPost, "/staff/assignments", staff, map[string]string{"student_id": kofi.ID.String()})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please select both student and bus", decode(t, w)["error"])

	w = s.do(http.MethodPost, "/staff/assignments", staff, map[string]string{"student_id": "x", "bus_id": loop.ID.String()})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/staff/assignments", staff, map[string]string{"student_id": kofi.ID.String(), "bus_id": loop.ID.String()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)["assignment"]
	assert.Equal(t, staffProfile.ID.String(), field(created, "assigned_by"))
	assert.Equal(t, "Kofi Mensah", field(field(created, "student"), "name"))
	assert.Equal(t, "PU-01", field(field(created, "bus"), "bus_number"))

	w = s.do(http.MethodPost, "/staff/assignments", staff, map[string]string{"student_id": kofi.ID.String(), "bus_id": tiny.ID.String()})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Student is already assigned to a bus", decode(t, w)["error"])

	w = s.do(http.MethodPost, "/staff/assignments", staff, map[string]string{"student_id": staffProfile.ID.String(), "bus_id": loop.ID.String()})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/staff/assignments", staff, map[string]string{"student_id": ama.ID.String(), "bus_id": tiny.ID.String()})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, "/staff/assignments", staff, map[string]string{"student_id": yaw.ID.String(), "bus_id": tiny.ID.String()})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Bus is at full capacity", decode(t, w)["error"])

	w = s.do(http.MethodGet, "/staff/assignments", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataOf(t, w), 2)

	w = s.do(http.MethodGet, "/staff/assignments?q=owusu", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := dataOf(t, w)
	require.Len(t, rows, 1)
	assert.Equal(t, "PU-09", field(field(rows[0], "bus"), "bus_number"))
	assignmentID := field(rows[0], "id").(string)

	w = s.do(http.MethodGet, "/staff/assignments?q=pu-01", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, dataOf(t, w), 1)

	w = s.do(http.MethodGet, "/staff/assignments/export", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bus-roster-")
	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	sheetRows, err := book.GetRows("Roster")
	require.NoError(t, err)
	assert.Len(t, sheetRows, 3)
	require.NoError(t, book.Close())

	w = s.do(http.MethodDelete, "/staff/assignments/"+assignmentID, staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, "/staff/assignments/"+assignmentID, staff, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodDelete, "/staff/assignments/"+uuid.NewString()[:8], staff, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// The freed seat goes to the next student.
	w = s.do(http.MethodPost, "/staff/assignments", staff, map[string]string{"student_id": yaw.ID.String(), "bus_id": tiny.ID.String()})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestListStudents(t *testing.T) {
	s := newTestServer(t)
	_, staff := s.profile("Staff", "staff@pu.edu", models.RoleStaff)
	testutil.CreateProfile(t, s.db, "Zainab", "zainab@pu.edu", models.RoleStudent)
	testutil.CreateProfile(t, s.db, "Abdul", "abdul@pu.edu", models.RoleStudent)
	testutil.CreateProfile(t, s.db, "Admin", "admin@pu.edu", models.RoleAdmin)

	w := s.do(http.MethodGet, "/staff/students", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	students := dataOf(t, w)
	require.Len(t, students, 2)
	assert.Equal(t, "Abdul", field(students[0], "name"))
	assert.Equal(t, "Zainab", field(students[1], "name"))
	assert.Nil(t, field(students[0], "role"))

	w = s.do(http.MethodGet, "/staff/students?q=ZAIN", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataOf(t, w), 1)

	w = s.do(http.MethodGet, "/staff/students?q=nobody", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dataOf(t, w))
}

func TestAnnouncements(t *testing.T) {
	s := newTestServer(t)
	author, staff := s.profile("Transport Office", "office@pu.edu", models.RoleStaff)
	_, student := s.profile("Student", "student@pu.edu", models.RoleStudent)

	for _, body := range []map[string]string{
		{"title": "", "message": "x"},
		{"title": "x", "message": "   "},
	} {
		w := s.do(http.MethodPost, "/staff/announcements", staff, body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Please fill in both title and message", decode(t, w)["error"])
	}

	base := time.Date(2024, 9, 1, 7, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		a := models.Announcement{
			Title:     fmt.Sprintf("Notice %02d", i),
			Message:   "Buses leave on time.",
			CreatedBy: author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.db.Omit("Author").Create(&a).Error)
	}

	w := s.do(http.MethodGet, "/student/announcements", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := dataOf(t, w)
	require.Len(t, feed, 10)
	assert.Equal(t, "Notice 11", field(feed[0], "title"))
	assert.Equal(t, "Notice 02", field(feed[9], "title"))
	assert.Equal(t, "Transport Office", field(field(feed[0], "author"), "name"))
	assert.Equal(t, "staff", field(field(feed[0], "author"), "role"))

	w = s.do(http.MethodGet, "/announcements?limit=3", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataOf(t, w), 3)

	w = s.do(http.MethodGet, "/announcements?limit=1000", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataOf(t, w), 12)

	w = s.do(http.MethodGet, "/announcements?limit=zero", student, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	_, _, cached := s.feed.Get(context.Background(), 10)
	assert.True(t, cached)

	w = s.do(http.MethodPost, "/staff/announcements", staff, map[string]string{"title": " Route change ", "message": "Bus PU-01 now stops at the library."})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	posted := decode(t, w)["announcement"]
	assert.Equal(t, "Route change", field(posted, "title"))
	assert.Equal(t, "Transport Office", field(field(posted, "author"), "name"))

	_, _, cached = s.feed.Get(context.Background(), 10)
	assert.False(t, cached)

	require.Len(t, s.notifier.events, 1)
	ev := s.notifier.events[0]
	assert.Equal(t, realtime.EventAnnouncementCreated, ev.Type)
	var payload controllers.AnnouncementResponse
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	assert.Equal(t, "Route change", payload.Title)

	w = s.do(http.MethodGet, "/student/announcements", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Route change", field(dataOf(t, w)[0], "title"))
}

func TestAnnouncements_StaleFeedWriteAfterPost(t *testing.T) {
	s := newTestServer(t)
	_, staff := s.profile("Transport Office", "office@pu.edu", models.RoleStaff)
	_, student := s.profile("Student", "student@pu.edu", models.RoleStudent)

	// A feed read that started before the post finishes after it.
	_, gen, cached := s.feed.Get(context.Background(), 10)
	require.False(t, cached)

	w := s.do(http.MethodPost, "/staff/announcements", staff, map[string]string{"title": "Holiday timetable", "message": "No buses on Monday."})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	s.feed.Set(context.Background(), gen, 10, []byte(`{"data":[]}`))

	w = s.do(http.MethodGet, "/student/announcements", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := dataOf(t, w)
	require.Len(t, feed, 1)
	assert.Equal(t, "Holiday timetable", field(feed[0], "title"))
}
