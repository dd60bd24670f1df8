package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rideconnect/internal/cache"
	"rideconnect/internal/models"
	"rideconnect/internal/realtime"
	"rideconnect/internal/services"
)

var (
	feed      cache.FeedCache = cache.NoopFeedCache{}
	notifier  realtime.Notifier
	streamHub *realtime.Hub
)

// UseFeedCache installs the announcement feed cache.
func UseFeedCache(c cache.FeedCache) {
	if c == nil {
		c = cache.NoopFeedCache{}
	}
	feed = c
}

// UseRealtime installs the hub serving websocket clients and the notifier
// new announcements are published through (often the hub itself).
func UseRealtime(hub *realtime.Hub, n realtime.Notifier) {
	streamHub = hub
	notifier = n
}

// rpcResult is the {success, message, error, ...} envelope returned by the
// whitelist procedures.
type rpcResult struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message,omitempty"`
	Error    string      `json:"error,omitempty"`
	UserID   string      `json:"user_id,omitempty"`
	Email    string      `json:"email,omitempty"`
	Name     string      `json:"name,omitempty"`
	Role     models.Role `json:"role,omitempty"`
	Token    string      `json:"token,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrMissingUserDetails),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrMissingCredentials),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrPasswordTooLong),
		errors.Is(err, services.ErrMissingAssignment),
		errors.Is(err, models.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotWhitelisted):
		return http.StatusForbidden
	case errors.Is(err, services.ErrStudentNotFound),
		errors.Is(err, services.ErrBusNotFound),
		errors.Is(err, services.ErrAssignmentNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyWhitelisted),
		errors.Is(err, services.ErrAlreadyRegistered),
		errors.Is(err, services.ErrStudentAlreadyAssigned),
		errors.Is(err, services.ErrBusFull),
		errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes the user-facing message for known errors and logs
// anything unexpected, answering with fallback instead of the raw error.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.FullPath()).Error(fallback)
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": services.UserMessage(err)})
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}

// parseLimit reads ?limit= and clamps it to [1, max].
func parseLimit(c *gin.Context, def, max int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	if n > max {
		n = max
	}
	return n, true
}
