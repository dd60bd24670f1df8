package controllers

import (
	"context"
	"encoding/json"
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
	"rideconnect/internal/realtime"
	"rideconnect/internal/services"
)

const (
	defaultFeedLimit = 10
	maxFeedLimit     = 100
)

type announcementAuthor struct {
	Name string      `json:"name"`
	Role models.Role `json:"role"`
}

type AnnouncementResponse struct {
	ID        uuid.UUID          `json:"id"`
	Title     string             `json:"title"`
	Message   string             `json:"message"`
	CreatedBy uuid.UUID          `json:"created_by"`
	CreatedAt time.Time          `json:"created_at"`
	Author    announcementAuthor `json:"author"`
}

func toAnnouncementResponse(a models.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:        a.ID,
		Title:     a.Title,
		Message:   a.Message,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
		Author:    announcementAuthor{Name: a.Author.Name, Role: a.Author.Role},
	}
}

// CreateAnnouncement stores the post, drops the cached feed and pushes the
// post to live subscribers.
func CreateAnnouncement(c *gin.Context) {
	var input struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in both title and message"})
		return
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Message = strings.TrimSpace(input.Message)
	if input.Title == "" || input.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in both title and message"})
		return
	}

	authorID := middleware.CurrentUserID(c)
	announcement := models.Announcement{
		Title:     input.Title,
		Message:   input.Message,
		CreatedBy: authorID,
	}
	if err := config.DB.Omit("Author").Create(&announcement).Error; err != nil {
		respondError(c, err, "Failed to post announcement")
		return
	}
	if err := config.DB.First(&announcement.Author, "id = ?", authorID).Error; err != nil {
		logrus.WithError(err).WithField("user_id", authorID).Warn("announcement author not found")
	}
	metrics.AnnouncementsTotal.Inc()

	resp := toAnnouncementResponse(announcement)
	feed.Invalidate(c.Request.Context())
	publishAnnouncement(c.Request.Context(), resp)

	services.RecordAction(config.DB, authorID, models.ActionAnnouncementPosted, map[string]interface{}{
		"announcement_id": announcement.ID,
		"title":           announcement.Title,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Announcement created successfully",
		"announcement": resp,
	})
}

func publishAnnouncement(ctx context.Context, resp AnnouncementResponse) {
	if notifier == nil {
		return
	}
	ev, err := realtime.NewEvent(realtime.EventAnnouncementCreated, resp)
	if err != nil {
		logrus.WithError(err).Error("failed to encode announcement event")
		return
	}
	if err := notifier.Notify(ctx, ev); err != nil {
		logrus.WithError(err).Warn("failed to publish announcement event")
	}
}

// ListAnnouncements serves the newest announcements with their authors,
// from the feed cache when it holds this page.
func ListAnnouncements(c *gin.Context) {
	limit, ok := parseLimit(c, defaultFeedLimit, maxFeedLimit)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	payload, gen, hit := feed.Get(ctx, limit)
	if hit {
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
		return
	}

	var rows []models.Announcement
	err := config.DB.Joins("Author").
		Order("announcements.created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		respondError(c, err, "Failed to fetch announcements")
		return
	}

	resp := make([]AnnouncementResponse, 0, len(rows))
	for _, a := range rows {
		resp = append(resp, toAnnouncementResponse(a))
	}
	payload, err = json.Marshal(gin.H{"data": resp})
	if err != nil {
		respondError(c, err, "Failed to fetch announcements")
		return
	}
	feed.Set(ctx, gen, limit, payload)
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}
