package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"rideconnect/internal/middleware"
)

const wsWriteWait = 10 * time.Second

// wsOriginAllowed gates browser handshakes. CORS headers do not stop a
// cross-site websocket, so the upgrader checks Origin itself.
var wsOriginAllowed = middleware.OriginChecker(nil)

// UseAllowedOrigins restricts which browser origins may open the stream. An
// empty list accepts any origin.
func UseAllowedOrigins(origins []string) {
	wsOriginAllowed = middleware.OriginChecker(origins)
}

// upgrader configures the WebSocket connection. Clients that send no Origin
// are not browsers and are let through.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || wsOriginAllowed(origin)
	},
}

// wsClient adapts a websocket connection to realtime.Client.
type wsClient struct {
	conn *websocket.Conn
}

func (w *wsClient) WriteJSON(v interface{}) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return w.conn.WriteJSON(v)
}

func (w *wsClient) Close() error {
	return w.conn.Close()
}

// StreamAnnouncements upgrades to a websocket that receives every new
// announcement. Browsers cannot set headers on the handshake, so the JWT
// travels in ?token=.
func StreamAnnouncements(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
		return
	}
	claims, err := middleware.ValidateToken(tokenString)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket connection attempt with invalid token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if streamHub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "announcement stream is not available"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}

	defer conn.Close()

	client := &wsClient{conn: conn}
	streamHub.Register(client)
	defer streamHub.Unregister(client)

	fields := logrus.Fields{
		"user_id":  claims.UserID,
		"role":     claims.Role,
		"conn_ptr": fmt.Sprintf("%p", conn),
	}
	logrus.WithFields(fields).Info("Announcement stream connected.")

	// Clients only listen; reading drains control frames and notices the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithFields(fields).Debug("announcement stream read error")
			}
			break
		}
	}
	logrus.WithFields(fields).Info("Announcement stream closed.")
}
