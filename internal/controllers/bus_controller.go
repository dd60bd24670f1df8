package controllers

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	"gorm.io/gorm"

	"rideconnect/internal/config"
	"rideconnect/internal/middleware"
	"rideconnect/internal/models"
	"rideconnect/internal/search"
	"rideconnect/internal/services"
)

var errInvalidRoutePath = errors.New("route_path must be a GeoJSON LineString with at least two points")

// BusResponse mirrors models.Bus with the route line as GeoJSON and the
// number of students currently assigned.
type BusResponse struct {
	ID        uuid.UUID       `json:"id"`
	BusNumber string          `json:"bus_number"`
	RouteName string          `json:"route_name"`
	Capacity  *int            `json:"capacity"`
	Riders    int64           `json:"riders"`
	RoutePath json.RawMessage `json:"route_path,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toBusResponse(bus models.Bus, riders int64) BusResponse {
	path, err := convertWKBToGeoJSON(bus.RoutePath)
	if err != nil {
		logrus.WithError(err).WithField("bus_id", bus.ID).Warn("stored route_path is not valid WKB")
	}
	return BusResponse{
		ID:        bus.ID,
		BusNumber: bus.BusNumber,
		RouteName: bus.RouteName,
		Capacity:  bus.Capacity,
		Riders:    riders,
		RoutePath: path,
		CreatedAt: bus.CreatedAt,
		UpdatedAt: bus.UpdatedAt,
	}
}

// parseRoutePath turns a GeoJSON LineString into WKB. Empty input and JSON
// null both mean "no route line".
func parseRoutePath(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal(trimmed, &g); err != nil {
		return nil, err
	}
	line, ok := g.(*geom.LineString)
	if !ok || line.NumCoords() < 2 {
		return nil, errInvalidRoutePath
	}
	return wkb.Marshal(line, binary.LittleEndian)
}

// convertWKBToGeoJSON converts WKB bytes into GeoJSON.
func convertWKBToGeoJSON(wkbBytes []byte) (json.RawMessage, error) {
	if len(wkbBytes) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return nil, err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ridersByBus counts assignments per bus.
func ridersByBus(db *gorm.DB) (map[uuid.UUID]int64, error) {
	var rows []struct {
		BusID uuid.UUID
		Total int64
	}
	err := db.Model(&models.BusAssignment{}).
		Select("bus_id, COUNT(*) AS total").
		Group("bus_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.BusID] = r.Total
	}
	return counts, nil
}

func listBuses(c *gin.Context, order string) {
	var buses []models.Bus
	query := search.Apply(config.DB.Model(&models.Bus{}), c.Query("q"), "bus_number", "route_name")
	if err := query.Order(order).Find(&buses).Error; err != nil {
		respondError(c, err, "Failed to fetch buses")
		return
	}
	riders, err := ridersByBus(config.DB)
	if err != nil {
		respondError(c, err, "Failed to fetch buses")
		return
	}

	resp := make([]BusResponse, 0, len(buses))
	for _, b := range buses {
		resp = append(resp, toBusResponse(b, riders[b.ID]))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ListBuses is the admin view, newest first.
func ListBuses(c *gin.Context) {
	listBuses(c, "created_at DESC")
}

// ListBusesByNumber is the staff view, ordered by bus number.
func ListBusesByNumber(c *gin.Context) {
	listBuses(c, "bus_number ASC")
}

func CreateBus(c *gin.Context) {
	var input struct {
		BusNumber string          `json:"bus_number"`
		RouteName string          `json:"route_name"`
		Capacity  *int            `json:"capacity"`
		RoutePath json.RawMessage `json:"route_path"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateBus: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all bus details"})
		return
	}

	input.BusNumber = strings.TrimSpace(input.BusNumber)
	input.RouteName = strings.TrimSpace(input.RouteName)
	if input.BusNumber == "" || input.RouteName == "" || input.Capacity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all bus details"})
		return
	}
	if *input.Capacity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Capacity must be a positive number"})
		return
	}

	path, err := parseRoutePath(input.RoutePath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route_path: " + err.Error()})
		return
	}

	bus := models.Bus{
		BusNumber: input.BusNumber,
		RouteName: input.RouteName,
		Capacity:  input.Capacity,
		RoutePath: path,
	}
	if err := config.DB.Create(&bus).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A bus with this number already exists"})
			return
		}
		respondError(c, err, "Failed to create bus")
		return
	}

	services.RecordAction(config.DB, middleware.CurrentUserID(c), models.ActionBusCreated, map[string]interface{}{
		"bus_id":     bus.ID,
		"bus_number": bus.BusNumber,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Bus created successfully",
		"bus":     toBusResponse(bus, 0),
	})
}

// UpdateBus applies the fields present in the body. A capacity below the
// current number of riders is refused.
func UpdateBus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input struct {
		BusNumber *string         `json:"bus_number"`
		RouteName *string         `json:"route_name"`
		Capacity  *int            `json:"capacity"`
		RoutePath json.RawMessage `json:"route_path"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var bus models.Bus
	if err := config.DB.First(&bus, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		respondError(c, err, "Failed to fetch bus")
		return
	}

	if input.BusNumber != nil {
		v := strings.TrimSpace(*input.BusNumber)
		if v == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all bus details"})
			return
		}
		bus.BusNumber = v
	}
	if input.RouteName != nil {
		v := strings.TrimSpace(*input.RouteName)
		if v == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all bus details"})
			return
		}
		bus.RouteName = v
	}

	var riders int64
	if err := config.DB.Model(&models.BusAssignment{}).Where("bus_id = ?", bus.ID).Count(&riders).Error; err != nil {
		respondError(c, err, "Failed to fetch bus")
		return
	}
	if input.Capacity != nil {
		if *input.Capacity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Capacity must be a positive number"})
			return
		}
		if int64(*input.Capacity) < riders {
			c.JSON(http.StatusConflict, gin.H{"error": "Capacity is below the number of assigned students"})
			return
		}
		bus.Capacity = input.Capacity
	}
	if input.RoutePath != nil {
		path, err := parseRoutePath(input.RoutePath)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route_path: " + err.Error()})
			return
		}
		bus.RoutePath = path
	}

	if err := config.DB.Save(&bus).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A bus with this number already exists"})
			return
		}
		respondError(c, err, "Failed to update bus")
		return
	}

	services.RecordAction(config.DB, middleware.CurrentUserID(c), models.ActionBusUpdated, map[string]interface{}{
		"bus_id": bus.ID,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Bus updated successfully", "bus": toBusResponse(bus, riders)})
}

// DeleteBus refuses while any student is still assigned to the bus.
func DeleteBus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var bus models.Bus
	if err := config.DB.First(&bus, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		respondError(c, err, "Failed to fetch bus")
		return
	}

	var riders int64
	if err := config.DB.Model(&models.BusAssignment{}).Where("bus_id = ?", bus.ID).Count(&riders).Error; err != nil {
		respondError(c, err, "Failed to delete bus")
		return
	}
	if riders > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Bus still has assigned students"})
		return
	}

	if err := config.DB.Delete(&bus).Error; err != nil {
		respondError(c, err, "Failed to delete bus")
		return
	}

	services.RecordAction(config.DB, middleware.CurrentUserID(c), models.ActionBusDeleted, map[string]interface{}{
		"bus_id":     bus.ID,
		"bus_number": bus.BusNumber,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Bus deleted successfully"})
}
