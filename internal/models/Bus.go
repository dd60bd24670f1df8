package models

import "time"

// Bus is a vehicle serving one named route. Capacity is optional in storage
// but required when a bus is created through the API.
type Bus struct {
	Base
	BusNumber string `json:"bus_number" gorm:"uniqueIndex;not null"`
	RouteName string `json:"route_name" gorm:"not null"`
	Capacity  *int   `json:"capacity"`

	// Route line stored as WKB; the API speaks GeoJSON.
	RoutePath []byte `json:"-" gorm:"type:bytea"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Bus) TableName() string { return "buses" }
