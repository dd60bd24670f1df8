// Package models holds the gorm table definitions of the transport service.
package models

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&Bus{},
		&BusAssignment{},
		&Announcement{},
		&WhitelistedUser{},
		&AnalyticsLog{},
	}
}
