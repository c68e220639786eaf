package models

import "time"

// SentinelAltitude marks a fix whose altitude was not recorded.
const SentinelAltitude = -777

// TrackPoint represents a single GPS fix belonging to one activity
type TrackPoint struct {
	ID         int64     `json:"id" db:"id" bson:"_id"`
	UserID     string    `json:"userId" db:"user_id" bson:"user_id"`
	ActivityID int64     `json:"activityId" db:"activity_id" bson:"activity_id"`
	Latitude   float64   `json:"lat" db:"lat" bson:"lat"`
	Longitude  float64   `json:"lon" db:"lon" bson:"lon"`
	Altitude   float64   `json:"altitude" db:"altitude" bson:"altitude"`   // Feet, SentinelAltitude when unknown
	DateDays   float64   `json:"dateDays" db:"date_days" bson:"date_days"` // Days since 1899-12-30, as recorded
	DateTime   time.Time `json:"dateTime" db:"date_time" bson:"date_time"`
}

// HasAltitude reports whether the altitude was recorded
func (p TrackPoint) HasAltitude() bool {
	return p.Altitude != SentinelAltitude
}
