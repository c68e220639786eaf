package models

import "time"

// Activity is one recorded trajectory file
type Activity struct {
	ID                 int64     `json:"id" db:"id" bson:"_id"`
	UserID             string    `json:"userId" db:"user_id" bson:"user_id"`
	TransportationMode *string   `json:"transportationMode" db:"transportation_mode" bson:"transportation_mode"`
	StartDateTime      time.Time `json:"startDateTime" db:"start_date_time" bson:"start_date_time"`
	EndDateTime        time.Time `json:"endDateTime" db:"end_date_time" bson:"end_date_time"`
	TrackPoints        []int64   `json:"trackPoints,omitempty" db:"-" bson:"track_points"`
}

// Mode returns the transportation mode or "" when unknown
func (a Activity) Mode() string {
	if a.TransportationMode == nil {
		return ""
	}
	return *a.TransportationMode
}

// Duration returns the recorded span of the activity
func (a Activity) Duration() time.Duration {
	return a.EndDateTime.Sub(a.StartDateTime)
}
