package models

// CollectionCounts holds the number of documents per collection
type CollectionCounts struct {
	Users       int64 `json:"users"`
	Activities  int64 `json:"activities"`
	TrackPoints int64 `json:"trackPoints"`
}

// UserActivityCount is the number of activities owned by a user
type UserActivityCount struct {
	UserID     string `json:"userId" bson:"_id"`
	Activities int64  `json:"activities" bson:"count"`
}

// ModeCount is the number of activities tagged with a transportation mode
type ModeCount struct {
	Mode       string `json:"mode" bson:"_id"`
	Activities int64  `json:"activities" bson:"count"`
}

// UserModeCount is the number of a user's activities tagged with a mode
type UserModeCount struct {
	UserID     string `json:"userId" bson:"user_id"`
	Mode       string `json:"mode" bson:"mode"`
	Activities int64  `json:"activities" bson:"count"`
}

// YearActivityCount is the number of activities started in a calendar year
type YearActivityCount struct {
	Year       int   `json:"year" bson:"_id"`
	Activities int64 `json:"activities" bson:"count"`
}

// YearHours is the total recorded hours of activities started in a year
type YearHours struct {
	Year  int     `json:"year" bson:"_id"`
	Hours float64 `json:"hours" bson:"hours"`
}

// BusiestYear compares the year with most activities to the year with most hours
type BusiestYear struct {
	ByActivities YearActivityCount `json:"byActivities"`
	ByHours      YearHours         `json:"byHours"`
	Agree        bool              `json:"agree"`
}

// UserAltitudeGain is the total altitude climbed by a user, in meters
type UserAltitudeGain struct {
	UserID string  `json:"userId"`
	Meters float64 `json:"meters"`
}

// UserInvalidCount is the number of invalid activities of a user
type UserInvalidCount struct {
	UserID  string `json:"userId"`
	Invalid int    `json:"invalidActivities"`
}

// UserMode is the transportation mode a user registered most often
type UserMode struct {
	UserID     string `json:"userId"`
	Mode       string `json:"mode"`
	Activities int64  `json:"activities"`
}

// DistanceReport is the distance one user covered with a mode during a year
type DistanceReport struct {
	UserID     string  `json:"userId"`
	Mode       string  `json:"mode"`
	Year       int     `json:"year"`
	Activities int     `json:"activities"`
	Meters     float64 `json:"meters"`
}

// Kilometers returns the distance in kilometers
func (d DistanceReport) Kilometers() float64 {
	return d.Meters / 1000
}

// NearbyReport lists the users with a fix close to a point
type NearbyReport struct {
	Latitude  float64     `json:"lat"`
	Longitude float64     `json:"lon"`
	Radius    float64     `json:"radiusMeters"`
	Year      int         `json:"year,omitempty"`
	Box       BoundingBox `json:"boundingBox"`
	Users     []string    `json:"users"`
}
