package models

// Collection names shared by every store backend
const (
	CollectionUser         = "User"
	CollectionActivity     = "Activity"
	CollectionTrackPoint   = "TrackPoint"
	CollectionIngestionRun = "IngestionRun"
)

// ActivityFilter selects activities; empty fields match everything
type ActivityFilter struct {
	UserID string `form:"user"`
	Mode   string `form:"mode"`
}

// TrackPointOrder is the sort order a store applies to a trackpoint cursor
type TrackPointOrder int

const (
	// OrderByUserActivityTime sorts by (user_id, activity_id, date_time)
	OrderByUserActivityTime TrackPointOrder = iota
	// OrderByTime sorts by date_time only
	OrderByTime
)

// TrackPointQuery describes one streaming pass over the trackpoints
type TrackPointQuery struct {
	ActivityID             int64 // 0 means all activities
	ExcludeUnknownAltitude bool
	Order                  TrackPointOrder
}

// BoundingBox is an inclusive latitude/longitude range
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLon float64 `json:"minLon"`
	MaxLon float64 `json:"maxLon"`
}

// Contains reports whether the point lies inside the box
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
