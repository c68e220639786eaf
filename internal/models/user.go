package models

// User is one Geolife participant, identified by its data directory name
type User struct {
	ID         string  `json:"id" db:"id" bson:"_id"`
	HasLabels  bool    `json:"hasLabels" db:"has_labels" bson:"has_labels"`
	Activities []int64 `json:"activities" db:"-" bson:"activities"`
}
