package mongorepo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jengzang/geolife-backend-go/internal/models"
)

// millisPerHour converts a date difference to hours
const millisPerHour = 3600000

var hasMode = bson.D{{"$match", bson.D{{"transportation_mode", bson.D{{"$ne", nil}}}}}}

func activityFilter(f models.ActivityFilter) bson.D {
	filter := bson.D{}
	if f.UserID != "" {
		filter = append(filter, bson.E{Key: "user_id", Value: f.UserID})
	}
	if f.Mode != "" {
		filter = append(filter, bson.E{Key: "transportation_mode", Value: f.Mode})
	}
	return filter
}

func usersOwningFilter(activityIDs []int64) bson.D {
	return bson.D{{"activities", bson.D{{"$in", activityIDs}}}}
}

func trackPointFilter(q models.TrackPointQuery) bson.D {
	filter := bson.D{}
	if q.ActivityID != 0 {
		filter = append(filter, bson.E{Key: "activity_id", Value: q.ActivityID})
	}
	if q.ExcludeUnknownAltitude {
		filter = append(filter, bson.E{Key: "altitude", Value: bson.D{{"$ne", models.SentinelAltitude}}})
	}
	return filter
}

func trackPointSort(order models.TrackPointOrder) bson.D {
	if order == models.OrderByTime {
		return bson.D{{"date_time", 1}, {"_id", 1}}
	}
	return bson.D{{"user_id", 1}, {"activity_id", 1}, {"date_time", 1}, {"_id", 1}}
}

func boxFilter(box models.BoundingBox, year int) bson.D {
	filter := bson.D{
		{"lat", bson.D{{"$gte", box.MinLat}, {"$lte", box.MaxLat}}},
		{"lon", bson.D{{"$gte", box.MinLon}, {"$lte", box.MaxLon}}},
	}
	if year != 0 {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		filter = append(filter, bson.E{Key: "date_time", Value: bson.D{{"$gte", from}, {"$lt", from.AddDate(1, 0, 0)}}})
	}
	return filter
}

// withLimit appends a $limit stage unless limit is non-positive
func withLimit(p mongo.Pipeline, limit int) mongo.Pipeline {
	if limit > 0 {
		p = append(p, bson.D{{"$limit", int64(limit)}})
	}
	return p
}

func topUsersPipeline(limit int) mongo.Pipeline {
	return withLimit(mongo.Pipeline{
		{{"$group", bson.D{{"_id", "$user_id"}, {"count", bson.D{{"$sum", 1}}}}}},
		{{"$sort", bson.D{{"count", -1}, {"_id", 1}}}},
	}, limit)
}

func modeCountsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		hasMode,
		{{"$group", bson.D{{"_id", "$transportation_mode"}, {"count", bson.D{{"$sum", 1}}}}}},
		{{"$sort", bson.D{{"count", -1}, {"_id", 1}}}},
	}
}

func modeCountsByUserPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		hasMode,
		{{"$group", bson.D{
			{"_id", bson.D{{"user_id", "$user_id"}, {"mode", "$transportation_mode"}}},
			{"count", bson.D{{"$sum", 1}}},
		}}},
		{{"$project", bson.D{
			{"_id", 0},
			{"user_id", "$_id.user_id"},
			{"mode", "$_id.mode"},
			{"count", 1},
		}}},
		{{"$sort", bson.D{{"user_id", 1}, {"count", -1}, {"mode", 1}}}},
	}
}

func yearCountsPipeline(limit int) mongo.Pipeline {
	return withLimit(mongo.Pipeline{
		{{"$group", bson.D{{"_id", bson.D{{"$year", "$start_date_time"}}}, {"count", bson.D{{"$sum", 1}}}}}},
		{{"$sort", bson.D{{"count", -1}, {"_id", 1}}}},
	}, limit)
}

func yearHoursPipeline(limit int) mongo.Pipeline {
	return withLimit(mongo.Pipeline{
		{{"$group", bson.D{
			{"_id", bson.D{{"$year", "$start_date_time"}}},
			{"millis", bson.D{{"$sum", bson.D{{"$subtract", bson.A{"$end_date_time", "$start_date_time"}}}}}},
		}}},
		{{"$project", bson.D{{"hours", bson.D{{"$divide", bson.A{"$millis", millisPerHour}}}}}}},
		{{"$sort", bson.D{{"hours", -1}, {"_id", 1}}}},
	}, limit)
}
