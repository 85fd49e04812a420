package models

// StatusCount is a single bucket from a group-by-status aggregation
type StatusCount struct {
	ID    string `json:"status" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// MonthCount is a single bucket from a group-by-month aggregation
type MonthCount struct {
	ID    string `json:"month" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}
