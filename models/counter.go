package models

// Counter holds the structure for the counters collection in mongo.
// One document per sequence, keyed by name (e.g. "case-2025"), bumped
// with an atomic $inc upsert.
type Counter struct {
	ID  string `json:"_id" bson:"_id"`
	Seq int64  `json:"seq" bson:"seq"`
}
