package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Report holds the structure for the reports collection in mongo. Only
// metadata is stored here; the generated file itself lives outside this
// service.
type Report struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details ReportDetails      `json:"report" bson:"report"`
	Version int32              `json:"__v" bson:"__v"`
}

// ReportDetails holds the structure for the inner report details
type ReportDetails struct {
	FileName string `json:"fileName" bson:"fileName"`

	// Type: "cases", "hearings", "users"
	Type string `json:"type" bson:"type"`

	// Month in "YYYY-MM" format
	Month string `json:"month" bson:"month"`

	JudgeID string `json:"judgeID" bson:"judgeID"`

	// RecordCount is how many rows the report covered at creation time
	RecordCount int64 `json:"recordCount" bson:"recordCount"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
