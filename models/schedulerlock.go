package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// SchedulerLock holds the structure for the schedulerlocks collection
// in mongo. Cron jobs take a lock before running so that only one
// instance executes a given job.
type SchedulerLock struct {
	ID         string             `json:"_id" bson:"_id"` // job name
	InstanceID string             `json:"instanceID" bson:"instanceID"`
	ExpiresAt  primitive.DateTime `json:"expiresAt" bson:"expiresAt"`
	AcquiredAt primitive.DateTime `json:"acquiredAt" bson:"acquiredAt"`
}
