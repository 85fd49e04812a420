package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NotificationTypeHearing tags notifications emitted on hearing bookings
const NotificationTypeHearing = "hearing"

// Notification holds the structure for the notification collection in mongo
type Notification struct {
	ID      primitive.ObjectID  `json:"_id,omitempty" bson:"_id,omitempty"`
	Details NotificationDetails `json:"notification" bson:"notification"`
	Version int32               `json:"__v" bson:"__v"`
}

// NotificationDetails holds the structure for the inner notification
// structure as defined in the notification collection in mongo
type NotificationDetails struct {
	UserID    string                 `json:"userID" bson:"userID"`
	Type      string                 `json:"type" bson:"type"`
	Title     string                 `json:"title" bson:"title"`
	Message   string                 `json:"message" bson:"message"`
	Payload   map[string]interface{} `json:"payload" bson:"payload"`
	Read      bool                   `json:"read" bson:"read"`
	CreatedAt primitive.DateTime     `json:"createdAt" bson:"createdAt"`
}
