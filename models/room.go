package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Room statuses. Only active rooms accept bookings; maintenance rooms
// are skipped by the booking form and rejected by the scheduler.
const (
	RoomStatusActive      = "active"
	RoomStatusMaintenance = "maintenance"
)

// DefaultRoomCapacity is applied when a room is created without one
const DefaultRoomCapacity = 20

// Room holds the structure for the room collection in mongo
type Room struct {
	ID      primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Details RoomDetails        `json:"room" bson:"room"`
	Version int32              `json:"__v" bson:"__v"`
}

// RoomDetails holds the structure for the inner room structure as
// defined in the room collection in mongo. Available is a derived
// convenience flag kept in step with the room's hearings; the hearing
// collection stays the source of truth for slot conflicts.
type RoomDetails struct {
	Number    string             `json:"number" bson:"number"`
	Capacity  int                `json:"capacity" bson:"capacity"`
	Location  string             `json:"location" bson:"location"`
	Status    string             `json:"status" bson:"status"`
	Available bool               `json:"available" bson:"available"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
