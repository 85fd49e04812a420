package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Hearing states. A hearing opens as open; approved and rejected record
// the judge's decision, completed and cancelled are terminal and release
// the hearing's room slot.
const (
	HearingStateOpen      = "open"
	HearingStateApproved  = "approved"
	HearingStateRejected  = "rejected"
	HearingStateCompleted = "completed"
	HearingStateCancelled = "cancelled"
)

// HearingTerminalStates are excluded from room conflict checks: a slot
// whose hearing reached one of these no longer occupies the room.
var HearingTerminalStates = []string{HearingStateCompleted, HearingStateCancelled}

// HearingTypes lists the accepted hearing categories
var HearingTypes = []string{"initial", "follow-up", "evidence", "testimony", "closing-arguments", "sentencing", "other"}

// Hearing holds the structure for the hearing collection in mongo
type Hearing struct {
	ID      primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Details HearingDetails     `json:"hearing" bson:"hearing"`
	Version int32              `json:"__v" bson:"__v"`
}

// HearingDetails holds the structure for the inner hearing structure as
// defined in the hearing collection in mongo. Date and Time stay as the
// exact strings the client booked with; slot equality is string equality.
type HearingDetails struct {
	CaseID      string             `json:"caseID" bson:"caseID"`
	RoomID      string             `json:"roomID" bson:"roomID"`
	Type        string             `json:"type" bson:"type"`
	Description string             `json:"description" bson:"description"`
	Date        string             `json:"date" bson:"date"`
	Time        string             `json:"time" bson:"time"`
	LawyerID    string             `json:"lawyerID" bson:"lawyerID"`
	JudgeID     string             `json:"judgeID" bson:"judgeID"`
	Status      string             `json:"status" bson:"status"`
	Result      string             `json:"result" bson:"result"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt   primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
