package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User roles
const (
	RoleClient = "client"
	RoleLawyer = "lawyer"
	RoleJudge  = "judge"
	RoleAdmin  = "admin"
)

// User holds the structure for the users collection in mongo
type User struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details UserDetails        `json:"user" bson:"user"`
	Version int32              `json:"__v" bson:"__v"`
}

// UserDetails holds the structure for the inner user details. All roles
// share one collection; the professional fields are only set for
// lawyers and judges.
type UserDetails struct {
	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName" bson:"lastName"`
	Email     string `json:"email" bson:"email"`
	Password  string `json:"password,omitempty" bson:"password"` // bcrypt hash
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
	Address   string `json:"address,omitempty" bson:"address,omitempty"`

	// Role: "client", "lawyer", "judge", "admin"
	Role string `json:"role" bson:"role"`

	Professional *ProfessionalDetails `json:"professional,omitempty" bson:"professional,omitempty"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// ProfessionalDetails carries the lawyer/judge-only extension of a user
type ProfessionalDetails struct {
	Specialty string `json:"specialty,omitempty" bson:"specialty,omitempty"`
	BarNumber string `json:"barNumber,omitempty" bson:"barNumber,omitempty"`
	Standing  string `json:"standing,omitempty" bson:"standing,omitempty"`
}
