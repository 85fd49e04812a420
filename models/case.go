package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Case lifecycle states. A case enters as submitted and walks forward
// through accepted, started and finished; denied is terminal and only
// reachable from submitted.
const (
	CaseStateSubmitted = "submitted"
	CaseStateAccepted  = "accepted"
	CaseStateDenied    = "denied"
	CaseStateStarted   = "started"
	CaseStateFinished  = "finished"
)

// CaseTypes lists the accepted case categories
var CaseTypes = []string{"divorce", "labor-contract", "intellectual-property", "inheritance", "real-estate", "registration", "other"}

// Case holds the structure for the case collection in mongo
type Case struct {
	ID      primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Details CaseDetails        `json:"case" bson:"case"`
	Version int32              `json:"__v" bson:"__v"`
}

// CaseDetails holds the structure for the inner user structure as
// defined in the case collection in mongo
type CaseDetails struct {
	Number        string             `json:"number" bson:"number"`
	Title         string             `json:"title" bson:"title"`
	Description   string             `json:"description" bson:"description"`
	Type          string             `json:"type" bson:"type"`
	Status        string             `json:"status" bson:"status"`
	Priority      string             `json:"priority" bson:"priority"`
	ClientID      string             `json:"clientID" bson:"clientID"`
	LawyerID      string             `json:"lawyerID" bson:"lawyerID"`
	JudgeID       string             `json:"judgeID" bson:"judgeID"`
	HearingIDs    []string           `json:"hearingIDs" bson:"hearingIDs"`
	Attachments   []CaseAttachment   `json:"attachments" bson:"attachments"`
	Comments      []CaseComment      `json:"comments" bson:"comments"`
	LastUpdatedBy string             `json:"lastUpdatedBy" bson:"lastUpdatedBy"`
	CreatedAt     primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt     primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// CaseAttachment is a document attached to a case
type CaseAttachment struct {
	FileName    string             `json:"fileName" bson:"fileName"`
	ContentType string             `json:"contentType" bson:"contentType"`
	URL         string             `json:"url" bson:"url"`
	UploadedBy  string             `json:"uploadedBy" bson:"uploadedBy"`
	UploadedAt  primitive.DateTime `json:"uploadedAt" bson:"uploadedAt"`
}

// CaseComment is an append-only audit entry on a case. State changes
// always record exactly one comment naming the new state. AuthorRole
// captures the author's role at the time of writing.
type CaseComment struct {
	AuthorID   string             `json:"authorID" bson:"authorID"`
	AuthorRole string             `json:"authorRole" bson:"authorRole"`
	Body       string             `json:"body" bson:"body"`
	Seen       bool               `json:"seen" bson:"seen"`
	CreatedAt  primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
