// Package docs LexFlow Legal Case API.
//
// Documentation of LexFlow Legal Case API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://legal-case-api.herokuapp.com
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/lexflow/legal-case-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/v1/case case createCase
// Creates a new case in submitted status and assigns its docket number.
// responses:
//   201: caseByIDResponse

// swagger:route GET /api/v1/case/{case_id} case caseByID
// Gets a single case by ID.
// responses:
//   200: caseByIDResponse

// Shows a single case by the given {ID}
// swagger:response caseByIDResponse
type caseByIDResponseWrapper struct {
	// in:body
	Body models.Case
}

// swagger:route PUT /api/v1/case/{case_id}/status case updateCaseState
// Moves a case along its lifecycle. Illegal transitions are rejected.
// responses:
//   200: caseByIDResponse

// swagger:route GET /api/v1/cases cases casesByUser
// Lists the caller's cases, scoped by role, with filters and pagination.
// responses:
//   200: casesResponse

// Shows the paginated case list for the caller
// swagger:response casesResponse
type casesResponseWrapper struct {
	// in:body
	Body []models.Case
}

// swagger:route POST /api/v1/hearing hearing createHearing
// Books a hearing into a room slot. Conflicting slots are rejected.
// responses:
//   201: hearingByIDResponse

// swagger:route GET /api/v1/hearing/{hearing_id} hearing hearingByID
// Gets a single hearing by ID.
// responses:
//   200: hearingByIDResponse

// Shows a single hearing by the given {ID}
// swagger:response hearingByIDResponse
type hearingByIDResponseWrapper struct {
	// in:body
	Body models.Hearing
}

// swagger:route GET /api/v1/rooms/available room availableRooms
// Lists the rooms currently flagged available.
// responses:
//   200: roomsResponse

// Shows the room list
// swagger:response roomsResponse
type roomsResponseWrapper struct {
	// in:body
	Body []models.Room
}

// swagger:route GET /api/v1/notifications notification notificationsByUser
// Lists the caller's notifications, newest first.
// responses:
//   200: notificationsResponse

// Shows the notification list for the caller
// swagger:response notificationsResponse
type notificationsResponseWrapper struct {
	// in:body
	Body []models.Notification
}

// swagger:route POST /api/v1/report report createReport
// Creates a monthly report record for later download.
// responses:
//   201: reportResponse

// Shows a single report
// swagger:response reportResponse
type reportResponseWrapper struct {
	// in:body
	Body models.Report
}
