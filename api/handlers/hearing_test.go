package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lexflow/legal-case-api/api/handlers"
	"github.com/lexflow/legal-case-api/databases/mocks"
	"github.com/lexflow/legal-case-api/models"
)

func acceptedCase(id primitive.ObjectID) *models.Case {
	return &models.Case{
		ID: id,
		Details: models.CaseDetails{
			Number:   "C-2026-014",
			Title:    "Contract Dispute",
			Type:     "labor-contract",
			Status:   models.CaseStateAccepted,
			ClientID: primitive.NewObjectID().Hex(),
		},
	}
}

func activeRoom(id primitive.ObjectID) *models.Room {
	return &models.Room{
		ID: id,
		Details: models.RoomDetails{
			Number:    "101-A",
			Capacity:  20,
			Status:    models.RoomStatusActive,
			Available: true,
		},
	}
}

func bookingBody(caseID, roomID, date, timeStr string) string {
	b, _ := json.Marshal(map[string]string{
		"caseID": caseID,
		"roomID": roomID,
		"type":   "initial",
		"date":   date,
		"time":   timeStr,
	})
	return string(b)
}

func tomorrow() string {
	return time.Now().UTC().Add(24 * time.Hour).Format("2006-01-02")
}

func TestCreateHearingHandler_Success(t *testing.T) {
	caseID := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	mockCaseDB := &mocks.CaseDatabase{}
	mockRoomDB := &mocks.RoomDatabase{}
	mockHearingDB := &mocks.HearingDatabase{}
	mockNotificationDB := &mocks.NotificationDatabase{}

	mockCaseDB.On("FindOne", mock.Anything, mock.Anything).Return(acceptedCase(caseID), nil)
	mockRoomDB.On("FindOne", mock.Anything, mock.Anything).Return(activeRoom(roomID), nil)
	mockHearingDB.On("FindConflicting", mock.Anything, roomID.Hex(), tomorrow()).Return([]models.Hearing{}, nil)
	mockHearingDB.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	mockCaseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockNotificationDB.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)

	h := handlers.Hearing{DB: mockHearingDB, CDB: mockCaseDB, RDB: mockRoomDB, NDB: mockNotificationDB}

	req := httptest.NewRequest("POST", "/api/v1/hearing",
		strings.NewReader(bookingBody(caseID.Hex(), roomID.Hex(), tomorrow(), "10:00")))
	rr := httptest.NewRecorder()

	h.CreateHearingHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "Hearing created successfully", resp["message"])

	hearing := resp["hearing"].(map[string]interface{})["hearing"].(map[string]interface{})
	assert.Equal(t, models.HearingStateOpen, hearing["status"])
	assert.Equal(t, "10:00", hearing["time"])
	assert.Equal(t, "Hearing initial for case C-2026-014", hearing["description"])

	mockHearingDB.AssertCalled(t, "InsertOne", mock.Anything, mock.Anything)
	mockCaseDB.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
	// booking never touches the room's availability flag
	mockRoomDB.AssertNotCalled(t, "SetAvailability", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateHearingHandler_SlotConflict(t *testing.T) {
	caseID := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	mockCaseDB := &mocks.CaseDatabase{}
	mockRoomDB := &mocks.RoomDatabase{}
	mockHearingDB := &mocks.HearingDatabase{}

	mockCaseDB.On("FindOne", mock.Anything, mock.Anything).Return(acceptedCase(caseID), nil)
	mockRoomDB.On("FindOne", mock.Anything, mock.Anything).Return(activeRoom(roomID), nil)
	mockHearingDB.On("FindConflicting", mock.Anything, roomID.Hex(), tomorrow()).Return([]models.Hearing{
		{
			ID: primitive.NewObjectID(),
			Details: models.HearingDetails{
				RoomID: roomID.Hex(),
				Date:   tomorrow(),
				Time:   "10:00",
				Status: models.HearingStateOpen,
			},
		},
	}, nil)

	h := handlers.Hearing{DB: mockHearingDB, CDB: mockCaseDB, RDB: mockRoomDB, NDB: &mocks.NotificationDatabase{}}

	req := httptest.NewRequest("POST", "/api/v1/hearing",
		strings.NewReader(bookingBody(caseID.Hex(), roomID.Hex(), tomorrow(), "10:00")))
	rr := httptest.NewRecorder()

	h.CreateHearingHandler(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "room slot is already booked")
	mockHearingDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestCreateHearingHandler_SameDayDifferentTimeBooks(t *testing.T) {
	caseID := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	mockCaseDB := &mocks.CaseDatabase{}
	mockRoomDB := &mocks.RoomDatabase{}
	mockHearingDB := &mocks.HearingDatabase{}
	mockNotificationDB := &mocks.NotificationDatabase{}

	mockCaseDB.On("FindOne", mock.Anything, mock.Anything).Return(acceptedCase(caseID), nil)
	mockRoomDB.On("FindOne", mock.Anything, mock.Anything).Return(activeRoom(roomID), nil)
	mockHearingDB.On("FindConflicting", mock.Anything, roomID.Hex(), tomorrow()).Return([]models.Hearing{
		{
			ID: primitive.NewObjectID(),
			Details: models.HearingDetails{
				RoomID: roomID.Hex(),
				Date:   tomorrow(),
				Time:   "10:00",
				Status: models.HearingStateOpen,
			},
		},
	}, nil)
	mockHearingDB.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	mockCaseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockNotificationDB.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)

	h := handlers.Hearing{DB: mockHearingDB, CDB: mockCaseDB, RDB: mockRoomDB, NDB: mockNotificationDB}

	req := httptest.NewRequest("POST", "/api/v1/hearing",
		strings.NewReader(bookingBody(caseID.Hex(), roomID.Hex(), tomorrow(), "11:00")))
	rr := httptest.NewRecorder()

	h.CreateHearingHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestCreateHearingHandler_OutsideBookingWindow(t *testing.T) {
	caseID := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	for _, tc := range []string{"07:30", "18:00", "23:15"} {
		mockCaseDB := &mocks.CaseDatabase{}
		mockRoomDB := &mocks.RoomDatabase{}
		mockHearingDB := &mocks.HearingDatabase{}

		mockCaseDB.On("FindOne", mock.Anything, mock.Anything).Return(acceptedCase(caseID), nil)
		mockRoomDB.On("FindOne", mock.Anything, mock.Anything).Return(activeRoom(roomID), nil)

		h := handlers.Hearing{DB: mockHearingDB, CDB: mockCaseDB, RDB: mockRoomDB, NDB: &mocks.NotificationDatabase{}}

		req := httptest.NewRequest("POST", "/api/v1/hearing",
			strings.NewReader(bookingBody(caseID.Hex(), roomID.Hex(), tomorrow(), tc)))
		rr := httptest.NewRecorder()

		h.CreateHearingHandler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, "time %s should be rejected", tc)
		assert.Contains(t, rr.Body.String(), "outside booking hours")
		mockHearingDB.AssertNotCalled(t, "FindConflicting", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestCreateHearingHandler_BoundaryTimesInsideWindow(t *testing.T) {
	caseID := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	for _, tc := range []string{"08:00", "17:59"} {
		mockCaseDB := &mocks.CaseDatabase{}
		mockRoomDB := &mocks.RoomDatabase{}
		mockHearingDB := &mocks.HearingDatabase{}
		mockNotificationDB := &mocks.NotificationDatabase{}

		mockCaseDB.On("FindOne", mock.Anything, mock.Anything).Return(acceptedCase(caseID), nil)
		mockRoomDB.On("FindOne", mock.Anything, mock.Anything).Return(activeRoom(roomID), nil)
		mockHearingDB.On("FindConflicting", mock.Anything, roomID.Hex(), tomorrow()).Return([]models.Hearing{}, nil)
		mockHearingDB.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
		mockCaseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockNotificationDB.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)

		h := handlers.Hearing{DB: mockHearingDB, CDB: mockCaseDB, RDB: mockRoomDB, NDB: mockNotificationDB}

		req := httptest.NewRequest("POST", "/api/v1/hearing",
			strings.NewReader(bookingBody(caseID.Hex(), roomID.Hex(), tomorrow(), tc)))
		rr := httptest.NewRecorder()

		h.CreateHearingHandler(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code, "time %s should be accepted", tc)
	}
}

func TestCreateHearingHandler_CaseNotAccepted(t *testing.T) {
	caseID := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	submitted := acceptedCase(caseID)
	submitted.Details.Status = models.CaseStateSubmitted

	mockCaseDB := &mocks.CaseDatabase{}
	mockHearingDB := &mocks.HearingDatabase{}
	mockCaseDB.On("FindOne", mock.Anything, mock.Anything).Return(submitted, nil)

	h := handlers.Hearing{DB: mockHearingDB, CDB: mockCaseDB, RDB: &mocks.RoomDatabase{}, NDB: &mocks.NotificationDatabase{}}

	req := httptest.NewRequest("POST", "/api/v1/hearing",
		strings.NewReader(bookingBody(caseID.Hex(), roomID.Hex(), tomorrow(), "10:00")))
	rr := httptest.NewRecorder()

	h.CreateHearingHandler(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "not in accepted status")
	mockHearingDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestCreateHearingHandler_CaseNotFound(t *testing.T) {
	caseID := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	mockCaseDB := &mocks.CaseDatabase{}
	mockCaseDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	h := handlers.Hearing{DB: &mocks.HearingDatabase{}, CDB: mockCaseDB, RDB: &mocks.RoomDatabase{}, NDB: &mocks.NotificationDatabase{}}

	req := httptest.NewRequest("POST", "/api/v1/hearing",
		strings.NewReader(bookingBody(caseID.Hex(), roomID.Hex(), tomorrow(), "10:00")))
	rr := httptest.NewRecorder()

	h.CreateHearingHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateHearingHandler_RoomUnderMaintenance(t *testing.T) {
	caseID := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	room := activeRoom(roomID)
	room.Details.Status = models.RoomStatusMaintenance

	mockCaseDB := &mocks.CaseDatabase{}
	mockRoomDB := &mocks.RoomDatabase{}
	mockCaseDB.On("FindOne", mock.Anything, mock.Anything).Return(acceptedCase(caseID), nil)
	mockRoomDB.On("FindOne", mock.Anything, mock.Anything).Return(room, nil)

	h := handlers.Hearing{DB: &mocks.HearingDatabase{}, CDB: mockCaseDB, RDB: mockRoomDB, NDB: &mocks.NotificationDatabase{}}

	req := httptest.NewRequest("POST", "/api/v1/hearing",
		strings.NewReader(bookingBody(caseID.Hex(), roomID.Hex(), tomorrow(), "10:00")))
	rr := httptest.NewRecorder()

	h.CreateHearingHandler(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "out of service")
}

func TestCreateHearingHandler_DateInPast(t *testing.T) {
	caseID := primitive.NewObjectID()
	roomID := primitive.NewObjectID()
	yesterday := time.Now().UTC().Add(-24 * time.Hour).Format("2006-01-02")

	mockCaseDB := &mocks.CaseDatabase{}
	mockRoomDB := &mocks.RoomDatabase{}
	mockHearingDB := &mocks.HearingDatabase{}
	mockCaseDB.On("FindOne", mock.Anything, mock.Anything).Return(acceptedCase(caseID), nil)
	mockRoomDB.On("FindOne", mock.Anything, mock.Anything).Return(activeRoom(roomID), nil)

	h := handlers.Hearing{DB: mockHearingDB, CDB: mockCaseDB, RDB: mockRoomDB, NDB: &mocks.NotificationDatabase{}}

	req := httptest.NewRequest("POST", "/api/v1/hearing",
		strings.NewReader(bookingBody(caseID.Hex(), roomID.Hex(), yesterday, "10:00")))
	rr := httptest.NewRecorder()

	h.CreateHearingHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "date is in the past")
	mockHearingDB.AssertNotCalled(t, "FindConflicting", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateHearingHandler_MissingFields(t *testing.T) {
	h := handlers.Hearing{DB: &mocks.HearingDatabase{}, CDB: &mocks.CaseDatabase{}, RDB: &mocks.RoomDatabase{}, NDB: &mocks.NotificationDatabase{}}

	req := httptest.NewRequest("POST", "/api/v1/hearing", strings.NewReader(`{"type":"evidence"}`))
	rr := httptest.NewRecorder()

	h.CreateHearingHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "missing required fields")
	assert.Contains(t, rr.Body.String(), "caseID")
	assert.Contains(t, rr.Body.String(), "roomID")
	assert.Contains(t, rr.Body.String(), "date")
	assert.Contains(t, rr.Body.String(), "time")
}

func TestCreateHearingHandler_InvalidType(t *testing.T) {
	caseID := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	h := handlers.Hearing{DB: &mocks.HearingDatabase{}, CDB: &mocks.CaseDatabase{}, RDB: &mocks.RoomDatabase{}, NDB: &mocks.NotificationDatabase{}}

	b, _ := json.Marshal(map[string]string{
		"caseID": caseID.Hex(),
		"roomID": roomID.Hex(),
		"type":   "arraignment",
		"date":   tomorrow(),
		"time":   "10:00",
	})
	req := httptest.NewRequest("POST", "/api/v1/hearing", strings.NewReader(string(b)))
	rr := httptest.NewRecorder()

	h.CreateHearingHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid hearing type")
}

func TestCreateHearingHandler_NotificationFailureDoesNotBlockBooking(t *testing.T) {
	caseID := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	mockCaseDB := &mocks.CaseDatabase{}
	mockRoomDB := &mocks.RoomDatabase{}
	mockHearingDB := &mocks.HearingDatabase{}
	mockNotificationDB := &mocks.NotificationDatabase{}

	mockCaseDB.On("FindOne", mock.Anything, mock.Anything).Return(acceptedCase(caseID), nil)
	mockRoomDB.On("FindOne", mock.Anything, mock.Anything).Return(activeRoom(roomID), nil)
	mockHearingDB.On("FindConflicting", mock.Anything, roomID.Hex(), tomorrow()).Return([]models.Hearing{}, nil)
	mockHearingDB.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	mockCaseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockNotificationDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, errors.New("notification store down"))

	h := handlers.Hearing{DB: mockHearingDB, CDB: mockCaseDB, RDB: mockRoomDB, NDB: mockNotificationDB}

	req := httptest.NewRequest("POST", "/api/v1/hearing",
		strings.NewReader(bookingBody(caseID.Hex(), roomID.Hex(), tomorrow(), "14:00")))
	rr := httptest.NewRecorder()

	h.CreateHearingHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestUpdateHearingStateHandler_CompletedReleasesRoom(t *testing.T) {
	hearingID := primitive.NewObjectID()
	roomID := primitive.NewObjectID().Hex()

	mockHearingDB := &mocks.HearingDatabase{}
	mockRoomDB := &mocks.RoomDatabase{}

	mockHearingDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Hearing{
		ID: hearingID,
		Details: models.HearingDetails{
			RoomID: roomID,
			Status: models.HearingStateApproved,
		},
	}, nil)
	mockHearingDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockRoomDB.On("SetAvailability", mock.Anything, roomID, true).Return(nil)

	h := handlers.Hearing{DB: mockHearingDB, CDB: &mocks.CaseDatabase{}, RDB: mockRoomDB, NDB: &mocks.NotificationDatabase{}}

	req := httptest.NewRequest("PUT", "/api/v1/hearing/"+hearingID.Hex()+"/status",
		strings.NewReader(`{"status":"completed","result":"ruling issued"}`))
	req = mux.SetURLVars(req, map[string]string{"hearing_id": hearingID.Hex()})
	rr := httptest.NewRecorder()

	h.UpdateHearingStateHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockRoomDB.AssertCalled(t, "SetAvailability", mock.Anything, roomID, true)
}

func TestUpdateHearingStateHandler_ApprovedKeepsRoomHeld(t *testing.T) {
	hearingID := primitive.NewObjectID()

	mockHearingDB := &mocks.HearingDatabase{}
	mockRoomDB := &mocks.RoomDatabase{}

	mockHearingDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Hearing{
		ID: hearingID,
		Details: models.HearingDetails{
			RoomID: primitive.NewObjectID().Hex(),
			Status: models.HearingStateOpen,
		},
	}, nil)
	mockHearingDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	h := handlers.Hearing{DB: mockHearingDB, CDB: &mocks.CaseDatabase{}, RDB: mockRoomDB, NDB: &mocks.NotificationDatabase{}}

	req := httptest.NewRequest("PUT", "/api/v1/hearing/"+hearingID.Hex()+"/status",
		strings.NewReader(`{"status":"approved"}`))
	req = mux.SetURLVars(req, map[string]string{"hearing_id": hearingID.Hex()})
	rr := httptest.NewRecorder()

	h.UpdateHearingStateHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockRoomDB.AssertNotCalled(t, "SetAvailability", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateHearingStateHandler_TerminalHearingRejected(t *testing.T) {
	hearingID := primitive.NewObjectID()

	mockHearingDB := &mocks.HearingDatabase{}
	mockHearingDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Hearing{
		ID: hearingID,
		Details: models.HearingDetails{
			RoomID: primitive.NewObjectID().Hex(),
			Status: models.HearingStateCancelled,
		},
	}, nil)

	h := handlers.Hearing{DB: mockHearingDB, CDB: &mocks.CaseDatabase{}, RDB: &mocks.RoomDatabase{}, NDB: &mocks.NotificationDatabase{}}

	req := httptest.NewRequest("PUT", "/api/v1/hearing/"+hearingID.Hex()+"/status",
		strings.NewReader(`{"status":"approved"}`))
	req = mux.SetURLVars(req, map[string]string{"hearing_id": hearingID.Hex()})
	rr := httptest.NewRecorder()

	h.UpdateHearingStateHandler(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "terminal state")
	mockHearingDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateHearingStateHandler_InvalidState(t *testing.T) {
	hearingID := primitive.NewObjectID()

	h := handlers.Hearing{DB: &mocks.HearingDatabase{}, CDB: &mocks.CaseDatabase{}, RDB: &mocks.RoomDatabase{}, NDB: &mocks.NotificationDatabase{}}

	req := httptest.NewRequest("PUT", "/api/v1/hearing/"+hearingID.Hex()+"/status",
		strings.NewReader(`{"status":"open"}`))
	req = mux.SetURLVars(req, map[string]string{"hearing_id": hearingID.Hex()})
	rr := httptest.NewRecorder()

	h.UpdateHearingStateHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid hearing status")
}
