package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lexflow/legal-case-api/api/handlers"
	"github.com/lexflow/legal-case-api/databases/mocks"
	"github.com/lexflow/legal-case-api/models"
)

func TestNotificationsHandler(t *testing.T) {
	mockNotificationDB := &mocks.NotificationDatabase{}
	mockNotificationDB.On("FindByUser", mock.Anything, "", 20, 0).Return([]models.Notification{
		{
			ID: primitive.NewObjectID(),
			Details: models.NotificationDetails{
				Type:    models.NotificationTypeHearing,
				Title:   "Hearing scheduled",
				Message: "A follow-up hearing for case C-2026-014 has been scheduled on 2026-09-15 at 10:00",
			},
		},
	}, nil)

	n := handlers.Notification{DB: mockNotificationDB}

	req := httptest.NewRequest("GET", "/api/v1/notifications", nil)
	rr := httptest.NewRecorder()

	n.NotificationsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var notifications []models.Notification
	err := json.Unmarshal(rr.Body.Bytes(), &notifications)
	assert.NoError(t, err)
	assert.Len(t, notifications, 1)
	assert.Equal(t, "Hearing scheduled", notifications[0].Details.Title)
}

func TestMarkNotificationReadHandler(t *testing.T) {
	notificationID := primitive.NewObjectID().Hex()

	mockNotificationDB := &mocks.NotificationDatabase{}
	mockNotificationDB.On("MarkRead", mock.Anything, notificationID).Return(nil)

	n := handlers.Notification{DB: mockNotificationDB}

	req := httptest.NewRequest("PUT", "/api/v1/notifications/"+notificationID+"/read", nil)
	req = mux.SetURLVars(req, map[string]string{"notification_id": notificationID})
	rr := httptest.NewRecorder()

	n.MarkNotificationReadHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockNotificationDB.AssertCalled(t, "MarkRead", mock.Anything, notificationID)
}
