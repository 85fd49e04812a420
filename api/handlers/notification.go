package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lexflow/legal-case-api/api"
	"github.com/lexflow/legal-case-api/config"
	"github.com/lexflow/legal-case-api/databases"
	"github.com/lexflow/legal-case-api/models"
)

// Notification exported for testing purposes
type Notification struct {
	DB databases.NotificationDatabase
}

// NotificationsHandler returns the acting user's notification feed,
// newest first
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := api.PrincipalFromContext(r.Context())

	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || Limit <= 0 {
		Limit = 20
	}
	Page := getPage(0, r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := n.DB.FindByUser(ctx, principal.ID, Limit, Page)
	if err != nil {
		config.ErrorStatus("failed to get notifications", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Notification{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MarkNotificationReadHandler flags a notification as read
func (n Notification) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	notificationID := mux.Vars(r)["notification_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := n.DB.MarkRead(ctx, notificationID); err != nil {
		config.ErrorStatus("failed to mark notification read", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Notification marked as read",
	})
}
