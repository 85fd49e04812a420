package handlers

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/lexflow/legal-case-api/api"
	"github.com/lexflow/legal-case-api/config"
	"github.com/lexflow/legal-case-api/databases"
	"github.com/lexflow/legal-case-api/models"
)

// Booking window: hearings start no earlier than 08:00 and strictly
// before 18:00.
const (
	BookingWindowOpenHour  = 8
	BookingWindowCloseHour = 18
)

var (
	dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeFormat = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// slotLocks serializes conflict-check-then-insert per (room, date, time)
// so two concurrent bookings for the same slot cannot both pass the
// conflict check. Slots hash onto a fixed set of stripes, which keeps
// memory bounded no matter how many slots get requested. Multi-instance
// deployments additionally want a unique index on the slot triple.
var slotLocks [64]sync.Mutex

func lockSlot(roomID, date, timeStr string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(roomID + "|" + date + "|" + timeStr))
	return &slotLocks[h.Sum32()%uint32(len(slotLocks))]
}

// Hearing exported for testing purposes
type Hearing struct {
	DB  databases.HearingDatabase
	CDB databases.CaseDatabase
	RDB databases.RoomDatabase
	NDB databases.NotificationDatabase
}

type hearingRequest struct {
	CaseID      string `json:"caseID"`
	RoomID      string `json:"roomID"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// missingFields reports every absent required field at once rather than
// one at a time.
func (hr hearingRequest) missingFields() []string {
	var missing []string
	if hr.CaseID == "" {
		missing = append(missing, "caseID")
	}
	if hr.RoomID == "" {
		missing = append(missing, "roomID")
	}
	if hr.Type == "" {
		missing = append(missing, "type")
	}
	if hr.Date == "" {
		missing = append(missing, "date")
	}
	if hr.Time == "" {
		missing = append(missing, "time")
	}
	return missing
}

// CreateHearingHandler books a hearing into a room slot for an accepted
// case. Validations run in a fixed order and short-circuit; all writes
// happen only after every validation has passed.
func (h Hearing) CreateHearingHandler(w http.ResponseWriter, r *http.Request) {
	var req hearingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BookingAttempts.WithLabelValues("invalid_input").Inc()
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	principal, _ := api.PrincipalFromContext(r.Context())

	// shape validation
	if missing := req.missingFields(); len(missing) > 0 {
		api.BookingAttempts.WithLabelValues("invalid_input").Inc()
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w,
			fmt.Errorf("missing: %s", strings.Join(missing, ", ")))
		return
	}
	caseID, err := primitive.ObjectIDFromHex(req.CaseID)
	if err != nil {
		api.BookingAttempts.WithLabelValues("invalid_input").Inc()
		config.ErrorStatus("invalid case ID", http.StatusBadRequest, w, err)
		return
	}
	roomID, err := primitive.ObjectIDFromHex(req.RoomID)
	if err != nil {
		api.BookingAttempts.WithLabelValues("invalid_input").Inc()
		config.ErrorStatus("invalid room ID", http.StatusBadRequest, w, err)
		return
	}
	if !dateFormat.MatchString(req.Date) {
		api.BookingAttempts.WithLabelValues("invalid_input").Inc()
		config.ErrorStatus("invalid date format", http.StatusBadRequest, w,
			fmt.Errorf("date %q must match YYYY-MM-DD", req.Date))
		return
	}
	if !timeFormat.MatchString(req.Time) {
		api.BookingAttempts.WithLabelValues("invalid_input").Inc()
		config.ErrorStatus("invalid time format", http.StatusBadRequest, w,
			fmt.Errorf("time %q must match HH:mm", req.Time))
		return
	}
	if !contains(models.HearingTypes, req.Type) {
		api.BookingAttempts.WithLabelValues("invalid_input").Inc()
		config.ErrorStatus("invalid hearing type", http.StatusBadRequest, w,
			fmt.Errorf("type %q is not one of %s", req.Type, strings.Join(models.HearingTypes, ", ")))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// eligibility: the case exists, belongs to the acting lawyer and
	// has been accepted
	courtCase, err := h.CDB.FindOne(ctx, bson.M{"_id": caseID})
	if err != nil {
		api.BookingAttempts.WithLabelValues("not_found").Inc()
		config.ErrorStatus("failed to find case", http.StatusNotFound, w, err)
		return
	}
	if courtCase.Details.LawyerID != "" && principal.ID != "" && courtCase.Details.LawyerID != principal.ID {
		api.BookingAttempts.WithLabelValues("not_eligible").Inc()
		config.ErrorStatus("case is not assigned to this lawyer", http.StatusUnprocessableEntity, w,
			fmt.Errorf("case %s belongs to lawyer %s", req.CaseID, courtCase.Details.LawyerID))
		return
	}
	if courtCase.Details.Status != models.CaseStateAccepted {
		api.BookingAttempts.WithLabelValues("not_eligible").Inc()
		config.ErrorStatus("case is not in accepted status", http.StatusUnprocessableEntity, w,
			fmt.Errorf("case status is '%s', expected 'accepted'", courtCase.Details.Status))
		return
	}

	room, err := h.RDB.FindOne(ctx, bson.M{"_id": roomID})
	if err != nil {
		api.BookingAttempts.WithLabelValues("not_found").Inc()
		config.ErrorStatus("failed to find room", http.StatusNotFound, w, err)
		return
	}
	if room.Details.Status == models.RoomStatusMaintenance {
		api.BookingAttempts.WithLabelValues("not_eligible").Inc()
		config.ErrorStatus("room is out of service", http.StatusUnprocessableEntity, w,
			fmt.Errorf("room %s is under maintenance", room.Details.Number))
		return
	}

	// temporal validation: hour window first, then day-granularity past
	// check. A same-day booking with a past hour is allowed by the date
	// check; only the window rejects it.
	hour, _ := strconv.Atoi(req.Time[:2])
	if hour < BookingWindowOpenHour || hour >= BookingWindowCloseHour {
		api.BookingAttempts.WithLabelValues("out_of_window").Inc()
		config.ErrorStatus("time is outside booking hours", http.StatusBadRequest, w,
			fmt.Errorf("time %s is outside 08:00-18:00", req.Time))
		return
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		api.BookingAttempts.WithLabelValues("invalid_input").Inc()
		config.ErrorStatus("invalid date", http.StatusBadRequest, w, err)
		return
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		api.BookingAttempts.WithLabelValues("in_the_past").Inc()
		config.ErrorStatus("date is in the past", http.StatusBadRequest, w,
			fmt.Errorf("date %s is before today", req.Date))
		return
	}

	// conflict check and insert run under the slot lock
	mu := lockSlot(req.RoomID, req.Date, req.Time)
	mu.Lock()
	defer mu.Unlock()

	existing, err := h.DB.FindConflicting(ctx, req.RoomID, req.Date)
	if err != nil {
		api.BookingAttempts.WithLabelValues("persistence_failure").Inc()
		config.ErrorStatus("failed to check room schedule", http.StatusInternalServerError, w, err)
		return
	}
	for _, other := range existing {
		if other.Details.Time == req.Time {
			api.BookingAttempts.WithLabelValues("conflict").Inc()
			config.ErrorStatus("room slot is already booked", http.StatusConflict, w,
				fmt.Errorf("room %s already has a hearing on %s at %s", req.RoomID, req.Date, req.Time))
			return
		}
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Hearing %s for case %s", req.Type, courtCase.Details.Number)
	}

	nowDT := primitive.NewDateTimeFromTime(now)
	hearing := models.Hearing{
		ID: primitive.NewObjectID(),
		Details: models.HearingDetails{
			CaseID:      req.CaseID,
			RoomID:      req.RoomID,
			Type:        req.Type,
			Description: description,
			Date:        req.Date,
			Time:        req.Time,
			LawyerID:    principal.ID,
			JudgeID:     courtCase.Details.JudgeID,
			Status:      models.HearingStateOpen,
			Result:      "pending",
			CreatedAt:   nowDT,
			UpdatedAt:   nowDT,
		},
	}

	if _, err := h.DB.InsertOne(ctx, hearing); err != nil {
		api.BookingAttempts.WithLabelValues("persistence_failure").Inc()
		config.ErrorStatus("failed to create hearing", http.StatusInternalServerError, w, err)
		return
	}

	// link the hearing back to its case; $addToSet keeps the append
	// idempotent
	err = h.CDB.UpdateOne(ctx,
		bson.M{"_id": caseID},
		bson.M{
			"$addToSet": bson.M{"case.hearingIDs": hearing.ID.Hex()},
			"$set":      bson.M{"case.updatedAt": nowDT},
		},
	)
	if err != nil {
		zap.S().Errorw("failed to link hearing to case",
			"hearingID", hearing.ID.Hex(),
			"caseID", req.CaseID,
			"error", err)
	}

	// best-effort notification to the case's client; the booking stands
	// even if this fails
	h.notifyClient(r, courtCase, hearing)

	api.BookingAttempts.WithLabelValues("booked").Inc()
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Hearing created successfully",
		"id":      hearing.ID.Hex(),
		"hearing": hearing,
	})
}

func (h Hearing) notifyClient(r *http.Request, courtCase *models.Case, hearing models.Hearing) {
	if courtCase.Details.ClientID == "" {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	notification := models.Notification{
		ID: primitive.NewObjectID(),
		Details: models.NotificationDetails{
			UserID: courtCase.Details.ClientID,
			Type:   models.NotificationTypeHearing,
			Title:  "Hearing scheduled",
			Message: fmt.Sprintf("A %s hearing for case %s has been scheduled on %s at %s",
				hearing.Details.Type, courtCase.Details.Number, hearing.Details.Date, hearing.Details.Time),
			Payload: map[string]interface{}{
				"hearingID": hearing.ID.Hex(),
				"caseID":    hearing.Details.CaseID,
				"roomID":    hearing.Details.RoomID,
				"date":      hearing.Details.Date,
				"time":      hearing.Details.Time,
				"type":      hearing.Details.Type,
			},
			Read:      false,
			CreatedAt: hearing.Details.CreatedAt,
		},
	}

	if _, err := h.NDB.InsertOne(ctx, notification); err != nil {
		api.NotificationsEmitted.WithLabelValues("error").Inc()
		zap.S().Errorw("failed to emit hearing notification",
			"hearingID", hearing.ID.Hex(),
			"userID", courtCase.Details.ClientID,
			"error", err)
		return
	}
	api.NotificationsEmitted.WithLabelValues("ok").Inc()
}

// HearingByIDHandler returns a hearing by ID
func (h Hearing) HearingByIDHandler(w http.ResponseWriter, r *http.Request) {
	hearingID := mux.Vars(r)["hearing_id"]

	bID, err := primitive.ObjectIDFromHex(hearingID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := h.DB.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		config.ErrorStatus("failed to find hearing", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

// UpdateHearingStateHandler moves a hearing to a new state. Completing
// or cancelling releases the hearing's room: the availability flag goes
// back to true unconditionally.
func (h Hearing) UpdateHearingStateHandler(w http.ResponseWriter, r *http.Request) {
	hearingID := mux.Vars(r)["hearing_id"]

	bID, err := primitive.ObjectIDFromHex(hearingID)
	if err != nil {
		config.ErrorStatus("invalid hearing ID", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		Status string `json:"status"`
		Result string `json:"result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	allowed := map[string]bool{
		models.HearingStateApproved:  true,
		models.HearingStateRejected:  true,
		models.HearingStateCompleted: true,
		models.HearingStateCancelled: true,
	}
	if !allowed[body.Status] {
		config.ErrorStatus("invalid hearing status", http.StatusBadRequest, w,
			fmt.Errorf("status %q is not one of approved, rejected, completed, cancelled", body.Status))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	existing, err := h.DB.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		config.ErrorStatus("failed to find hearing", http.StatusNotFound, w, err)
		return
	}
	if existing.Details.Status == models.HearingStateCompleted || existing.Details.Status == models.HearingStateCancelled {
		config.ErrorStatus("hearing is in a terminal state", http.StatusUnprocessableEntity, w,
			fmt.Errorf("hearing is already %s", existing.Details.Status))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	setFields := bson.M{
		"hearing.status":    body.Status,
		"hearing.updatedAt": now,
	}
	if body.Result != "" {
		setFields["hearing.result"] = body.Result
	}

	err = h.DB.UpdateOne(ctx, bson.M{"_id": bID}, bson.M{"$set": setFields})
	if err != nil {
		config.ErrorStatus("failed to update hearing", http.StatusInternalServerError, w, err)
		return
	}

	// terminal states free the room for the booking form
	if body.Status == models.HearingStateCompleted || body.Status == models.HearingStateCancelled {
		if err := h.RDB.SetAvailability(ctx, existing.Details.RoomID, true); err != nil {
			zap.S().Errorw("failed to release room",
				"hearingID", hearingID,
				"roomID", existing.Details.RoomID,
				"error", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Hearing updated",
	})
}

// HearingsByCaseHandler returns every hearing linked to a case
func (h Hearing) HearingsByCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := h.DB.Find(ctx, bson.M{"hearing.caseID": caseID}, &options.FindOptions{
		Sort: bson.D{{Key: "hearing.date", Value: 1}, {Key: "hearing.time", Value: 1}},
	})
	if err != nil {
		config.ErrorStatus("failed to get hearings", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Hearing{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// HearingsByLawyerHandler returns paginated hearings for the acting lawyer
func (h Hearing) HearingsByLawyerHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := api.PrincipalFromContext(r.Context())
	status := r.URL.Query().Get("status")
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || Limit <= 0 {
		Limit = 10
	}
	limit64 := int64(Limit)
	Page := getPage(0, r)
	skip64 := int64(Page * Limit)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{
		"hearing.lawyerID": principal.ID,
	}
	if status != "" {
		if strings.Contains(status, ",") {
			statuses := strings.Split(status, ",")
			filter["hearing.status"] = bson.M{"$in": statuses}
		} else {
			filter["hearing.status"] = status
		}
	}

	type findResult struct {
		hearings []models.Hearing
		err      error
	}
	type countResult struct {
		count int64
		err   error
	}

	findChan := make(chan findResult, 1)
	countChan := make(chan countResult, 1)

	go func() {
		hearings, err := h.DB.Find(ctx, filter, &options.FindOptions{
			Limit: &limit64,
			Skip:  &skip64,
			Sort:  bson.D{{Key: "hearing.date", Value: -1}, {Key: "hearing.time", Value: -1}},
		})
		findChan <- findResult{hearings: hearings, err: err}
	}()

	go func() {
		count, err := h.DB.CountDocuments(ctx, filter)
		countChan <- countResult{count: count, err: err}
	}()

	findRes := <-findChan
	countRes := <-countChan

	if findRes.err != nil {
		config.ErrorStatus("failed to get hearings", http.StatusNotFound, w, findRes.err)
		return
	}

	dbResp := findRes.hearings
	var totalCount int64
	if countRes.err != nil {
		totalCount = int64(len(dbResp))
	} else {
		totalCount = countRes.count
	}

	if len(dbResp) == 0 {
		dbResp = []models.Hearing{}
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(Limit)))

	response := map[string]interface{}{
		"data":       dbResp,
		"page":       Page,
		"limit":      Limit,
		"totalCount": totalCount,
		"totalPages": totalPages,
	}

	b, err := json.Marshal(response)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
