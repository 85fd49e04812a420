package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lexflow/legal-case-api/api"
	"github.com/lexflow/legal-case-api/config"
	"github.com/lexflow/legal-case-api/databases"
	"github.com/lexflow/legal-case-api/models"
)

// Room exported for testing purposes
type Room struct {
	DB databases.RoomDatabase
}

// normalizeRoomNumber canonicalizes a room number for storage: trimmed,
// uppercased, inner whitespace collapsed to single dashes. A dashless
// number is split positionally into <floor><room>-<building>, so
// "101A" and "101-A" identify the same room.
func normalizeRoomNumber(number string) string {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(number)))
	n := strings.Join(fields, "-")
	if !strings.Contains(n, "-") && len(n) > 3 {
		n = n[:3] + "-" + n[3:]
	}
	return n
}

// CreateRoomHandler registers a new hearing room
func (rm Room) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Number   string `json:"number"`
		Capacity int    `json:"capacity"`
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.Number == "" {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w,
			fmt.Errorf("missing: number"))
		return
	}
	number := normalizeRoomNumber(body.Number)
	if body.Capacity <= 0 {
		body.Capacity = models.DefaultRoomCapacity
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := rm.DB.CountDocuments(ctx, bson.M{"room.number": number})
	if err != nil {
		config.ErrorStatus("failed to check room number", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorStatus("room number already exists", http.StatusConflict, w,
			fmt.Errorf("room %s is already registered", number))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	room := models.Room{
		ID: primitive.NewObjectID(),
		Details: models.RoomDetails{
			Number:    number,
			Capacity:  body.Capacity,
			Location:  body.Location,
			Status:    models.RoomStatusActive,
			Available: true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if _, err := rm.DB.InsertOne(ctx, room); err != nil {
		config.ErrorStatus("failed to create room", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("room registered", "number", number, "capacity", room.Details.Capacity)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Room created successfully",
		"id":      room.ID.Hex(),
		"room":    room,
	})
}

// RoomsHandler returns every registered room
func (rm Room) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := rm.DB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get rooms", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Room{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AvailableRoomsHandler returns the rooms currently flagged available.
// The flag is a convenience signal for the booking form; the real slot
// check happens at booking time against the hearing collection.
func (rm Room) AvailableRoomsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := rm.DB.FindAvailable(ctx)
	if err != nil {
		config.ErrorStatus("failed to get rooms", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Room{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RoomByIDHandler returns a room by ID
func (rm Room) RoomByIDHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]

	rID, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := rm.DB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to find room", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

// UpdateRoomStatusHandler toggles a room between active and maintenance
func (rm Room) UpdateRoomStatusHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]

	rID, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		config.ErrorStatus("invalid room ID", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.Status != models.RoomStatusActive && body.Status != models.RoomStatusMaintenance {
		config.ErrorStatus("invalid room status", http.StatusBadRequest, w,
			fmt.Errorf("status %q is not one of active, maintenance", body.Status))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	err = rm.DB.UpdateOne(ctx,
		bson.M{"_id": rID},
		bson.M{"$set": bson.M{
			"room.status":    body.Status,
			"room.updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to update room", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Room updated",
	})
}
