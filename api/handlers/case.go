package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

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

// caseTransitions maps each case state to the states it may move to.
// Denied is only reachable from submitted; finished and denied are
// terminal.
var caseTransitions = map[string][]string{
	models.CaseStateSubmitted: {models.CaseStateAccepted, models.CaseStateDenied},
	models.CaseStateAccepted:  {models.CaseStateStarted},
	models.CaseStateStarted:   {models.CaseStateFinished},
}

// casePriorities lists the accepted priorities; empty defaults to normal
var casePriorities = []string{"normal", "high", "urgent"}

// Case exported for testing purposes
type Case struct {
	DB  databases.CaseDatabase
	CTR databases.CounterDatabase
	NDB databases.NotificationDatabase
}

type caseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	ClientID    string `json:"clientID"`
	JudgeID     string `json:"judgeID"`
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// titleCase capitalizes the first letter of every word in a case title.
// Words are decoded rune by rune so accented titles survive intact.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}

// CreateCaseHandler files a new case. Numbering comes from an atomic
// per-year counter, so concurrent filings never collide.
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var req caseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	var missing []string
	if req.Title == "" {
		missing = append(missing, "title")
	}
	if req.Description == "" {
		missing = append(missing, "description")
	}
	if req.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w,
			fmt.Errorf("missing: %s", strings.Join(missing, ", ")))
		return
	}
	if !contains(models.CaseTypes, req.Type) {
		config.ErrorStatus("invalid case type", http.StatusBadRequest, w,
			fmt.Errorf("type %q is not one of %s", req.Type, strings.Join(models.CaseTypes, ", ")))
		return
	}
	if req.Priority == "" {
		req.Priority = "normal"
	}
	if !contains(casePriorities, req.Priority) {
		config.ErrorStatus("invalid case priority", http.StatusBadRequest, w,
			fmt.Errorf("priority %q is not one of %s", req.Priority, strings.Join(casePriorities, ", ")))
		return
	}

	principal, _ := api.PrincipalFromContext(r.Context())
	clientID := req.ClientID
	if principal.Role == models.RoleClient {
		clientID = principal.ID
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	number, err := c.CTR.NextCaseNumber(ctx, time.Now().UTC().Year())
	if err != nil {
		config.ErrorStatus("failed to assign case number", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	newCase := models.Case{
		ID: primitive.NewObjectID(),
		Details: models.CaseDetails{
			Number:        number,
			Title:         titleCase(req.Title),
			Description:   req.Description,
			Type:          req.Type,
			Status:        models.CaseStateSubmitted,
			Priority:      req.Priority,
			ClientID:      clientID,
			JudgeID:       req.JudgeID,
			HearingIDs:    []string{},
			Attachments:   []models.CaseAttachment{},
			Comments:      []models.CaseComment{},
			LastUpdatedBy: principal.ID,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}

	if _, err := c.DB.InsertOne(ctx, newCase); err != nil {
		config.ErrorStatus("failed to create case", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Case created successfully",
		"id":      newCase.ID.Hex(),
		"number":  number,
		"case":    newCase,
	})
}

// CaseByIDHandler returns a case by ID
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to find case", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

// UpdateCaseStateHandler moves a case along its lifecycle. Every
// transition appends exactly one audit comment naming the new state.
// Accepting a case with no lawyer assigns the acting lawyer to it.
func (c Case) UpdateCaseStateHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("invalid case ID", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.Status == "" {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w,
			fmt.Errorf("missing: status"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	courtCase, err := c.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to find case", http.StatusNotFound, w, err)
		return
	}

	if !contains(caseTransitions[courtCase.Details.Status], body.Status) {
		config.ErrorStatus("invalid state transition", http.StatusBadRequest, w,
			fmt.Errorf("cannot move case from '%s' to '%s'", courtCase.Details.Status, body.Status))
		return
	}

	principal, _ := api.PrincipalFromContext(r.Context())
	now := primitive.NewDateTimeFromTime(time.Now())

	setFields := bson.M{
		"case.status":        body.Status,
		"case.lastUpdatedBy": principal.ID,
		"case.updatedAt":     now,
	}
	if body.Status == models.CaseStateAccepted && courtCase.Details.LawyerID == "" && principal.Role == models.RoleLawyer {
		setFields["case.lawyerID"] = principal.ID
	}

	auditComment := models.CaseComment{
		AuthorID:   principal.ID,
		AuthorRole: principal.Role,
		Body:       fmt.Sprintf("Status changed to %s", body.Status),
		CreatedAt:  now,
	}

	err = c.DB.UpdateOne(ctx,
		bson.M{"_id": cID},
		bson.M{
			"$set":  setFields,
			"$push": bson.M{"case.comments": auditComment},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to update case", http.StatusInternalServerError, w, err)
		return
	}

	api.CaseTransitions.WithLabelValues(body.Status).Inc()
	c.notifyStateChange(r, courtCase, body.Status)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Case updated",
		"status":  body.Status,
	})
}

func (c Case) notifyStateChange(r *http.Request, courtCase *models.Case, newState string) {
	if courtCase.Details.ClientID == "" {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	notification := models.Notification{
		ID: primitive.NewObjectID(),
		Details: models.NotificationDetails{
			UserID: courtCase.Details.ClientID,
			Type:   "case",
			Title:  "Case status updated",
			Message: fmt.Sprintf("Case %s is now %s",
				courtCase.Details.Number, newState),
			Payload: map[string]interface{}{
				"caseID": courtCase.ID.Hex(),
				"number": courtCase.Details.Number,
				"status": newState,
			},
			Read:      false,
			CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
		},
	}

	if _, err := c.NDB.InsertOne(ctx, notification); err != nil {
		api.NotificationsEmitted.WithLabelValues("error").Inc()
		zap.S().Errorw("failed to emit case notification",
			"caseID", courtCase.ID.Hex(),
			"userID", courtCase.Details.ClientID,
			"error", err)
		return
	}
	api.NotificationsEmitted.WithLabelValues("ok").Inc()
}

// AddCaseCommentHandler appends a comment to a case's audit log
func (c Case) AddCaseCommentHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("invalid case ID", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if strings.TrimSpace(body.Body) == "" {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w,
			fmt.Errorf("missing: body"))
		return
	}

	principal, _ := api.PrincipalFromContext(r.Context())
	now := primitive.NewDateTimeFromTime(time.Now())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	comment := models.CaseComment{
		AuthorID:   principal.ID,
		AuthorRole: principal.Role,
		Body:       body.Body,
		CreatedAt:  now,
	}

	err = c.DB.UpdateOne(ctx,
		bson.M{"_id": cID},
		bson.M{
			"$push": bson.M{"case.comments": comment},
			"$set":  bson.M{"case.updatedAt": now},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to add comment", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Comment added",
	})
}

// CasesByUserHandler returns the paginated cases visible to the acting
// user: clients see the cases they filed, lawyers the cases assigned to
// them, admins everything. Supports status, type, search and date range
// filters.
func (c Case) CasesByUserHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := api.PrincipalFromContext(r.Context())

	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || Limit <= 0 {
		Limit = 10
	}
	limit64 := int64(Limit)
	Page := getPage(0, r)
	skip64 := int64(Page * Limit)

	filter := bson.M{}
	switch principal.Role {
	case models.RoleClient:
		filter["case.clientID"] = principal.ID
	case models.RoleLawyer:
		filter["case.lawyerID"] = principal.ID
	case models.RoleJudge:
		filter["case.judgeID"] = principal.ID
	}

	if status := r.URL.Query().Get("status"); status != "" {
		if strings.Contains(status, ",") {
			filter["case.status"] = bson.M{"$in": strings.Split(status, ",")}
		} else {
			filter["case.status"] = status
		}
	}
	if caseType := r.URL.Query().Get("type"); caseType != "" {
		filter["case.type"] = caseType
	}
	if search := r.URL.Query().Get("search"); search != "" {
		filter["$or"] = []bson.M{
			{"case.title": bson.M{"$regex": search, "$options": "i"}},
			{"case.number": bson.M{"$regex": search, "$options": "i"}},
		}
	}
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from != "" || to != "" {
		dateRange := bson.M{}
		if from != "" {
			if t, err := time.Parse("2006-01-02", from); err == nil {
				dateRange["$gte"] = primitive.NewDateTimeFromTime(t)
			}
		}
		if to != "" {
			if t, err := time.Parse("2006-01-02", to); err == nil {
				dateRange["$lte"] = primitive.NewDateTimeFromTime(t.Add(24 * time.Hour))
			}
		}
		if len(dateRange) > 0 {
			filter["case.createdAt"] = dateRange
		}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	type findResult struct {
		cases []models.Case
		err   error
	}
	type countResult struct {
		count int64
		err   error
	}

	findChan := make(chan findResult, 1)
	countChan := make(chan countResult, 1)

	go func() {
		cases, err := c.DB.Find(ctx, filter, &options.FindOptions{
			Limit: &limit64,
			Skip:  &skip64,
			Sort:  bson.D{{Key: "case.createdAt", Value: -1}},
		})
		findChan <- findResult{cases: cases, err: err}
	}()

	go func() {
		count, err := c.DB.CountDocuments(ctx, filter)
		countChan <- countResult{count: count, err: err}
	}()

	findRes := <-findChan
	countRes := <-countChan

	if findRes.err != nil {
		config.ErrorStatus("failed to get cases", http.StatusNotFound, w, findRes.err)
		return
	}

	dbResp := findRes.cases
	var totalCount int64
	if countRes.err != nil {
		totalCount = int64(len(dbResp))
	} else {
		totalCount = countRes.count
	}

	if len(dbResp) == 0 {
		dbResp = []models.Case{}
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

// CaseStatsHandler returns the acting user's case counts grouped by status
func (c Case) CaseStatsHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := api.PrincipalFromContext(r.Context())

	match := bson.M{}
	switch principal.Role {
	case models.RoleClient:
		match["case.clientID"] = principal.ID
	case models.RoleLawyer:
		match["case.lawyerID"] = principal.ID
	case models.RoleJudge:
		match["case.judgeID"] = principal.ID
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":   "$case.status",
			"count": bson.M{"$sum": 1},
		}},
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	counts, err := c.DB.Aggregate(ctx, pipeline)
	if err != nil {
		config.ErrorStatus("failed to aggregate cases", http.StatusInternalServerError, w, err)
		return
	}

	stats := map[string]int64{
		models.CaseStateSubmitted: 0,
		models.CaseStateAccepted:  0,
		models.CaseStateDenied:    0,
		models.CaseStateStarted:   0,
		models.CaseStateFinished:  0,
	}
	var total int64
	for _, sc := range counts {
		stats[sc.ID] = sc.Count
		total += sc.Count
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"total":    total,
		"byStatus": stats,
	})
}
