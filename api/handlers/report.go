package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lexflow/legal-case-api/api"
	"github.com/lexflow/legal-case-api/config"
	"github.com/lexflow/legal-case-api/databases"
	"github.com/lexflow/legal-case-api/models"
)

var monthFormat = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

var reportTypes = []string{"cases", "hearings", "users"}

// downloadTokenTTL bounds how long a signed report link stays valid
const downloadTokenTTL = 15 * time.Minute

// Report exported for testing purposes
type Report struct {
	DB     databases.ReportDatabase
	HDB    databases.HearingDatabase
	CDB    databases.CaseDatabase
	Config *config.Config
}

// CreateReportHandler records metadata for a generated monthly report
func (rp Report) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type  string `json:"type"`
		Month string `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !contains(reportTypes, body.Type) {
		config.ErrorStatus("invalid report type", http.StatusBadRequest, w,
			fmt.Errorf("type %q is not one of cases, hearings, users", body.Type))
		return
	}
	if !monthFormat.MatchString(body.Month) {
		config.ErrorStatus("invalid month format", http.StatusBadRequest, w,
			fmt.Errorf("month %q must match YYYY-MM", body.Month))
		return
	}

	principal, _ := api.PrincipalFromContext(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := rp.recordCount(ctx, body.Type, body.Month)
	if err != nil {
		zap.S().Errorw("failed to count report records",
			"type", body.Type,
			"month", body.Month,
			"error", err)
		count = 0
	}

	report := models.Report{
		ID: primitive.NewObjectID(),
		Details: models.ReportDetails{
			FileName:    fmt.Sprintf("report-%s-%s.pdf", body.Type, body.Month),
			Type:        body.Type,
			Month:       body.Month,
			JudgeID:     principal.ID,
			RecordCount: count,
			CreatedAt:   primitive.NewDateTimeFromTime(time.Now()),
		},
	}

	if _, err := rp.DB.InsertOne(ctx, report); err != nil {
		config.ErrorStatus("failed to create report", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Report created successfully",
		"id":      report.ID.Hex(),
		"report":  report,
	})
}

// recordCount counts the rows a report of the given type covers for the
// given month
func (rp Report) recordCount(ctx context.Context, reportType, month string) (int64, error) {
	switch reportType {
	case "cases":
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return 0, err
		}
		end := start.AddDate(0, 1, 0)
		return rp.CDB.CountDocuments(ctx, bson.M{
			"case.createdAt": bson.M{
				"$gte": primitive.NewDateTimeFromTime(start),
				"$lt":  primitive.NewDateTimeFromTime(end),
			},
		})
	case "hearings":
		return rp.HDB.CountDocuments(ctx, bson.M{
			"hearing.date": bson.M{"$regex": "^" + month},
		})
	default:
		return 0, nil
	}
}

// ReportsHandler lists report metadata, optionally filtered by month
func (rp Report) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if month := r.URL.Query().Get("month"); month != "" {
		if !monthFormat.MatchString(month) {
			config.ErrorStatus("invalid month format", http.StatusBadRequest, w,
				fmt.Errorf("month %q must match YYYY-MM", month))
			return
		}
		filter["report.month"] = month
	}
	if reportType := r.URL.Query().Get("type"); reportType != "" {
		filter["report.type"] = reportType
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := rp.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Report{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportDownloadTokenHandler issues a short-lived signed URL for a
// report file. The token names the report and the requesting user and
// expires on its own; no session state is involved.
func (rp Report) ReportDownloadTokenHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("invalid report ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := rp.DB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to find report", http.StatusNotFound, w, err)
		return
	}

	principal, _ := api.PrincipalFromContext(r.Context())
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      principal.ID,
		"reportID": report.ID.Hex(),
		"fileName": report.Details.FileName,
		"iat":      now.Unix(),
		"exp":      now.Add(downloadTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(rp.Config.JWTSecret))
	if err != nil {
		config.ErrorStatus("failed to sign download token", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"url": fmt.Sprintf("%s/api/v1/reports/%s/download?token=%s",
			rp.Config.BaseURL, report.ID.Hex(), signed),
		"expiresAt": now.Add(downloadTokenTTL).UTC().Format(time.RFC3339),
	})
}

// ReportDownloadHandler resolves a signed download link. The token is
// the only credential; it must verify against the configured secret
// and name the report in the path. PDF rendering lives outside this
// service, so the response carries the record the renderer works from.
func (rp Report) ReportDownloadHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		config.ErrorStatus("missing download token", http.StatusUnauthorized, w,
			fmt.Errorf("token query parameter is required"))
		return
	}

	parsed, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(rp.Config.JWTSecret), nil
	})
	if err != nil {
		config.ErrorStatus("invalid download token", http.StatusUnauthorized, w, err)
		return
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || claims["reportID"] != reportID {
		config.ErrorStatus("token does not match report", http.StatusForbidden, w,
			fmt.Errorf("token was issued for a different report"))
		return
	}

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("invalid report ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := rp.DB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to find report", http.StatusNotFound, w, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Details.FileName))
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(report)
}

// OverviewStatsHandler returns the judge dashboard rollup: how many
// cases are in flight and how many hearings are still ahead
func (rp Report) OverviewStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	activeCases, err := rp.CDB.CountDocuments(ctx, bson.M{
		"case.status": bson.M{"$in": []string{
			models.CaseStateSubmitted,
			models.CaseStateAccepted,
			models.CaseStateStarted,
		}},
	})
	if err != nil {
		config.ErrorStatus("failed to count active cases", http.StatusInternalServerError, w, err)
		return
	}

	today := time.Now().UTC().Format("2006-01-02")
	upcomingHearings, err := rp.HDB.CountDocuments(ctx, bson.M{
		"hearing.date":   bson.M{"$gte": today},
		"hearing.status": bson.M{"$nin": models.HearingTerminalStates},
	})
	if err != nil {
		config.ErrorStatus("failed to count upcoming hearings", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"activeCases":      activeCases,
		"upcomingHearings": upcomingHearings,
	})
}

// HearingStatsHandler returns hearing counts grouped by month for
// caseload reporting
func (rp Report) HearingStatsHandler(w http.ResponseWriter, r *http.Request) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":   bson.M{"$substr": []interface{}{"$hearing.date", 0, 7}},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	counts, err := rp.HDB.Aggregate(ctx, pipeline)
	if err != nil {
		config.ErrorStatus("failed to aggregate hearings", http.StatusInternalServerError, w, err)
		return
	}
	if len(counts) == 0 {
		counts = []models.MonthCount{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"byMonth": counts,
	})
}
