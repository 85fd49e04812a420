package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lexflow/legal-case-api/api/handlers"
	"github.com/lexflow/legal-case-api/config"
	"github.com/lexflow/legal-case-api/databases/mocks"
	"github.com/lexflow/legal-case-api/models"
)

func TestCreateReportHandler(t *testing.T) {
	mockReportDB := &mocks.ReportDatabase{}
	mockReportDB.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)

	mockHearingDB := &mocks.HearingDatabase{}
	mockHearingDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(3), nil)

	rp := handlers.Report{DB: mockReportDB, HDB: mockHearingDB, CDB: &mocks.CaseDatabase{}, Config: &config.Config{}}

	req := httptest.NewRequest("POST", "/api/v1/report",
		strings.NewReader(`{"type":"hearings","month":"2026-08"}`))
	rr := httptest.NewRecorder()

	rp.CreateReportHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)

	details := resp["report"].(map[string]interface{})["report"].(map[string]interface{})
	assert.Equal(t, "report-hearings-2026-08.pdf", details["fileName"])
	assert.Equal(t, "2026-08", details["month"])
	assert.Equal(t, float64(3), details["recordCount"])
}

func TestCreateReportHandler_BadMonth(t *testing.T) {
	rp := handlers.Report{DB: &mocks.ReportDatabase{}, HDB: &mocks.HearingDatabase{}, CDB: &mocks.CaseDatabase{}, Config: &config.Config{}}

	req := httptest.NewRequest("POST", "/api/v1/report",
		strings.NewReader(`{"type":"cases","month":"2026-13"}`))
	rr := httptest.NewRecorder()

	rp.CreateReportHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid month format")
}

func TestReportDownloadTokenHandler(t *testing.T) {
	reportID := primitive.NewObjectID()
	secret := "test-secret"

	mockReportDB := &mocks.ReportDatabase{}
	mockReportDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Report{
		ID: reportID,
		Details: models.ReportDetails{
			FileName: "report-cases-2026-08.pdf",
			Type:     "cases",
			Month:    "2026-08",
		},
	}, nil)

	rp := handlers.Report{
		DB:     mockReportDB,
		HDB:    &mocks.HearingDatabase{},
		CDB:    &mocks.CaseDatabase{},
		Config: &config.Config{JWTSecret: secret, BaseURL: "https://api.example.com"},
	}

	req := httptest.NewRequest("POST", "/api/v1/reports/"+reportID.Hex()+"/token", nil)
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})
	rr := httptest.NewRecorder()

	rp.ReportDownloadTokenHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)

	url := resp["url"].(string)
	assert.Contains(t, url, "https://api.example.com/api/v1/reports/"+reportID.Hex()+"/download?token=")

	// the issued token must verify against the configured secret and
	// carry the report's identity
	tokenStr := url[strings.Index(url, "token=")+len("token="):]
	parsed, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	assert.NoError(t, err)
	assert.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, reportID.Hex(), claims["reportID"])
	assert.Equal(t, "report-cases-2026-08.pdf", claims["fileName"])
}

func TestReportDownloadHandler_ValidToken(t *testing.T) {
	reportID := primitive.NewObjectID()
	secret := "test-secret"

	mockReportDB := &mocks.ReportDatabase{}
	mockReportDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Report{
		ID: reportID,
		Details: models.ReportDetails{
			FileName: "report-cases-2026-08.pdf",
			Type:     "cases",
			Month:    "2026-08",
		},
	}, nil)

	rp := handlers.Report{
		DB:     mockReportDB,
		HDB:    &mocks.HearingDatabase{},
		CDB:    &mocks.CaseDatabase{},
		Config: &config.Config{JWTSecret: secret},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"reportID": reportID.Hex(),
		"fileName": "report-cases-2026-08.pdf",
	})
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/reports/"+reportID.Hex()+"/download?token="+signed, nil)
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})
	rr := httptest.NewRecorder()

	rp.ReportDownloadHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "report-cases-2026-08.pdf")
	assert.Contains(t, rr.Body.String(), "2026-08")
}

func TestReportDownloadHandler_BadToken(t *testing.T) {
	reportID := primitive.NewObjectID()

	rp := handlers.Report{
		DB:     &mocks.ReportDatabase{},
		HDB:    &mocks.HearingDatabase{},
		CDB:    &mocks.CaseDatabase{},
		Config: &config.Config{JWTSecret: "test-secret"},
	}

	req := httptest.NewRequest("GET", "/api/v1/reports/"+reportID.Hex()+"/download?token=not-a-jwt", nil)
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})
	rr := httptest.NewRecorder()

	rp.ReportDownloadHandler(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestReportDownloadHandler_TokenForOtherReport(t *testing.T) {
	reportID := primitive.NewObjectID()
	secret := "test-secret"

	rp := handlers.Report{
		DB:     &mocks.ReportDatabase{},
		HDB:    &mocks.HearingDatabase{},
		CDB:    &mocks.CaseDatabase{},
		Config: &config.Config{JWTSecret: secret},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"reportID": primitive.NewObjectID().Hex(),
	})
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/reports/"+reportID.Hex()+"/download?token="+signed, nil)
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})
	rr := httptest.NewRecorder()

	rp.ReportDownloadHandler(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestHearingStatsHandler(t *testing.T) {
	mockHearingDB := &mocks.HearingDatabase{}
	mockHearingDB.On("Aggregate", mock.Anything, mock.Anything).Return([]models.MonthCount{
		{ID: "2026-07", Count: 4},
		{ID: "2026-08", Count: 9},
	}, nil)

	rp := handlers.Report{DB: &mocks.ReportDatabase{}, HDB: mockHearingDB, CDB: &mocks.CaseDatabase{}, Config: &config.Config{}}

	req := httptest.NewRequest("GET", "/api/v1/reports/hearing-stats", nil)
	rr := httptest.NewRecorder()

	rp.HearingStatsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)

	byMonth := resp["byMonth"].([]interface{})
	assert.Len(t, byMonth, 2)
}

func TestOverviewStatsHandler(t *testing.T) {
	mockCaseDB := &mocks.CaseDatabase{}
	mockCaseDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(8), nil)

	mockHearingDB := &mocks.HearingDatabase{}
	mockHearingDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(5), nil)

	rp := handlers.Report{DB: &mocks.ReportDatabase{}, HDB: mockHearingDB, CDB: mockCaseDB, Config: &config.Config{}}

	req := httptest.NewRequest("GET", "/api/v1/reports/overview", nil)
	rr := httptest.NewRecorder()

	rp.OverviewStatsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, float64(8), resp["activeCases"])
	assert.Equal(t, float64(5), resp["upcomingHearings"])
}
