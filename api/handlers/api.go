package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lexflow/legal-case-api/api"
	"github.com/lexflow/legal-case-api/api/scheduler"
	"github.com/lexflow/legal-case-api/config"
	"github.com/lexflow/legal-case-api/databases"
	"github.com/lexflow/legal-case-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)
	r.Use(api.TimeoutMiddleware(30 * time.Second))

	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	c := Case{
		DB:  databases.NewCaseDatabase(a.dbHelper),
		CTR: databases.NewCounterDatabase(a.dbHelper),
		NDB: databases.NewNotificationDatabase(a.dbHelper),
	}
	h := Hearing{
		DB:  databases.NewHearingDatabase(a.dbHelper),
		CDB: databases.NewCaseDatabase(a.dbHelper),
		RDB: databases.NewRoomDatabase(a.dbHelper),
		NDB: databases.NewNotificationDatabase(a.dbHelper),
	}
	rm := Room{DB: databases.NewRoomDatabase(a.dbHelper)}
	n := Notification{DB: databases.NewNotificationDatabase(a.dbHelper)}
	report := Report{
		DB:     databases.NewReportDatabase(a.dbHelper),
		HDB:    databases.NewHearingDatabase(a.dbHelper),
		CDB:    databases.NewCaseDatabase(a.dbHelper),
		Config: &a.Config,
	}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.Handle("/metrics", api.MetricsHandler()).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.RegisterUserHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserByIDHandler))).Methods("GET")
	apiCreate.Handle("/users", api.Middleware(http.HandlerFunc(u.UsersByRoleHandler))).Methods("GET")

	apiCreate.Handle("/case", api.Middleware(http.HandlerFunc(c.CreateCaseHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(c.CaseByIDHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}/status", api.Middleware(api.RequireRole(http.HandlerFunc(c.UpdateCaseStateHandler), models.RoleLawyer, models.RoleJudge))).Methods("PUT")
	apiCreate.Handle("/case/{case_id}/comments", api.Middleware(http.HandlerFunc(c.AddCaseCommentHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/hearings", api.Middleware(http.HandlerFunc(h.HearingsByCaseHandler))).Methods("GET")
	apiCreate.Handle("/cases", api.Middleware(http.HandlerFunc(c.CasesByUserHandler))).Methods("GET")
	apiCreate.Handle("/cases/stats", api.Middleware(http.HandlerFunc(c.CaseStatsHandler))).Methods("GET")

	apiCreate.Handle("/hearing", api.Middleware(api.RequireRole(http.HandlerFunc(h.CreateHearingHandler), models.RoleLawyer))).Methods("POST")
	apiCreate.Handle("/hearing/{hearing_id}", api.Middleware(http.HandlerFunc(h.HearingByIDHandler))).Methods("GET")
	apiCreate.Handle("/hearing/{hearing_id}/status", api.Middleware(api.RequireRole(http.HandlerFunc(h.UpdateHearingStateHandler), models.RoleLawyer, models.RoleJudge))).Methods("PUT")
	apiCreate.Handle("/hearings", api.Middleware(http.HandlerFunc(h.HearingsByLawyerHandler))).Methods("GET")

	apiCreate.Handle("/room", api.Middleware(api.RequireRole(http.HandlerFunc(rm.CreateRoomHandler), models.RoleAdmin))).Methods("POST")
	apiCreate.Handle("/room/{room_id}", api.Middleware(http.HandlerFunc(rm.RoomByIDHandler))).Methods("GET")
	apiCreate.Handle("/room/{room_id}/status", api.Middleware(api.RequireRole(http.HandlerFunc(rm.UpdateRoomStatusHandler), models.RoleAdmin))).Methods("PUT")
	apiCreate.Handle("/rooms", api.Middleware(http.HandlerFunc(rm.RoomsHandler))).Methods("GET")
	apiCreate.Handle("/rooms/available", api.Middleware(http.HandlerFunc(rm.AvailableRoomsHandler))).Methods("GET")

	apiCreate.Handle("/notifications", api.Middleware(http.HandlerFunc(n.NotificationsHandler))).Methods("GET")
	apiCreate.Handle("/notifications/{notification_id}/read", api.Middleware(http.HandlerFunc(n.MarkNotificationReadHandler))).Methods("PUT")

	apiCreate.Handle("/report", api.Middleware(api.RequireRole(http.HandlerFunc(report.CreateReportHandler), models.RoleJudge, models.RoleAdmin))).Methods("POST")
	apiCreate.Handle("/reports", api.Middleware(api.RequireRole(http.HandlerFunc(report.ReportsHandler), models.RoleJudge, models.RoleAdmin))).Methods("GET")
	apiCreate.Handle("/reports/{report_id}/token", api.Middleware(api.RequireRole(http.HandlerFunc(report.ReportDownloadTokenHandler), models.RoleJudge, models.RoleAdmin))).Methods("POST")
	// the signed token is the credential here, no session middleware
	apiCreate.Handle("/reports/{report_id}/download", http.HandlerFunc(report.ReportDownloadHandler)).Methods("GET")
	apiCreate.Handle("/reports/hearing-stats", api.Middleware(api.RequireRole(http.HandlerFunc(report.HearingStatsHandler), models.RoleJudge, models.RoleAdmin))).Methods("GET")
	apiCreate.Handle("/reports/overview", api.Middleware(api.RequireRole(http.HandlerFunc(report.OverviewStatsHandler), models.RoleJudge, models.RoleAdmin))).Methods("GET")

	// swagger docs hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir("./docs/"))))
	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("legal-case-api has connected to the database")

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// NewScheduler builds the background job runner over the app's database
// connection. Invoked by main after Initialize.
func (a *App) NewScheduler() *scheduler.Scheduler {
	return scheduler.NewScheduler(
		databases.NewHearingDatabase(a.dbHelper),
		databases.NewCaseDatabase(a.dbHelper),
		databases.NewRoomDatabase(a.dbHelper),
		databases.NewUserDatabase(a.dbHelper),
		databases.NewSchedulerLockDatabase(a.dbHelper),
	)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

func getPage(Page int, r *http.Request) int {
	if r.URL.Query().Get("page") == "" {
		zap.S().Warnf("page not set, using default of %v", Page)
	} else {
		var err error
		Page, err = strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			zap.S().Errorf(fmt.Sprintf("error parsing page number: %v", err))
		}
		if Page < 0 {
			zap.S().Warnf(fmt.Sprintf("cannot process page number less than 1. Got: %v", Page))
			return 0
		}
	}
	return Page
}
