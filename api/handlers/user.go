package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lexflow/legal-case-api/api"
	"github.com/lexflow/legal-case-api/config"
	"github.com/lexflow/legal-case-api/databases"
	"github.com/lexflow/legal-case-api/models"
	templates "github.com/lexflow/legal-case-api/templates/html"
)

var userRoles = []string{models.RoleClient, models.RoleLawyer, models.RoleJudge, models.RoleAdmin}

// User exported for testing purposes
type User struct {
	DB databases.UserDatabase
}

type userRequest struct {
	FirstName    string                      `json:"firstName"`
	LastName     string                      `json:"lastName"`
	Email        string                      `json:"email"`
	Password     string                      `json:"password"`
	Phone        string                      `json:"phone"`
	Address      string                      `json:"address"`
	Role         string                      `json:"role"`
	Professional *models.ProfessionalDetails `json:"professional"`
}

// RegisterUserHandler creates a user account. Lawyers and judges must
// carry professional details with a bar number.
func (u User) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	var missing []string
	if req.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if req.LastName == "" {
		missing = append(missing, "lastName")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w,
			fmt.Errorf("missing: %s", strings.Join(missing, ", ")))
		return
	}
	if req.Role == "" {
		req.Role = models.RoleClient
	}
	if !contains(userRoles, req.Role) {
		config.ErrorStatus("invalid role", http.StatusBadRequest, w,
			fmt.Errorf("role %q is not one of %s", req.Role, strings.Join(userRoles, ", ")))
		return
	}
	if req.Role == models.RoleLawyer || req.Role == models.RoleJudge {
		if req.Professional == nil || req.Professional.BarNumber == "" {
			config.ErrorStatus("missing professional details", http.StatusBadRequest, w,
				fmt.Errorf("role %s requires a bar number", req.Role))
			return
		}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := u.DB.FindOne(ctx, bson.M{"user.email": email}); err == nil {
		config.ErrorStatus("email already registered", http.StatusConflict, w,
			fmt.Errorf("email %s is taken", email))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	user := models.User{
		ID: primitive.NewObjectID(),
		Details: models.UserDetails{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        email,
			Password:     string(hash),
			Phone:        req.Phone,
			Address:      req.Address,
			Role:         req.Role,
			Professional: req.Professional,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	if _, err := u.DB.InsertOne(ctx, user); err != nil {
		config.ErrorStatus("failed to create user", http.StatusInternalServerError, w, err)
		return
	}

	user.Details.Password = ""
	go sendWelcomeEmail(user)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "User created successfully",
		"id":      user.ID.Hex(),
		"user":    user,
	})
}

// sendWelcomeEmail greets a newly registered user. Registration never
// fails on email problems; without an API key this is a no-op.
func sendWelcomeEmail(user models.User) {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return
	}

	name := fmt.Sprintf("%s %s", user.Details.FirstName, user.Details.LastName)
	subject := "Welcome to LexFlow Legal"
	body := fmt.Sprintf("Hello %s,\n\nYour %s account is ready. You can now sign in and follow your cases and hearings online.\n\nIf you did not register this account, please contact our office.",
		name, user.Details.Role)

	from := mail.NewEmail("LexFlow Legal", "no-reply@lexflow-legal.com")
	to := mail.NewEmail(name, user.Details.Email)
	message := mail.NewSingleEmail(from, subject, to, body, templates.RenderGenericEmail(subject, body))
	response, err := sendgrid.NewSendClient(apiKey).Send(message)
	if err != nil {
		zap.S().Errorw("failed to send welcome email", "email", user.Details.Email, "error", err)
		return
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
}

// UserByIDHandler returns a user by ID, password elided
func (u User) UserByIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := u.DB.FindOne(ctx, bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to find user", http.StatusNotFound, w, err)
		return
	}

	dbResp.Details.Password = ""
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

// UsersByRoleHandler lists users by role, used to populate lawyer and
// judge pickers
func (u User) UsersByRoleHandler(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role != "" && !contains(userRoles, role) {
		config.ErrorStatus("invalid role", http.StatusBadRequest, w,
			fmt.Errorf("role %q is not one of %s", role, strings.Join(userRoles, ", ")))
		return
	}

	filter := bson.M{}
	if role != "" {
		filter["user.role"] = role
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := u.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get users", http.StatusNotFound, w, err)
		return
	}
	for i := range dbResp {
		dbResp[i].Details.Password = ""
	}
	if len(dbResp) == 0 {
		dbResp = []models.User{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
