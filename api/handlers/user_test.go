package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lexflow/legal-case-api/api/handlers"
	"github.com/lexflow/legal-case-api/databases/mocks"
	"github.com/lexflow/legal-case-api/models"
)

func TestRegisterUserHandler_Client(t *testing.T) {
	mockUserDB := &mocks.UserDatabase{}
	mockUserDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)
	mockUserDB.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)

	u := handlers.User{DB: mockUserDB}

	body := `{"firstName":"Ana","lastName":"Torres","email":"Ana.Torres@Example.com","password":"s3cret-pw"}`
	req := httptest.NewRequest("POST", "/api/v1/user/create-user", strings.NewReader(body))
	rr := httptest.NewRecorder()

	u.RegisterUserHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)

	details := resp["user"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, models.RoleClient, details["role"])
	// email normalized, password never echoed back
	assert.Equal(t, "ana.torres@example.com", details["email"])
	assert.Empty(t, details["password"])
}

func TestRegisterUserHandler_LawyerNeedsBarNumber(t *testing.T) {
	u := handlers.User{DB: &mocks.UserDatabase{}}

	body := `{"firstName":"Luis","lastName":"Mora","email":"luis@example.com","password":"pw","role":"lawyer"}`
	req := httptest.NewRequest("POST", "/api/v1/user/create-user", strings.NewReader(body))
	rr := httptest.NewRecorder()

	u.RegisterUserHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "bar number")
}

func TestRegisterUserHandler_DuplicateEmail(t *testing.T) {
	mockUserDB := &mocks.UserDatabase{}
	mockUserDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{}, nil)

	u := handlers.User{DB: mockUserDB}

	body := `{"firstName":"Ana","lastName":"Torres","email":"ana@example.com","password":"pw"}`
	req := httptest.NewRequest("POST", "/api/v1/user/create-user", strings.NewReader(body))
	rr := httptest.NewRecorder()

	u.RegisterUserHandler(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	mockUserDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestUsersByRoleHandler_InvalidRole(t *testing.T) {
	u := handlers.User{DB: &mocks.UserDatabase{}}

	req := httptest.NewRequest("GET", "/api/v1/users?role=clerk", nil)
	rr := httptest.NewRecorder()

	u.UsersByRoleHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
