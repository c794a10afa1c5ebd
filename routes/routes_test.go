package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/middleware"
	"github.com/ProsperCoded/Mini-Jira-Clone/services"
	"github.com/ProsperCoded/Mini-Jira-Clone/testutils"
	"github.com/ProsperCoded/Mini-Jira-Clone/utils/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-test-secret"

type apiFixture struct {
	db     *database.Database
	auth   *services.AuthService
	router *gin.Engine
}

// newAPI wires the real services behind the real auth middleware on a
// throwaway SQLite database.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, close := testutils.SetupTestDB()
	t.Cleanup(close)

	users := &services.UserService{}
	auth := services.NewAuthService(testSecret, 1, users)
	requireAuth := middleware.AuthMiddleware(db, auth, users)

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	api := router.Group("/api")
	RegisterHealthRoutes(api, db)
	RegisterAuthRoutes(api, db, auth, requireAuth)

	protected := api.Group("")
	protected.Use(requireAuth)
	RegisterTaskRoutes(protected, db, &services.TaskService{})
	RegisterTeamRoutes(protected, db, &services.TeamService{})

	return &apiFixture{db: db, auth: auth, router: router}
}

// register signs up a user through the API and returns its id and token.
func (f *apiFixture) register(t *testing.T, username string) (string, string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":    username + "@example.com",
		"username": username,
		"password": "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Data services.AuthResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data.User.ID.String(), body.Data.AccessToken
}

func (f *apiFixture) do(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Message    string                `json:"message"`
	Status     string                `json:"status"`
	StatusCode int                   `json:"statusCode"`
	Data       json.RawMessage       `json:"data"`
	Error      *response.ErrorDetail `json:"error"`
}

// decode parses the envelope and, when out is non-nil, its data.
func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	}
	return env
}
