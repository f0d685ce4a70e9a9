package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/config"
	"github.com/mrhexvel/ezgu/internal/model"
	"github.com/mrhexvel/ezgu/internal/notify"
	"github.com/mrhexvel/ezgu/internal/testutil"
	"github.com/mrhexvel/ezgu/internal/tokenstore"
	"github.com/mrhexvel/ezgu/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "router-test-secret"

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT:    config.JWTConfig{Secret: testSecret, ExpireHours: 1, CookieName: "auth_token"},
		Upload: config.UploadConfig{Dir: t.TempDir(), URLPrefix: "/uploads", MaxBytes: 1 << 20},
	}
	engine := NewEngine(cfg, db, zap.NewNop(), tokenstore.Noop{}, notify.NoopNotifier{})
	return &testServer{t: t, db: db, engine: engine}
}

func (s *testServer) token(u *model.User) string {
	s.t.Helper()
	tok, _, err := jwt.GenerateToken(testSecret, u.ID, u.Role, time.Hour)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status, code int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, code, body["code"])
	assert.NotEmpty(t, body["error"])
}

func authCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" {
			return c
		}
	}
	return nil
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestRegisterLoginLogout(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"name": "Vera", "email": "Vera@Example.org", "password": "password1",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "vera@example.org", user["email"])
	assert.Equal(t, model.RoleVolunteer, user["role"])
	assert.NotContains(t, user, "password_hash")

	cookie := authCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	// The cookie alone authenticates.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	s.engine.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "Vera", decode(t, me)["user"].(map[string]interface{})["name"])

	w = s.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"name": "Vera 2", "email": "vera@example.org", "password": "password1",
	}, "")
	assertError(t, w, http.StatusConflict, 40901)

	w = s.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"name": "Weak", "email": "weak@example.org", "password": "short",
	}, "")
	assertError(t, w, http.StatusBadRequest, 40002)

	w = s.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "vera@example.org", "password": "wrong-pass1"}, "")
	assertError(t, w, http.StatusUnauthorized, 40101)

	w = s.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "vera@example.org", "password": "password1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["token"].(string)

	w = s.do(http.MethodPost, "/api/v1/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := authCookie(w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	assertError(t, s.do(http.MethodGet, "/api/v1/auth/me", nil, ""), http.StatusUnauthorized, 40102)
	assertError(t, s.do(http.MethodGet, "/api/v1/auth/me", nil, "garbage"), http.StatusUnauthorized, 40102)

	u := testutil.CreateUser(t, s.db, "vera", model.RoleVolunteer)
	expired, _, err := jwt.GenerateToken(testSecret, u.ID, u.Role, -time.Minute)
	require.NoError(t, err)
	assertError(t, s.do(http.MethodGet, "/api/v1/auth/me", nil, expired), http.StatusUnauthorized, 40103)
}

func TestRoleChecks(t *testing.T) {
	s := newTestServer(t)
	volunteer := testutil.CreateUser(t, s.db, "vera", model.RoleVolunteer)
	organizer := testutil.CreateUser(t, s.db, "olga", model.RoleOrganizer)
	admin := testutil.CreateUser(t, s.db, "ada", model.RoleAdmin)

	payload := gin.H{"title": "Beach Cleanup"}
	assertError(t, s.do(http.MethodPost, "/api/v1/projects", payload, s.token(volunteer)), http.StatusForbidden, 40301)

	w := s.do(http.MethodPost, "/api/v1/projects", payload, s.token(organizer))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "project created", decode(t, w)["message"])

	w = s.do(http.MethodPost, "/api/v1/projects", gin.H{"title": "River Walk"}, s.token(admin))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assertError(t, s.do(http.MethodPost, "/api/v1/projects", payload, s.token(organizer)), http.StatusConflict, 40902)

	assertError(t, s.do(http.MethodGet, "/api/v1/users", nil, s.token(organizer)), http.StatusForbidden, 40301)
	assertError(t, s.do(http.MethodGet, "/api/v1/admin/stats", nil, s.token(volunteer)), http.StatusForbidden, 40301)

	w = s.do(http.MethodGet, "/api/v1/admin/stats?period=weekly", nil, s.token(admin))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	activity := decode(t, w)["stats"].(map[string]interface{})["activity"].(map[string]interface{})
	assert.Len(t, activity["labels"], 7)

	assertError(t, s.do(http.MethodGet, "/api/v1/admin/stats?period=daily", nil, s.token(admin)), http.StatusBadRequest, 40001)
}

func TestProjectListPagination(t *testing.T) {
	s := newTestServer(t)
	for _, title := range []string{"One", "Two", "Three"} {
		testutil.CreateProject(t, s.db, title, nil)
	}

	w := s.do(http.MethodGet, "/api/v1/projects?limit=2&page=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Len(t, body["items"], 1)
	pagination := body["pagination"].(map[string]interface{})
	assert.EqualValues(t, 3, pagination["total"])
	assert.EqualValues(t, 2, pagination["page"])
	assert.EqualValues(t, 2, pagination["limit"])
	assert.EqualValues(t, 2, pagination["total_pages"])

	assertError(t, s.do(http.MethodGet, "/api/v1/projects/no-such-project", nil, ""), http.StatusNotFound, 40402)
}

func TestInvitationAndHoursFlow(t *testing.T) {
	s := newTestServer(t)
	organizer := testutil.CreateUser(t, s.db, "olga", model.RoleOrganizer)
	volunteer := testutil.CreateUser(t, s.db, "vera", model.RoleVolunteer)
	project := testutil.CreateProject(t, s.db, "Food Bank", nil)
	orgToken, volToken := s.token(organizer), s.token(volunteer)
	base := "/api/v1/projects/" + itoa(project.ID)

	w := s.do(http.MethodPost, base+"/invite", gin.H{"user_ids": []uint{volunteer.ID, volunteer.ID}}, orgToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["invitations"], 1)

	assertError(t, s.do(http.MethodPost, base+"/invite", gin.H{"user_ids": []uint{volunteer.ID}}, orgToken), http.StatusConflict, 40904)
	assertError(t, s.do(http.MethodPost, base+"/invite", gin.H{"user_ids": []uint{9999}}, orgToken), http.StatusBadRequest, 40007)

	w = s.do(http.MethodGet, "/api/v1/invitations", nil, volToken)
	require.Equal(t, http.StatusOK, w.Code)
	invitations := decode(t, w)["invitations"].([]interface{})
	require.Len(t, invitations, 1)
	invID := uint(invitations[0].(map[string]interface{})["id"].(float64))

	// Someone else cannot answer it.
	assertError(t, s.do(http.MethodPost, "/api/v1/invitations/"+itoa(invID)+"/accept", nil, orgToken), http.StatusNotFound, 40404)

	w = s.do(http.MethodPost, "/api/v1/invitations/"+itoa(invID)+"/accept", nil, volToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	participant := decode(t, w)["participant"].(map[string]interface{})
	assert.Equal(t, model.ParticipantConfirmed, participant["status"])
	partID := uint(participant["id"].(float64))

	assertError(t, s.do(http.MethodPost, "/api/v1/invitations/"+itoa(invID)+"/accept", nil, volToken), http.StatusBadRequest, 40004)
	assertError(t, s.do(http.MethodPost, base+"/join", nil, volToken), http.StatusConflict, 40903)

	assertError(t, s.do(http.MethodPost, base+"/hours", gin.H{"participant_id": partID, "hours": "3"}, orgToken), http.StatusBadRequest, 40001)
	assertError(t, s.do(http.MethodPost, base+"/hours", gin.H{"participant_id": partID, "hours": 0}, orgToken), http.StatusBadRequest, 40001)
	assertError(t, s.do(http.MethodPost, base+"/hours", gin.H{"participant_id": partID, "hours": 2}, volToken), http.StatusForbidden, 40301)

	w = s.do(http.MethodPost, base+"/hours", gin.H{"participant_id": partID, "hours": 2.5}, orgToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, 2.5, body["participant"].(map[string]interface{})["hours"])
	assert.Equal(t, "Hours awarded by olga", body["log"].(map[string]interface{})["note"])

	var u model.User
	testutil.Reload(t, s.db, &u, volunteer.ID)
	assert.Equal(t, 2.5, u.Hours)

	w = s.do(http.MethodGet, "/api/v1/users/"+itoa(volunteer.ID)+"/hours?period=weekly", nil, volToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	hours := decode(t, w)["hours"].(map[string]interface{})
	assert.Equal(t, 2.5, hours["period_hours"])
	assert.Len(t, hours["chart"], 7)

	other := testutil.CreateUser(t, s.db, "otto", model.RoleVolunteer)
	assertError(t, s.do(http.MethodGet, "/api/v1/users/"+itoa(volunteer.ID)+"/hours", nil, s.token(other)), http.StatusForbidden, 40301)

	w = s.do(http.MethodGet, base+"/hours", nil, orgToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["logs"], 1)

	var logs int64
	s.db.Model(&model.OperationLog{}).Where("action = ?", "award_hours").Count(&logs)
	assert.EqualValues(t, 1, logs)
}

func TestJoinAndLeave(t *testing.T) {
	s := newTestServer(t)
	volunteer := testutil.CreateUser(t, s.db, "vera", model.RoleVolunteer)
	project := testutil.CreateProject(t, s.db, "Library", nil)
	tok := s.token(volunteer)
	base := "/api/v1/projects/" + itoa(project.ID)

	w := s.do(http.MethodPost, base+"/join", nil, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, model.ParticipantRegistered, decode(t, w)["participant"].(map[string]interface{})["status"])

	assertError(t, s.do(http.MethodPost, base+"/join", nil, tok), http.StatusConflict, 40903)

	w = s.do(http.MethodGet, "/api/v1/projects/mine", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["participations"], 1)

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, base+"/join", nil, tok).Code)
	assertError(t, s.do(http.MethodDelete, base+"/join", nil, tok), http.StatusNotFound, 40409)
	assertError(t, s.do(http.MethodPost, "/api/v1/projects/9999/join", nil, tok), http.StatusNotFound, 40402)
}

func TestUserManagement(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "ada", model.RoleAdmin)
	volunteer := testutil.CreateUser(t, s.db, "vera", model.RoleVolunteer)

	assertError(t, s.do(http.MethodDelete, "/api/v1/users/"+itoa(admin.ID), nil, s.token(admin)), http.StatusBadRequest, 40003)

	w := s.do(http.MethodPut, "/api/v1/users/"+itoa(volunteer.ID), gin.H{"role": model.RoleAdmin}, s.token(volunteer))
	assertError(t, w, http.StatusForbidden, 40301)

	w = s.do(http.MethodPut, "/api/v1/users/"+itoa(volunteer.ID), gin.H{"role": model.RoleOrganizer}, s.token(admin))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.RoleOrganizer, decode(t, w)["user"].(map[string]interface{})["role"])

	w = s.do(http.MethodGet, "/api/v1/users?role=organizer", nil, s.token(admin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/v1/users/"+itoa(volunteer.ID), nil, s.token(admin)).Code)
	assertError(t, s.do(http.MethodGet, "/api/v1/users/"+itoa(volunteer.ID), nil, s.token(admin)), http.StatusNotFound, 40401)

	w = s.do(http.MethodGet, "/api/v1/admin/operation-logs?resource_type=user", nil, s.token(admin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 2)

	assertError(t, s.do(http.MethodGet, "/api/v1/users/abc", nil, s.token(admin)), http.StatusBadRequest, 40001)
}

func TestUploadImage(t *testing.T) {
	s := newTestServer(t)
	u := testutil.CreateUser(t, s.db, "vera", model.RoleVolunteer)

	upload := func(name string, content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+s.token(u))
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		return w
	}

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	w := upload("photo.png", png)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	url := decode(t, w)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	served := s.do(http.MethodGet, url, nil, "")
	assert.Equal(t, http.StatusOK, served.Code)

	assertError(t, upload("notes.png", []byte("just some text")), http.StatusBadRequest, 40008)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
