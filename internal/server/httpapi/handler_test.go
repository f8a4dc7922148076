package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/quickbyte/quickbyte-auth/internal/common"
	"github.com/quickbyte/quickbyte-auth/internal/dbx"
	"github.com/quickbyte/quickbyte-auth/internal/logging"
	"github.com/quickbyte/quickbyte-auth/internal/server/config"
	"github.com/quickbyte/quickbyte-auth/internal/server/models"
	resettokensrepo "github.com/quickbyte/quickbyte-auth/internal/server/repositories/resettokens"
	usersrepo "github.com/quickbyte/quickbyte-auth/internal/server/repositories/users"
	"github.com/quickbyte/quickbyte-auth/internal/server/services"
)

// --- in-memory doubles, same shape as the service-layer test fakes ---

type memUsersRepo struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
	nextID  int
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{byID: map[string]*models.User{}, byEmail: map[string]*models.User{}}
}

func (f *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorEmailAlreadyExists
	}
	f.nextID++
	u.ID = fmt.Sprintf("u-%d", f.nextID)
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *memUsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *memUsersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = newHash
	return nil
}

func (f *memUsersRepo) SetEmailVerified(ctx context.Context, userID string, verified bool) error {
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsEmailVerified = verified
	return nil
}

type memResetRepo struct {
	byToken map[string]*models.ResetPasswordToken
	nextID  int
}

func newMemResetRepo() *memResetRepo {
	return &memResetRepo{byToken: map[string]*models.ResetPasswordToken{}}
}

func (f *memResetRepo) Create(ctx context.Context, token string) (*models.ResetPasswordToken, error) {
	// the real table has UNIQUE(token)
	if _, ok := f.byToken[token]; ok {
		return nil, fmt.Errorf("db error: duplicate token")
	}
	f.nextID++
	r := &models.ResetPasswordToken{ID: fmt.Sprintf("r-%d", f.nextID), Token: token}
	f.byToken[token] = r
	return r, nil
}

func (f *memResetRepo) FindByToken(ctx context.Context, token string) (*models.ResetPasswordToken, error) {
	r, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r, nil
}

func (f *memResetRepo) MarkUsed(ctx context.Context, token string) error {
	r, ok := f.byToken[token]
	if !ok || r.Used {
		return common.ErrorResetTokenAlreadyUsed
	}
	r.Used = true
	return nil
}

type memRepoManager struct {
	u *memUsersRepo
	r *memResetRepo
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *memRepoManager) Users(dbx.DBTX) usersrepo.Repository {
	return m.u
}

func (m *memRepoManager) ResetTokens(dbx.DBTX) resettokensrepo.Repository {
	return m.r
}

type memSessions struct {
	byID   map[string]string
	nextID int
}

func newMemSessions() *memSessions { return &memSessions{byID: map[string]string{}} }

func (f *memSessions) Start(ctx context.Context, userID string) (string, error) {
	f.nextID++
	id := fmt.Sprintf("s-%d", f.nextID)
	f.byID[id] = userID
	return id, nil
}

func (f *memSessions) GetUserID(ctx context.Context, sessionID string) (string, error) {
	userID, ok := f.byID[sessionID]
	if !ok {
		return "", common.ErrorNotFound
	}
	return userID, nil
}

func (f *memSessions) End(ctx context.Context, sessionID string) error {
	delete(f.byID, sessionID)
	return nil
}

type memNotifier struct {
	bodies []string
}

func (f *memNotifier) Send(ctx context.Context, to, subject, body string) error {
	f.bodies = append(f.bodies, body)
	return nil
}

// --- harness ---

type apiEnv struct {
	router   *gin.Engine
	users    *memUsersRepo
	resets   *memResetRepo
	notifier *memNotifier
	mock     sqlmock.Sqlmock
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	env := &apiEnv{
		users:    newMemUsersRepo(),
		resets:   newMemResetRepo(),
		notifier: &memNotifier{},
		mock:     mock,
	}

	cfg := &config.Config{
		SecretKey:                         "test-secret",
		VerificationTokenValidityDuration: time.Hour,
		ResetTokenValidityDuration:        time.Hour,
		SessionValidityDuration:           time.Hour,
		FrontendBaseURL:                   "http://localhost:5173",
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := services.NewAuthService(db, &memRepoManager{u: env.users, r: env.resets}, newMemSessions(), env.notifier, logger, cfg)
	env.router = NewRouter(NewAuthHandler(svc, logger, int(cfg.SessionValidityDuration.Seconds())))
	return env
}

func (e *apiEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	return out
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == common.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func lastToken(t *testing.T, env *apiEnv) string {
	t.Helper()
	body := env.notifier.bodies[len(env.notifier.bodies)-1]
	_, after, found := strings.Cut(body, "token=")
	if !found {
		t.Fatalf("no token in mail body: %q", body)
	}
	tok, _, _ := strings.Cut(after, "'")
	return tok
}

const signupBody = `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"pw-1234"}`

func signupAndVerify(t *testing.T, env *apiEnv) {
	t.Helper()
	if w := env.do(t, http.MethodPost, "/api/authentication/signup", signupBody); w.Code != http.StatusCreated {
		t.Fatalf("signup status %d: %s", w.Code, w.Body.String())
	}
	if w := env.do(t, http.MethodGet, "/api/authentication/verify-email?token="+lastToken(t, env), ""); w.Code != http.StatusOK {
		t.Fatalf("verify-email status %d: %s", w.Code, w.Body.String())
	}
}

// --- tests ---

func TestSignupEndpoint(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodPost, "/api/authentication/signup", signupBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", w.Code, w.Body.String())
	}
	if id, ok := decodeBody(t, w)["id"].(string); !ok || id == "" {
		t.Fatalf("missing id in response: %s", w.Body.String())
	}

	w = env.do(t, http.MethodPost, "/api/authentication/signup", signupBody)
	if w.Code != http.StatusConflict {
		t.Fatalf("want 409 for duplicate, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "User already exists" {
		t.Fatalf("unexpected error body: %s", w.Body.String())
	}
}

func TestSignupEndpoint_BadRequest(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodPost, "/api/authentication/signup", `{"firstName":"Ada"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestLoginEndpoint_StatusTable(t *testing.T) {
	env := newAPIEnv(t)

	// 404: no such user
	w := env.do(t, http.MethodPost, "/api/authentication/login", `{"email":"ada@example.com","password":"pw-1234"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}

	// 403: signed up but unverified
	if w := env.do(t, http.MethodPost, "/api/authentication/signup", signupBody); w.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d", w.Code)
	}
	w = env.do(t, http.MethodPost, "/api/authentication/login", `{"email":"ada@example.com","password":"pw-1234"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("want 403 for unverified, got %d", w.Code)
	}

	// 401: wrong password
	w = env.do(t, http.MethodPost, "/api/authentication/login", `{"email":"ada@example.com","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 for wrong password, got %d", w.Code)
	}

	// 200 after verification
	if w := env.do(t, http.MethodGet, "/api/authentication/verify-email?token="+lastToken(t, env), ""); w.Code != http.StatusOK {
		t.Fatalf("verify-email failed: %d", w.Code)
	}
	w = env.do(t, http.MethodPost, "/api/authentication/login", `{"email":"ada@example.com","password":"pw-1234"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}

	data, ok := decodeBody(t, w)["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data envelope: %s", w.Body.String())
	}
	if data["firstName"] != "Ada" || data["email"] != "ada@example.com" {
		t.Fatalf("unexpected profile: %v", data)
	}
	if _, leaked := data["passwordHash"]; leaked {
		t.Fatalf("password hash must never appear in responses")
	}

	c := sessionCookie(t, w)
	if !c.HttpOnly || c.Value == "" {
		t.Fatalf("session cookie must be set HttpOnly: %+v", c)
	}
}

func TestMeAndLogoutEndpoints(t *testing.T) {
	env := newAPIEnv(t)

	if w := env.do(t, http.MethodGet, "/api/authentication/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without cookie, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/authentication/logout", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without cookie, got %d", w.Code)
	}

	signupAndVerify(t, env)
	w := env.do(t, http.MethodPost, "/api/authentication/login", `{"email":"ada@example.com","password":"pw-1234"}`)
	cookie := sessionCookie(t, w)

	w = env.do(t, http.MethodGet, "/api/authentication/me", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200 for me, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/authentication/logout", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200 for logout, got %d", w.Code)
	}

	// session is gone now
	if w := env.do(t, http.MethodGet, "/api/authentication/me", "", cookie); w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 after logout, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/authentication/logout", "", cookie); w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 for second logout, got %d", w.Code)
	}
}

func TestForgotPasswordEndpoint(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodPost, "/api/authentication/forgot-password", `{"email":"ghost@example.com"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404 for unknown email, got %d", w.Code)
	}

	signupAndVerify(t, env)
	w = env.do(t, http.MethodPost, "/api/authentication/forgot-password", `{"email":"ada@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if decodeBody(t, w)["ok"] != true {
		t.Fatalf("want ok:true, got %s", w.Body.String())
	}
}

func TestResetPasswordFlowEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	signupAndVerify(t, env)

	if w := env.do(t, http.MethodPost, "/api/authentication/forgot-password", `{"email":"ada@example.com"}`); w.Code != http.StatusOK {
		t.Fatalf("forgot-password failed: %d", w.Code)
	}
	token := lastToken(t, env)

	// pre-check on unknown token: the ledger miss is a 404
	w := env.do(t, http.MethodGet, "/api/authentication/verify-reset-password-token?token=unknown", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404 for unknown token, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "Token doesnot exist" {
		t.Fatalf("unexpected error body: %s", w.Body.String())
	}

	// pre-check passes and mutates nothing
	for i := 0; i < 2; i++ {
		w = env.do(t, http.MethodGet, "/api/authentication/verify-reset-password-token?token="+token, "")
		if w.Code != http.StatusOK {
			t.Fatalf("want 200 for valid token, got %d", w.Code)
		}
	}

	// confirmation mismatch is a 401 before anything is looked up
	w = env.do(t, http.MethodPost, "/api/authentication/reset-password",
		`{"password":"pw-5678","confirmPassword":"pw-9999","token":"`+token+`"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 for confirmation mismatch, got %d", w.Code)
	}

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	w = env.do(t, http.MethodPost, "/api/authentication/reset-password",
		`{"password":"pw-5678","confirmPassword":"pw-5678","token":"`+token+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200 for reset, got %d: %s", w.Code, w.Body.String())
	}

	// replay: both the pre-check and the reset now fail 401 already-used
	w = env.do(t, http.MethodGet, "/api/authentication/verify-reset-password-token?token="+token, "")
	if w.Code != http.StatusUnauthorized || decodeBody(t, w)["error"] != "Token has been already used" {
		t.Fatalf("want 401 already-used, got %d: %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodPost, "/api/authentication/reset-password",
		`{"password":"pw-0000","confirmPassword":"pw-0000","token":"`+token+`"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 for replayed reset, got %d", w.Code)
	}

	// the new password logs in
	w = env.do(t, http.MethodPost, "/api/authentication/login", `{"email":"ada@example.com","password":"pw-5678"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login with new password failed: %d", w.Code)
	}
}

func TestSendVerificationEmailEndpoint(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodPost, "/api/authentication/send-verification-email", `{"email":"ghost@example.com"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404 for unknown email, got %d", w.Code)
	}

	if w := env.do(t, http.MethodPost, "/api/authentication/signup", signupBody); w.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/authentication/send-verification-email", `{"email":"ada@example.com"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d", w.Code)
	}
	if id, ok := decodeBody(t, w)["id"].(string); !ok || id == "" {
		t.Fatalf("missing id: %s", w.Body.String())
	}
}

func TestVerifyEmailEndpoint_InvalidToken(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodGet, "/api/authentication/verify-email?token=garbage", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "Invalid token" {
		t.Fatalf("unexpected error body: %s", w.Body.String())
	}
}
