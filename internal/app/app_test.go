package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"portal_backend/internal/ratelimit"
	"portal_backend/internal/services"
	"portal_backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	mail   *testutil.MailRecorder
	lookup *testutil.StubLookup
}

type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(100, time.Minute)
	}

	db := testutil.NewTestDB(t)
	mail := testutil.NewMailRecorder()
	lookup := testutil.NewStubLookup()

	router := SetupRouter(testutil.NewTestConfig(), db, Deps{
		EmailProvider: mail,
		AddressLookup: lookup,
		Limiter:       limiter,
	})

	return &testServer{router: router, db: db, mail: mail, lookup: lookup}
}

// send выполняет запрос; body может быть строкой (сырой JSON) или значением для json.Marshal
func (ts *testServer) send(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// login возвращает cookie сессии для созданного проверенного аккаунта
func (ts *testServer) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := ts.send(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": testutil.TestPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == "access_token_cookie" {
			return c
		}
	}
	t.Fatalf("session cookie not set: %v", rec.Header())
	return nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.send(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestSignup_RejectsForeignDomain(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.send(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"first_name": "Ann",
		"last_name":  "Lee",
		"email":      "ann@gmail.com",
		"password":   "super_password123",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeError(t, rec)
	assert.Contains(t, body.Error.Details["email"], "domain is not allowed")
	assert.Zero(t, ts.mail.Total())
}

func TestSignup_ValidationErrorsPerField(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.send(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"first_name": " ",
		"email":      "not-an-email",
		"password":   "short",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	details := decodeError(t, rec).Error.Details
	assert.Contains(t, details, "first_name")
	assert.Contains(t, details, "last_name")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestBadBodies(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.send(t, http.MethodPost, "/api/auth/login", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.send(t, http.MethodPost, "/api/auth/login", `{"email": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)
	email := testutil.UniqueEmail("lifecycle")

	rec := ts.send(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"first_name": "Ann",
		"last_name":  "Lee",
		"email":      email,
		"password":   "super_password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.send(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"first_name": "Ann",
		"last_name":  "Lee",
		"email":      email,
		"password":   "super_password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.send(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": "super_password123"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "вход до подтверждения email")

	require.Eventually(t, func() bool {
		_, ok := ts.mail.LastVerification(email)
		return ok
	}, time.Second, 10*time.Millisecond)
	sent, _ := ts.mail.LastVerification(email)
	link, err := url.Parse(sent.Link)
	require.NoError(t, err)
	token := link.Query().Get("member")

	rec = ts.send(t, http.MethodGet, "/api/auth/check-setup?member="+url.QueryEscape(token), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"pending_email"}`, rec.Body.String())

	rec = ts.send(t, http.MethodPost, "/api/auth/verify-email", map[string]string{"token": token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.send(t, http.MethodPut, "/api/auth/setup-profile", map[string]interface{}{
		"token":       token,
		"job_title":   "Manager",
		"amazon_site": []string{"Amazon CTZ", "DEN2"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.send(t, http.MethodGet, "/api/auth/check-setup?member="+url.QueryEscape(token), nil)
	assert.JSONEq(t, `{"status":"already_completed"}`, rec.Body.String())

	cookie := ts.login(t, email)

	rec = ts.send(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Ann Lee"`)

	rec = ts.send(t, http.MethodGet, "/api/auth/profile", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amazon_site":"Amazon CTZ"`)

	rec = ts.send(t, http.MethodPost, "/api/auth/session/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := rec.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Equal(t, "", cleared[0].Value)
	assert.True(t, cleared[0].MaxAge < 0)
}

func TestCheckSetup_InvalidToken(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.send(t, http.MethodGet, "/api/auth/check-setup?member=garbage", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"invalid"}`, rec.Body.String())
}

func TestSetupProfile_RequiresArrays(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.send(t, http.MethodPut, "/api/auth/setup-profile", `{"token":"x","amazon_site":"Amazon CTZ"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Details["amazon_site"], "array")

	rec = ts.send(t, http.MethodPut, "/api/auth/setup-profile", `{"token":"x","other_accounts":"acct-1"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Details, "other_accounts")
}

func TestForgotPassword_SameResponseForUnknownEmail(t *testing.T) {
	ts := newTestServer(t, nil)
	user := testutil.CreateUser(t, ts.db, testutil.UniqueEmail("forgot"), true)

	known := ts.send(t, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": user.Email})
	unknown := ts.send(t, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "ghost@dtgpower.com"})

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.Contains(t, known.Body.String(), services.MsgResetCodeGeneric)

	resendKnown := ts.send(t, http.MethodPost, "/api/auth/resend-verification", map[string]string{"email": user.Email})
	resendUnknown := ts.send(t, http.MethodPost, "/api/auth/resend-verification", map[string]string{"email": "ghost@dtgpower.com"})
	assert.Equal(t, resendKnown.Code, resendUnknown.Code)
	assert.Equal(t, resendKnown.Body.String(), resendUnknown.Body.String())
}

func TestLogin_StatusCodes(t *testing.T) {
	ts := newTestServer(t, nil)
	verified := testutil.CreateUser(t, ts.db, testutil.UniqueEmail("codes"), true)
	pending := testutil.CreateUser(t, ts.db, testutil.UniqueEmail("codes_pending"), false)

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"unknown email", "ghost@dtgpower.com", testutil.TestPassword, http.StatusNotFound},
		{"bad password", verified.Email, "wrong-password", http.StatusUnauthorized},
		{"unverified", pending.Email, testutil.TestPassword, http.StatusForbidden},
		{"ok", verified.Email, testutil.TestPassword, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.send(t, http.MethodPost, "/api/auth/login", map[string]string{"email": tt.email, "password": tt.password})
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestLogin_RateLimited(t *testing.T) {
	ts := newTestServer(t, ratelimit.NewMemoryLimiter(2, time.Minute))
	body := map[string]string{"email": "ghost@dtgpower.com", "password": "whatever1"}

	for i := 0; i < 2; i++ {
		rec := ts.send(t, http.MethodPost, "/api/auth/login", body)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	rec := ts.send(t, http.MethodPost, "/api/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = ts.send(t, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "ghost@dtgpower.com"})
	assert.Equal(t, http.StatusOK, rec.Code, "лимит считается отдельно для каждого маршрута")
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, path := range []string{"/api/auth/me", "/api/auth/profile", "/api/sites", "/api/settings", "/api/settings/shipping"} {
		rec := ts.send(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := ts.send(t, http.MethodGet, "/api/sites", nil, &http.Cookie{Name: "access_token_cookie", Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSitesCRUD(t *testing.T) {
	ts := newTestServer(t, nil)
	user := testutil.CreateUser(t, ts.db, testutil.UniqueEmail("crud"), true)
	cookie := ts.login(t, user.Email)

	rec := ts.send(t, http.MethodGet, "/api/sites", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = ts.send(t, http.MethodPost, "/api/sites", map[string]string{"site": "CTZ"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first struct {
		ID        uint   `json:"id"`
		Label     string `json:"label"`
		IsDefault bool   `json:"is_default"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, "Amazon CTZ", first.Label)
	assert.True(t, first.IsDefault)

	rec = ts.send(t, http.MethodPost, "/api/sites", map[string]string{"site": "amazon ctz"}, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.send(t, http.MethodPost, "/api/sites", map[string]string{"site": "Amazon"}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.send(t, http.MethodPost, "/api/sites", map[string]string{"site": "DEN2"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var second struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	rec = ts.send(t, http.MethodPatch, "/api/sites/"+itoa(second.ID)+"/default", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.send(t, http.MethodGet, "/api/settings", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amazon_site":"Amazon DEN2"`)

	rec = ts.send(t, http.MethodDelete, "/api/sites/"+itoa(second.ID), nil, cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.send(t, http.MethodDelete, "/api/sites/"+itoa(second.ID), nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.send(t, http.MethodDelete, "/api/sites/abc", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.send(t, http.MethodGet, "/api/auth/profile/sites", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_default":true`)
}

func TestSettingsAndShipping(t *testing.T) {
	ts := newTestServer(t, nil)
	user := testutil.CreateUser(t, ts.db, testutil.UniqueEmail("settings"), true)
	cookie := ts.login(t, user.Email)

	rec := ts.send(t, http.MethodGet, "/api/settings/shipping", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.send(t, http.MethodPut, "/api/settings/shipping", map[string]string{"city": "Austin"}, cookie)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Details, "address1")

	rec = ts.send(t, http.MethodPut, "/api/settings/shipping", map[string]string{"address1": "1 Main St", "city": "Austin"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.send(t, http.MethodGet, "/api/settings/shipping", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"city":"Austin"`)

	rec = ts.send(t, http.MethodPut, "/api/settings", map[string]interface{}{
		"job_title":      "Director",
		"other_accounts": []string{"acct-1"},
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"job_title":"Director"`)
	assert.Contains(t, rec.Body.String(), `"other_accounts":["acct-1"]`)
	assert.Contains(t, rec.Body.String(), `"first_name":"Test"`)

	rec = ts.send(t, http.MethodPut, "/api/auth/change-password", map[string]string{
		"current_password": testutil.TestPassword,
		"new_password":     "brand_new_pass1",
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
