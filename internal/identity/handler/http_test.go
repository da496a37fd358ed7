package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"cosmetic-compliance-platform/backend/internal/blacklist"
	companydomain "cosmetic-compliance-platform/backend/internal/company/domain"
	identityservice "cosmetic-compliance-platform/backend/internal/identity/service"
	"cosmetic-compliance-platform/backend/internal/security"
	"cosmetic-compliance-platform/backend/internal/server"
	userdomain "cosmetic-compliance-platform/backend/internal/user/domain"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testEmail    = "eng@acme.com"
	testPassword = "Val1dPass!word"
)

type memUserRepo struct {
	byEmail map[string]*userdomain.User
	nextID  int64
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	return r.byEmail[email], nil
}

func (r *memUserRepo) Create(_ context.Context, u *userdomain.User) error {
	r.nextID++
	u.ID = r.nextID
	r.byEmail[u.Email] = u
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	for _, u := range r.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
		}
	}
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	for email, u := range r.byEmail {
		if u.ID == id {
			delete(r.byEmail, email)
		}
	}
	return nil
}

type memCompanyRepo struct {
	byID     map[int64]*companydomain.Company
	byDomain map[string]*companydomain.Company
}

func (r *memCompanyRepo) GetByID(_ context.Context, id int64) (*companydomain.Company, error) {
	return r.byID[id], nil
}

func (r *memCompanyRepo) GetByDomain(_ context.Context, d string) (*companydomain.Company, error) {
	return r.byDomain[d], nil
}

func (r *memCompanyRepo) Create(_ context.Context, c *companydomain.Company) error {
	r.byID[c.ID] = c
	r.byDomain[c.Domain] = c
	return nil
}

type fixture struct {
	router  *mux.Router
	svc     *identityservice.AuthService
	revoked *blacklist.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	company := &companydomain.Company{ID: 7, Name: "Acme Cosmetics", Domain: "acme.com", RegDate: time.Now()}
	companies := &memCompanyRepo{
		byID:     map[int64]*companydomain.Company{company.ID: company},
		byDomain: map[string]*companydomain.Company{company.Domain: company},
	}

	hasher := security.NewHasher(4)
	hash, err := hasher.Hash([]byte(testPassword))
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users := &memUserRepo{byEmail: map[string]*userdomain.User{
		testEmail: {ID: 1, CompanyID: company.ID, Email: testEmail, PasswordHash: hash, RegDate: time.Now()},
	}, nextID: 1}

	tokens := security.NewTokenProvider([]byte(testSecret), "cosy-auth", 30*time.Minute, 168*time.Hour)
	revoked := blacklist.NewMemoryStore()
	svc := identityservice.NewAuthService(users, companies, hasher, tokens, revoked, nil)

	root := mux.NewRouter()
	protected := root.PathPrefix("/").Subrouter()
	protected.Use(server.RequireAuth(svc))
	New(svc).Register(root, protected)

	return &fixture{router: root, svc: svc, revoked: revoked}
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login(t *testing.T) (access string, refreshCookie *http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"`+testEmail+`","password":"`+testPassword+`"}`))
	rec := f.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == RefreshCookieName {
			refreshCookie = c
		}
	}
	if refreshCookie == nil {
		t.Fatal("login did not set the refresh cookie")
	}
	return body.AccessToken, refreshCookie
}

func TestLoginSetsRefreshCookie(t *testing.T) {
	f := newFixture(t)
	access, cookie := f.login(t)

	if access == "" {
		t.Error("access token missing from response body")
	}
	if !cookie.HttpOnly || !cookie.Secure {
		t.Error("refresh cookie must be httpOnly and secure")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("SameSite = %v, want Strict", cookie.SameSite)
	}
	if cookie.Path != "/api/auth" {
		t.Errorf("cookie path = %q, want /api/auth", cookie.Path)
	}
	if cookie.MaxAge <= 0 {
		t.Errorf("cookie MaxAge = %d, want positive", cookie.MaxAge)
	}
}

func TestLoginFailureIsGeneric(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{
		`{"email":"nobody@acme.com","password":"` + testPassword + `"}`,
		`{"email":"` + testEmail + `","password":"WrongPass1!"}`,
	} {
		rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		var apiErr server.APIError
		if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		if apiErr.Code != "AUTHENTICATION_FAILED" {
			t.Errorf("error code = %q, want AUTHENTICATION_FAILED", apiErr.Code)
		}
	}
}

func TestRefreshMintsAccessToken(t *testing.T) {
	f := newFixture(t)
	_, cookie := f.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(cookie)
	rec := f.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body refreshResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode refresh response: %v", err)
	}
	if _, err := f.svc.Authenticate(req.Context(), body.AccessToken); err != nil {
		t.Errorf("minted access token rejected: %v", err)
	}
	// Refresh must not rotate: no new cookie is set.
	for _, c := range rec.Result().Cookies() {
		if c.Name == RefreshCookieName {
			t.Error("refresh must not set a new refresh cookie")
		}
	}
}

func TestRefreshWithoutCookie(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLogoutRevokesAndClearsCookie(t *testing.T) {
	f := newFixture(t)
	access, cookie := f.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	req.AddCookie(cookie)
	rec := f.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == RefreshCookieName {
			cleared = c
		}
	}
	if cleared == nil || cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Error("logout must clear the refresh cookie")
	}

	// Both tokens are dead now.
	if _, err := f.svc.Authenticate(req.Context(), access); err == nil {
		t.Error("access token still accepted after logout")
	}
	refreshReq := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	refreshReq.AddCookie(cookie)
	if rec := f.do(t, refreshReq); rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked refresh token got %d, want 401", rec.Code)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	if rec := f.do(t, req); rec.Code != http.StatusOK {
		t.Errorf("logout with garbage token got %d, want 200", rec.Code)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	f := newFixture(t)
	access, cookie := f.login(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/auth/password",
		strings.NewReader(`{"currentPassword":"WrongPass1!","newPassword":"An0therGood!"}`))
	req.Header.Set("Authorization", "Bearer "+access)
	req.AddCookie(cookie)
	rec := f.do(t, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var apiErr server.APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if apiErr.Code != "CURRENT_PASSWORD_MISMATCH" {
		t.Errorf("error code = %q, want CURRENT_PASSWORD_MISMATCH", apiErr.Code)
	}
	// Session survives a failed attempt.
	if _, err := f.svc.Authenticate(req.Context(), access); err != nil {
		t.Errorf("access token rejected after failed password change: %v", err)
	}
}

func TestChangePasswordInvalidatesSession(t *testing.T) {
	f := newFixture(t)
	access, cookie := f.login(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/auth/password",
		strings.NewReader(`{"currentPassword":"`+testPassword+`","newPassword":"An0therGood!"}`))
	req.Header.Set("Authorization", "Bearer "+access)
	req.AddCookie(cookie)
	rec := f.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if _, err := f.svc.Authenticate(req.Context(), access); err == nil {
		t.Error("old access token still accepted after password change")
	}
}

func TestMeRequiresAuth(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/users/me", nil)); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated /api/users/me got %d, want 401", rec.Code)
	}
}

func TestMeReturnsProfile(t *testing.T) {
	f := newFixture(t)
	access, _ := f.login(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := f.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if body.Email != testEmail || body.CompanyName != "Acme Cosmetics" {
		t.Errorf("profile = %+v", body)
	}
}

func TestSignUpFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"email":"new@acme.com","password":"`+testPassword+`"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}

	cases := []struct {
		name    string
		body    string
		code    int
		apiCode string
	}{
		{"duplicate", `{"email":"new@acme.com","password":"` + testPassword + `"}`, http.StatusConflict, "DUPLICATE_EMAIL"},
		{"unknown domain", `{"email":"x@unknown.io","password":"` + testPassword + `"}`, http.StatusNotFound, "COMPANY_NOT_FOUND"},
		{"bad email", `{"email":"not-an-email","password":"` + testPassword + `"}`, http.StatusBadRequest, "INVALID_EMAIL_FORMAT"},
		{"weak password", `{"email":"weak@acme.com","password":"short"}`, http.StatusBadRequest, "INVALID_PASSWORD_FORMAT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(tc.body)))
			if rec.Code != tc.code {
				t.Fatalf("status = %d, want %d", rec.Code, tc.code)
			}
			var apiErr server.APIError
			if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if apiErr.Code != tc.apiCode {
				t.Errorf("error code = %q, want %q", apiErr.Code, tc.apiCode)
			}
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	access, cookie := f.login(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	req.AddCookie(cookie)
	rec := f.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}

	// The account is gone and the session is dead.
	loginReq := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"`+testEmail+`","password":"`+testPassword+`"}`))
	if rec := f.do(t, loginReq); rec.Code != http.StatusUnauthorized {
		t.Errorf("login after delete got %d, want 401", rec.Code)
	}
	if _, err := f.svc.Authenticate(req.Context(), access); err == nil {
		t.Error("access token still accepted after account deletion")
	}
}
