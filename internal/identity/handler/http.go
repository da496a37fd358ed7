// Package handler exposes the auth and account endpoints over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	identityservice "cosmetic-compliance-platform/backend/internal/identity/service"
	"cosmetic-compliance-platform/backend/internal/server"
)

// RefreshCookieName is the cookie carrying the refresh token. Scoped to the
// auth path so it is only ever sent to refresh/logout/password endpoints.
const (
	RefreshCookieName = "refresh_token"
	refreshCookiePath = "/api/auth"
)

// Handler serves the auth endpoints.
type Handler struct {
	auth         *identityservice.AuthService
	loginCounter metric.Int64Counter
}

// New returns an auth HTTP handler over the given service.
func New(auth *identityservice.AuthService) *Handler {
	meter := otel.Meter("cosmetic-compliance-platform/backend/internal/identity/handler")
	counter, _ := meter.Int64Counter("auth.login.attempts",
		metric.WithDescription("Login attempts by result"))
	return &Handler{auth: auth, loginCounter: counter}
}

// Register mounts the public auth routes and the protected account routes.
// protected must already carry the auth middleware.
func (h *Handler) Register(public, protected *mux.Router) {
	public.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)
	public.HandleFunc("/api/auth/signup", h.SignUp).Methods(http.MethodPost)
	public.HandleFunc("/api/auth/refresh", h.Refresh).Methods(http.MethodPost)
	public.HandleFunc("/api/auth/logout", h.Logout).Methods(http.MethodPost)
	public.HandleFunc("/api/auth/password", h.ChangePassword).Methods(http.MethodPatch)
	protected.HandleFunc("/api/users/me", h.Me).Methods(http.MethodGet)
	protected.HandleFunc("/api/users", h.DeleteAccount).Methods(http.MethodDelete)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Email       string `json:"email"`
	CompanyName string `json:"companyName"`
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

// Login authenticates and returns the access token in the body; the refresh
// token travels only in an http-only cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.countLogin(r, "failure")
		if errors.Is(err, identityservice.ErrAuthenticationFailed) {
			server.WriteError(w, http.StatusUnauthorized, "AUTHENTICATION_FAILED", "invalid email or password")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, "INTERNAL", "login failed")
		return
	}
	h.countLogin(r, "success")

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    res.RefreshToken,
		Path:     refreshCookiePath,
		MaxAge:   int(res.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	server.WriteJSON(w, http.StatusOK, loginResponse{
		Email:       res.Email,
		CompanyName: res.CompanyName,
		AccessToken: res.AccessToken,
		Message:     "login success",
	})
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new account under the company matching the email domain.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := h.auth.SignUp(r.Context(), req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, identityservice.ErrInvalidEmailFormat):
			server.WriteError(w, http.StatusBadRequest, "INVALID_EMAIL_FORMAT", "email format is invalid")
		case errors.Is(err, identityservice.ErrInvalidPasswordFormat):
			server.WriteError(w, http.StatusBadRequest, "INVALID_PASSWORD_FORMAT", "password must be 10-72 chars with upper, lower, digit, and one of @$!%*?&")
		case errors.Is(err, identityservice.ErrDuplicateEmail):
			server.WriteError(w, http.StatusConflict, "DUPLICATE_EMAIL", "email already registered")
		case errors.Is(err, identityservice.ErrCompanyNotFound):
			server.WriteError(w, http.StatusNotFound, "COMPANY_NOT_FOUND", "no company registered for this email domain")
		default:
			server.WriteError(w, http.StatusInternalServerError, "INTERNAL", "sign up failed")
		}
		return
	}
	server.WriteJSON(w, http.StatusCreated, map[string]string{"message": "signup success"})
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Refresh mints a new access token from the refresh cookie.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		server.WriteError(w, http.StatusUnauthorized, "INVALID_TOKEN", "missing refresh token")
		return
	}
	access, _, err := h.auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, identityservice.ErrStorageUnavailable) {
			server.WriteError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "try again later")
			return
		}
		// Expired and invalid refresh tokens look the same to the client.
		server.WriteError(w, http.StatusUnauthorized, "INVALID_TOKEN", "invalid token")
		return
	}
	server.WriteJSON(w, http.StatusOK, refreshResponse{AccessToken: access})
}

// Logout revokes both tokens and clears the refresh cookie. Succeeds even
// when the tokens were already invalid or expired.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken := server.ExtractBearer(r)
	refreshToken := ""
	if cookie, err := r.Cookie(RefreshCookieName); err == nil {
		refreshToken = cookie.Value
	}
	if err := h.auth.Logout(r.Context(), accessToken, refreshToken); err != nil {
		server.WriteError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "try again later")
		return
	}
	clearRefreshCookie(w)
	server.WriteJSON(w, http.StatusOK, map[string]string{"message": "logout success"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword rotates the credential and invalidates the presented session.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	accessToken := server.ExtractBearer(r)
	if accessToken == "" {
		server.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization")
		return
	}
	refreshToken := ""
	if cookie, err := r.Cookie(RefreshCookieName); err == nil {
		refreshToken = cookie.Value
	}
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := h.auth.ChangePassword(r.Context(), accessToken, refreshToken, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, identityservice.ErrCurrentPasswordMismatch):
			server.WriteError(w, http.StatusUnauthorized, "CURRENT_PASSWORD_MISMATCH", "current password check failed")
		case errors.Is(err, identityservice.ErrSameAsOldPassword):
			server.WriteError(w, http.StatusBadRequest, "SAME_AS_OLD_PASSWORD", "new password must differ from the current one")
		case errors.Is(err, identityservice.ErrInvalidPasswordFormat):
			server.WriteError(w, http.StatusBadRequest, "INVALID_PASSWORD_FORMAT", "password must be 10-72 chars with upper, lower, digit, and one of @$!%*?&")
		case errors.Is(err, identityservice.ErrStorageUnavailable):
			server.WriteError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "try again later")
		case errors.Is(err, identityservice.ErrTokenExpired), errors.Is(err, identityservice.ErrInvalidToken):
			server.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization")
		default:
			server.WriteError(w, http.StatusInternalServerError, "INTERNAL", "password change failed")
		}
		return
	}
	clearRefreshCookie(w)
	server.WriteJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

type profileResponse struct {
	Email       string `json:"email"`
	CompanyName string `json:"companyName"`
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	subject, ok := server.GetSubject(r.Context())
	if !ok {
		server.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization")
		return
	}
	p, err := h.auth.UserInfo(r.Context(), subject)
	if err != nil {
		if errors.Is(err, identityservice.ErrUserNotFound) {
			server.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, "INTERNAL", "profile lookup failed")
		return
	}
	server.WriteJSON(w, http.StatusOK, profileResponse{Email: p.Email, CompanyName: p.CompanyName})
}

// DeleteAccount removes the account and invalidates the session.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accessToken := server.ExtractBearer(r)
	refreshToken := ""
	if cookie, err := r.Cookie(RefreshCookieName); err == nil {
		refreshToken = cookie.Value
	}
	if err := h.auth.DeleteAccount(r.Context(), accessToken, refreshToken); err != nil {
		switch {
		case errors.Is(err, identityservice.ErrStorageUnavailable):
			server.WriteError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "try again later")
		case errors.Is(err, identityservice.ErrUserNotFound):
			server.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
		default:
			server.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization")
		}
		return
	}
	clearRefreshCookie(w)
	server.WriteJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) countLogin(r *http.Request, result string) {
	if h.loginCounter == nil {
		return
	}
	h.loginCounter.Add(r.Context(), 1, metric.WithAttributes(attribute.String("result", result)))
}
