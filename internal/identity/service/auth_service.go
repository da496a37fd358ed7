package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"cosmetic-compliance-platform/backend/internal/blacklist"
	companydomain "cosmetic-compliance-platform/backend/internal/company/domain"
	companyrepo "cosmetic-compliance-platform/backend/internal/company/repository"
	"cosmetic-compliance-platform/backend/internal/security"
	userdomain "cosmetic-compliance-platform/backend/internal/user/domain"
	userrepo "cosmetic-compliance-platform/backend/internal/user/repository"
)

// Sentinel errors for the auth service; the HTTP handler maps them to status codes.
var (
	// ErrAuthenticationFailed covers both unknown email and wrong password.
	// Callers never learn which half failed.
	ErrAuthenticationFailed = errors.New("invalid email or password")
	// ErrInvalidToken covers malformed, bad-signature, wrong-issuer,
	// wrong-class, and revoked tokens. Collapsed on purpose.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is kept distinct so a client knows a refresh may help.
	ErrTokenExpired = errors.New("token expired")
	// ErrStorageUnavailable means the revocation store could not answer; the
	// request must be retried, never treated as authorized.
	ErrStorageUnavailable = errors.New("revocation store unavailable")

	ErrCurrentPasswordMismatch = errors.New("current password mismatch")
	ErrSameAsOldPassword       = errors.New("new password must differ from the current one")
	ErrInvalidPasswordFormat   = errors.New("password does not meet the policy")
	ErrInvalidEmailFormat      = errors.New("invalid email format")
	ErrDuplicateEmail          = errors.New("email already registered")
	ErrCompanyNotFound         = errors.New("no company registered for this email domain")
	ErrUserNotFound            = errors.New("user not found")
)

// LoginResult holds the outcome of a successful login.
type LoginResult struct {
	Email           string
	CompanyName     string
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
	RefreshTTL      time.Duration
}

// Identity is the verified caller of a protected request.
type Identity struct {
	Subject   string
	CompanyID int64
}

// Profile is the user-facing account view.
type Profile struct {
	Email       string
	CompanyName string
}

// AuditLogger records auth events best-effort. Nil disables auditing.
type AuditLogger interface {
	LogEvent(ctx context.Context, companyID int64, subject, action, resource, metadata string)
}

// AuthService orchestrates login, refresh, logout, and password changes over
// the token provider and the revocation store. It holds no per-session state;
// the token pair is the session.
type AuthService struct {
	users     userrepo.Repository
	companies companyrepo.Repository
	hasher    *security.Hasher
	tokens    *security.TokenProvider
	revoked   blacklist.Store
	audit     AuditLogger
}

// NewAuthService returns an AuthService with the given dependencies. audit may be nil.
func NewAuthService(
	users userrepo.Repository,
	companies companyrepo.Repository,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	revoked blacklist.Store,
	audit AuditLogger,
) *AuthService {
	return &AuthService{
		users:     users,
		companies: companies,
		hasher:    hasher,
		tokens:    tokens,
		revoked:   revoked,
		audit:     audit,
	}
}

// Login authenticates with email/password and issues an access/refresh pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrAuthenticationFailed
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logEvent(ctx, 0, email, "login_failure", "session", "unknown email")
		return nil, ErrAuthenticationFailed
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.logEvent(ctx, user.CompanyID, email, "login_failure", "session", "bad password")
		return nil, ErrAuthenticationFailed
	}
	company, err := s.companies.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}

	access, _, accessExp, err := s.tokens.IssueAccess(email, company.ID)
	if err != nil {
		return nil, err
	}
	refresh, _, refreshExp, err := s.tokens.IssueRefresh(email)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, company.ID, email, "login_success", "session", "")

	return &LoginResult{
		Email:           email,
		CompanyName:     company.Name,
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: accessExp,
		RefreshTTL:      time.Until(refreshExp),
	}, nil
}

// SignUp registers a new account. The company is resolved from the email's
// domain part; unknown domains are rejected.
func (s *AuthService) SignUp(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return ErrInvalidEmailFormat
	}
	if !validPassword(password) {
		return ErrInvalidPasswordFormat
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateEmail
	}
	company, err := s.companyForEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return err
	}
	user := &userdomain.User{
		CompanyID:    company.ID,
		Email:        email,
		PasswordHash: hash,
		RegDate:      time.Now().UTC(),
	}
	if err := user.Validate(); err != nil {
		return err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.logEvent(ctx, company.ID, email, "signup", "user", "")
	return nil
}

// Refresh mints a new access token from a valid, unrevoked refresh token. The
// refresh token itself is not rotated. The tenant is re-resolved from the
// user row, never trusted from old claims.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (accessToken string, expiresAt time.Time, err error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", time.Time{}, mapCodecError(err)
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", time.Time{}, ErrStorageUnavailable
	}
	if revoked {
		return "", time.Time{}, ErrInvalidToken
	}
	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return "", time.Time{}, err
	}
	if user == nil {
		return "", time.Time{}, ErrInvalidToken
	}
	access, _, accessExp, err := s.tokens.IssueAccess(user.Email, user.CompanyID)
	if err != nil {
		return "", time.Time{}, err
	}
	return access, accessExp, nil
}

// Logout revokes both tokens for their remaining lifetimes. Idempotent:
// already-revoked, expired, or garbage tokens do not error.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.invalidateSession(ctx, accessToken, refreshToken); err != nil {
		return err
	}
	if claims, err := s.tokens.Extract(accessToken); err == nil {
		s.logEvent(ctx, claims.CompanyID, claims.Subject, "logout", "session", "")
	}
	return nil
}

// ChangePassword verifies the current password, applies the policy to the new
// one, persists the new hash, and unconditionally invalidates the presented
// session: the owner must log in again under the new credential.
func (s *AuthService) ChangePassword(ctx context.Context, accessToken, refreshToken, currentPassword, newPassword string) error {
	ident, err := s.Authenticate(ctx, accessToken)
	if err != nil {
		return err
	}
	user, err := s.users.GetByEmail(ctx, ident.Subject)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(currentPassword)); err != nil {
		return ErrCurrentPasswordMismatch
	}
	if newPassword == currentPassword {
		return ErrSameAsOldPassword
	}
	if !validPassword(newPassword) {
		return ErrInvalidPasswordFormat
	}
	hash, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.invalidateSession(ctx, accessToken, refreshToken); err != nil {
		return err
	}
	s.logEvent(ctx, user.CompanyID, user.Email, "password_change", "user", "")
	return nil
}

// DeleteAccount revokes both tokens and removes the user row.
func (s *AuthService) DeleteAccount(ctx context.Context, accessToken, refreshToken string) error {
	ident, err := s.Authenticate(ctx, accessToken)
	if err != nil {
		return err
	}
	user, err := s.users.GetByEmail(ctx, ident.Subject)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.invalidateSession(ctx, accessToken, refreshToken); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.logEvent(ctx, user.CompanyID, user.Email, "account_delete", "user", "")
	return nil
}

// UserInfo returns the profile for an authenticated subject.
func (s *AuthService) UserInfo(ctx context.Context, subject string) (*Profile, error) {
	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	company, err := s.companies.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	name := ""
	if company != nil {
		name = company.Name
	}
	return &Profile{Email: user.Email, CompanyName: name}, nil
}

// Authenticate is the single verify-and-resolve call for protected requests:
// access-class verification followed by the revocation check. A store failure
// is surfaced as ErrStorageUnavailable and never as "not revoked".
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, mapCodecError(err)
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return &Identity{Subject: claims.Subject, CompanyID: claims.CompanyID}, nil
}

// invalidateSession blacklists both tokens' jtis for their remaining
// lifetimes. Tokens that fail signature/issuer checks or have already lapsed
// are skipped silently, which makes logout idempotent.
func (s *AuthService) invalidateSession(ctx context.Context, tokens ...string) error {
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		claims, err := s.tokens.Extract(tok)
		if err != nil {
			continue
		}
		ttl := s.tokens.RemainingTTL(claims)
		if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
			return ErrStorageUnavailable
		}
	}
	return nil
}

func (s *AuthService) companyForEmail(ctx context.Context, email string) (*companydomain.Company, error) {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return nil, ErrInvalidEmailFormat
	}
	company, err := s.companies.GetByDomain(ctx, email[at+1:])
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}
	return company, nil
}

func (s *AuthService) logEvent(ctx context.Context, companyID int64, subject, action, resource, metadata string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, companyID, subject, action, resource, metadata)
	}
}

// mapCodecError collapses codec errors into the service taxonomy. Only expiry
// stays distinguishable; the rest must not leak verification internals.
func mapCodecError(err error) error {
	if errors.Is(err, security.ErrExpired) {
		return ErrTokenExpired
	}
	return ErrInvalidToken
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,6}$`)

func validEmail(email string) bool {
	if len(email) < 5 || len(email) > 254 {
		return false
	}
	return emailPattern.MatchString(email)
}

// validPassword enforces the sign-up policy: 10–72 characters from letters,
// digits, and @$!%*?&, with at least one lowercase, uppercase, digit, and
// special character.
func validPassword(password string) bool {
	if len(password) < 10 || len(password) > 72 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune("@$!%*?&", r):
			hasSpecial = true
		default:
			return false
		}
	}
	return hasLower && hasUpper && hasDigit && hasSpecial
}
