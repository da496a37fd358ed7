package security

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Distinguished verification errors. The session manager collapses most of
// these to a single user-facing kind; only expiry is reacted to differently
// (a client may attempt a refresh).
var (
	// ErrMalformed is returned when a token cannot be parsed into the expected structure.
	ErrMalformed = errors.New("malformed token")
	// ErrSignatureInvalid is returned when the HMAC signature does not verify.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrIssuerMismatch is returned when the iss claim differs from the configured issuer.
	ErrIssuerMismatch = errors.New("token issuer mismatch")
	// ErrExpired is returned when the current time is at or past the exp claim.
	ErrExpired = errors.New("token expired")
	// ErrWrongTokenClass is returned when an access token is presented where a
	// refresh token is expected, or vice versa.
	ErrWrongTokenClass = errors.New("wrong token class")
)

// Token classes carried in the "type" claim.
const (
	ClassAccess  = "access"
	ClassRefresh = "refresh"
)

// Claims holds the JWT claims for both token classes. CompanyID is set on
// access tokens only; refresh tokens carry the subject alone and the tenant
// is re-resolved at refresh time.
type Claims struct {
	jwt.RegisteredClaims
	CompanyID int64  `json:"company_id,omitempty"`
	Class     string `json:"type"`
}

// TokenProvider issues and verifies HS256-signed access and refresh tokens.
// The signing secret and issuer are immutable after construction, so a single
// provider is safe for concurrent use.
type TokenProvider struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenProvider returns a TokenProvider that signs with the given HMAC
// secret. issuer is set on every token and required on verification.
func NewTokenProvider(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithNow replaces the provider's clock. Tests use this to pin issuance and
// verification instants.
func (p *TokenProvider) WithNow(now func() time.Time) *TokenProvider {
	p.now = now
	return p
}

// IssueAccess issues a short-lived access token for the given subject and
// company. Returns the token string, its jti, and expiration time.
func (p *TokenProvider) IssueAccess(subject string, companyID int64) (token, jti string, expiresAt time.Time, err error) {
	return p.issue(ClassAccess, subject, companyID, p.accessTTL)
}

// IssueRefresh issues a long-lived refresh token for the given subject. The
// tenant claim is deliberately omitted; it is re-resolved on refresh.
func (p *TokenProvider) IssueRefresh(subject string) (token, jti string, expiresAt time.Time, err error) {
	return p.issue(ClassRefresh, subject, 0, p.refreshTTL)
}

func (p *TokenProvider) issue(class, subject string, companyID int64, ttl time.Duration) (string, string, time.Time, error) {
	jti := uuid.NewString()
	now := p.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		CompanyID: companyID,
		Class:     class,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(p.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, jti, expiresAt, nil
}

// VerifyAccess parses and verifies an access token (signature, issuer, expiry,
// class). Returns the claims or one of the distinguished errors.
func (p *TokenProvider) VerifyAccess(tokenString string) (*Claims, error) {
	return p.verify(tokenString, ClassAccess)
}

// VerifyRefresh parses and verifies a refresh token (signature, issuer,
// expiry, class). Returns the claims or one of the distinguished errors.
func (p *TokenProvider) VerifyRefresh(tokenString string) (*Claims, error) {
	return p.verify(tokenString, ClassRefresh)
}

func (p *TokenProvider) verify(tokenString, class string) (*Claims, error) {
	claims, err := p.parse(tokenString, false)
	if err != nil {
		return nil, err
	}
	if claims.Class != class {
		return nil, ErrWrongTokenClass
	}
	return claims, nil
}

// Extract parses a token checking signature and issuer but tolerating expiry.
// Logout needs the jti and exp of tokens that may already have lapsed; an
// expired token still must not be forgeable, so the signature check stays.
func (p *TokenProvider) Extract(tokenString string) (*Claims, error) {
	return p.parse(tokenString, true)
}

// checkSignature verifies the HMAC over header.payload before any claims
// decoding happens, so a token whose bytes were altered after signing always
// reports ErrSignatureInvalid rather than whichever decode error the damage
// happens to trip first.
func (p *TokenProvider) checkSignature(tokenString string) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return ErrMalformed
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return ErrSignatureInvalid
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, p.secret); err != nil {
		return ErrSignatureInvalid
	}
	return nil
}

func (p *TokenProvider) parse(tokenString string, allowExpired bool) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	if err := p.checkSignature(tokenString); err != nil {
		return nil, err
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformed
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	if claims.Issuer != p.issuer {
		return nil, ErrIssuerMismatch
	}
	if !allowExpired && claims.ExpiresAt != nil && !p.now().Before(claims.ExpiresAt.Time) {
		// jwt.ParseWithClaims treats exp as exclusive of the instant itself;
		// the contract here is "at or past expiry fails".
		return nil, ErrExpired
	}
	if claims.ID == "" || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

// RemainingTTL returns how long the token is still valid relative to the
// provider's clock. Negative or zero for lapsed tokens.
func (p *TokenProvider) RemainingTTL(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(p.now())
}
