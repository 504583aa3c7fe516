package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"

	"github.com/BerkantGC/hotel-booking-api/internal/repository"
)

// Claims describes the JWT payload issued by the platform's auth service.
// Tokens carry the numeric user ID either as "userId" or "id".
type Claims struct {
	UserID *int64 `json:"userId,omitempty"`
	ID     *int64 `json:"id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the user ID the token claims, preferring "userId".
func (c *Claims) SubjectID() (int64, bool) {
	if c.UserID != nil {
		return *c.UserID, true
	}
	if c.ID != nil {
		return *c.ID, true
	}
	return 0, false
}

// TokenVerifier validates bearer credentials and confirms the subject still
// exists in the backing store. Results are never cached: subject deletion
// must take effect on the very next verification.
type TokenVerifier struct {
	secret       []byte
	subjects     repository.SubjectRepository
	storeTimeout time.Duration
}

// NewTokenVerifier builds a verifier over the process-wide JWT secret.
func NewTokenVerifier(secret string, subjects repository.SubjectRepository, storeTimeout time.Duration) *TokenVerifier {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &TokenVerifier{secret: []byte(secret), subjects: subjects, storeTimeout: storeTimeout}
}

// Verify checks the credential's signature and expiry, extracts the subject
// ID, and performs one point lookup against the store. A store failure during
// verification means identity cannot be confirmed, which the caller must
// treat the same as an invalid credential.
func (v *TokenVerifier) Verify(ctx context.Context, credential string) (int64, error) {
	if credential == "" {
		return 0, NewError(ReasonMissingCredential, nil)
	}

	claims, err := v.parse(credential)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, NewError(ReasonExpired, err)
		}
		return 0, NewError(ReasonInvalid, err)
	}

	subjectID, ok := claims.SubjectID()
	if !ok {
		return 0, NewError(ReasonInvalid, errors.New("token carries no user id"))
	}

	lookupCtx, cancel := context.WithTimeout(ctx, v.storeTimeout)
	defer cancel()

	if _, err := v.subjects.GetByID(lookupCtx, subjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, NewError(ReasonNotFound, nil)
		}
		// Identity cannot be confirmed while the store is down.
		return 0, NewError(ReasonInvalid, err)
	}

	return subjectID, nil
}

func (v *TokenVerifier) parse(credential string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(credential, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
