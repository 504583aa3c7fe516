package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/BerkantGC/hotel-booking-api/internal/auth"
)

// AuthService fronts the token verifier for HTTP collaborators. The
// introspection endpoint and the websocket gate share the exact same
// verification path, so a token valid for one is valid for the other.
type AuthService struct {
	verifier *auth.TokenVerifier
	logger   *zap.Logger
}

// NewAuthService creates the service.
func NewAuthService(verifier *auth.TokenVerifier, logger *zap.Logger) *AuthService {
	return &AuthService{verifier: verifier, logger: logger}
}

// Introspect reports whether the credential is currently valid and, if so,
// which subject it belongs to.
func (s *AuthService) Introspect(ctx context.Context, credential string) (int64, error) {
	subjectID, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		s.logger.Debug("token introspection failed", zap.Error(err))
		return 0, err
	}
	return subjectID, nil
}

// Verifier returns the underlying token verifier for the connection gate.
func (s *AuthService) Verifier() *auth.TokenVerifier {
	return s.verifier
}
