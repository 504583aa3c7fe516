package service

import (
	"crypto/subtle"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/BerkantGC/hotel-booking-api/internal/observability"
	"github.com/BerkantGC/hotel-booking-api/internal/realtime"
	apperrors "github.com/BerkantGC/hotel-booking-api/pkg/util"
)

// ErrNoTargetSubject marks a dispatch payload that names no recipient.
var ErrNoTargetSubject = errors.New("notification has no target subject")

// ChannelResolver is the slice of the registry the dispatcher needs.
type ChannelResolver interface {
	Members(subjectID int64) []realtime.Member
}

// DispatchService is the trusted ingress for server-originated notifications.
// Callers are sibling services holding the shared internal secret, never end
// users.
type DispatchService struct {
	secret   []byte
	registry ChannelResolver
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewDispatchService creates the service.
func NewDispatchService(secret string, registry ChannelResolver, metrics *observability.Metrics, logger *zap.Logger) *DispatchService {
	return &DispatchService{
		secret:   []byte(secret),
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// notificationTarget pulls the recipient out of an otherwise opaque payload.
// The notification service serializes the owning user as a nested object;
// a flat user_id is accepted as well.
type notificationTarget struct {
	User *struct {
		ID int64 `json:"id"`
	} `json:"user"`
	UserID int64 `json:"user_id"`
}

func (t notificationTarget) subjectID() (int64, bool) {
	if t.User != nil && t.User.ID != 0 {
		return t.User.ID, true
	}
	if t.UserID != 0 {
		return t.UserID, true
	}
	return 0, false
}

// Authorize checks the caller's shared secret. Exact match, no partial
// trust; callers must reject before reading anything else from an
// unauthorized request.
func (s *DispatchService) Authorize(secret string) error {
	if subtle.ConstantTimeCompare([]byte(secret), s.secret) != 1 {
		s.metrics.RecordDispatch(false)
		return apperrors.NewForbidden("forbidden")
	}
	return nil
}

// Dispatch validates the caller's secret, resolves the target subject's
// channel and broadcasts the payload to every live connection in it.
// Delivery is best-effort to currently connected sessions: zero members is
// success, and a send racing a session close is dropped silently. Returns the
// number of connections the broadcast was issued to.
func (s *DispatchService) Dispatch(secret string, notification json.RawMessage) (int, error) {
	if err := s.Authorize(secret); err != nil {
		return 0, err
	}

	var target notificationTarget
	if err := json.Unmarshal(notification, &target); err != nil {
		s.metrics.RecordDispatch(false)
		return 0, apperrors.NewValidationError("invalid notification payload", nil)
	}
	subjectID, ok := target.subjectID()
	if !ok {
		s.metrics.RecordDispatch(false)
		return 0, apperrors.NewValidationError(ErrNoTargetSubject.Error(), nil)
	}

	members := s.registry.Members(subjectID)
	delivered := 0
	for _, m := range members {
		payload := map[string]json.RawMessage{"notification": notification}
		if err := m.Send(realtime.EventNotification, payload); err != nil {
			// The member raced its own close; partial delivery is fine.
			continue
		}
		delivered++
	}

	s.metrics.RecordDispatch(true)
	s.metrics.RecordEventPushed(delivered)
	s.logger.Info("notification dispatched",
		zap.Int64("subject_id", subjectID),
		zap.Int("connections", delivered))
	return delivered, nil
}
