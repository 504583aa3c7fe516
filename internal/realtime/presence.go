package realtime

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const presenceKeyPrefix = "presence:"

// Presence mirrors channel liveness into Redis so sibling services can check
// whether a subject has a live session before choosing push delivery. All
// writes are best-effort: Redis being down never affects a connection. Keys
// carry a TTL and the hub re-marks live subjects periodically, so a write
// that lands out of order self-corrects within one refresh interval.
type Presence struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewPresence builds the mirror. A nil client disables it.
func NewPresence(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Presence {
	if client == nil {
		return nil
	}
	return &Presence{client: client, ttl: ttl, logger: logger}
}

// MarkOnline records the subject as having at least one live session.
func (p *Presence) MarkOnline(ctx context.Context, subjectID int64) {
	if p == nil {
		return
	}
	if err := p.client.Set(ctx, presenceKey(subjectID), "1", p.ttl).Err(); err != nil {
		p.logger.Warn("presence mark online failed",
			zap.Int64("subject_id", subjectID), zap.Error(err))
	}
}

// MarkOffline clears the subject's presence key once its last session is gone.
func (p *Presence) MarkOffline(ctx context.Context, subjectID int64) {
	if p == nil {
		return
	}
	if err := p.client.Del(ctx, presenceKey(subjectID)).Err(); err != nil {
		p.logger.Warn("presence mark offline failed",
			zap.Int64("subject_id", subjectID), zap.Error(err))
	}
}

func presenceKey(subjectID int64) string {
	return presenceKeyPrefix + strconv.FormatInt(subjectID, 10)
}
