package realtime

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BerkantGC/hotel-booking-api/internal/observability"
	"github.com/BerkantGC/hotel-booking-api/internal/repository"
)

// presenceMirror is the slice of the presence store the hub drives.
// *Presence satisfies it.
type presenceMirror interface {
	MarkOnline(ctx context.Context, subjectID int64)
	MarkOffline(ctx context.Context, subjectID int64)
}

// Hub drives the per-connection lifecycle: channel join, backlog replay, the
// client event loop and teardown. The connection gate has already verified
// identity by the time a session reaches the hub.
type Hub struct {
	registry      *Registry
	notifications repository.NotificationRepository
	presence      presenceMirror
	metrics       *observability.Metrics
	logger        *zap.Logger
	storeTimeout  time.Duration
	done          chan struct{}

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewHub wires the hub's collaborators.
func NewHub(registry *Registry, notifications repository.NotificationRepository, presence presenceMirror, metrics *observability.Metrics, logger *zap.Logger, storeTimeout time.Duration) *Hub {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &Hub{
		registry:      registry,
		notifications: notifications,
		presence:      presence,
		metrics:       metrics,
		logger:        logger,
		storeTimeout:  storeTimeout,
		done:          make(chan struct{}),
		sessions:      make(map[string]*Session),
	}
}

// Registry exposes the channel registry for the dispatcher.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Run services one authenticated session until its transport closes. It
// blocks, so the websocket handler calls it from the connection's own
// goroutine. Events from a single client are handled in arrival order by
// this loop; different sessions run fully interleaved.
func (h *Hub) Run(sess *Session) {
	if !h.track(sess) {
		sess.Close()
		return
	}
	defer h.drop(sess)

	sess.markAuthenticated()
	first := h.registry.Join(sess.SubjectID(), sess)
	h.metrics.RecordSessionOpened()
	h.logger.Info("client connected",
		zap.String("connection_id", sess.ID()),
		zap.Int64("subject_id", sess.SubjectID()))

	if first {
		h.markOnline(sess.SubjectID())
	}

	h.sendBacklog(sess)

	for {
		env, err := sess.ReadEnvelope()
		if err != nil {
			return
		}
		if env == nil {
			continue
		}

		switch env.Event {
		case EventLeave:
			h.handleLeave(sess, env)
		default:
			h.logger.Debug("ignoring unknown event",
				zap.String("event", env.Event),
				zap.String("connection_id", sess.ID()))
		}
	}
}

// sendBacklog replays the subject's pending notifications as a single batch.
// It runs exactly once per connection, right after the registry join. A store
// failure leaves the session open and tells the client instead; the server
// does not retry.
func (h *Hub) sendBacklog(sess *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), h.storeTimeout)
	defer cancel()

	backlog, err := h.notifications.ListPendingForSubject(ctx, sess.SubjectID())
	if err != nil {
		h.metrics.RecordBacklogFailure()
		h.logger.Error("backlog fetch failed",
			zap.Int64("subject_id", sess.SubjectID()), zap.Error(err))
		_ = sess.Send(EventError, ErrorPayload{Message: "failed to fetch notifications"})
		return
	}

	if err := sess.Send(EventNotifications, backlog); err != nil {
		return
	}
	h.metrics.RecordEventPushed(1)
	h.logger.Info("backlog sent",
		zap.Int64("subject_id", sess.SubjectID()),
		zap.Int("count", len(backlog)))
}

// handleLeave processes an explicit leave request. A client may only leave
// its own channel; a claim for any other subject is refused without touching
// the registry.
func (h *Hub) handleLeave(sess *Session, env *Envelope) {
	claimed, err := parseSubjectID(env.Data)
	if err != nil {
		_ = sess.Send(EventError, ErrorPayload{Message: "invalid leave payload"})
		return
	}

	if claimed != sess.SubjectID() {
		_ = sess.Send(EventError, ErrorPayload{Message: "you can only leave your own channel"})
		return
	}

	emptied := h.registry.Leave(claimed, sess.ID())
	if emptied {
		h.markOffline(claimed)
	}
	h.logger.Info("client left channel",
		zap.String("connection_id", sess.ID()),
		zap.Int64("subject_id", claimed))
}

// drop tears a session down after its read loop ends. Removal is
// unconditional and idempotent: a disconnect racing an in-flight leave must
// converge on the same registry state.
func (h *Hub) drop(sess *Session) {
	subjectID, emptied := h.registry.Remove(sess.ID())
	if emptied {
		h.markOffline(subjectID)
	}
	sess.Close()

	h.mu.Lock()
	delete(h.sessions, sess.ID())
	h.mu.Unlock()

	h.metrics.RecordSessionClosed()
	h.logger.Info("client disconnected",
		zap.String("connection_id", sess.ID()),
		zap.Int64("subject_id", sess.SubjectID()))
}

func (h *Hub) track(sess *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[sess.ID()] = sess
	return true
}

func (h *Hub) markOnline(subjectID int64) {
	if h.presence == nil {
		return
	}
	h.presence.MarkOnline(context.Background(), subjectID)
}

func (h *Hub) markOffline(subjectID int64) {
	if h.presence == nil {
		return
	}
	h.presence.MarkOffline(context.Background(), subjectID)
}

// RefreshPresence periodically re-marks every subject that still has live
// connections. The join/leave triggers fire outside the registry lock, so a
// mark racing an unmark can land out of order; presence keys expire, and this
// loop renews the truthful state within one interval. Blocks until Shutdown.
func (h *Hub) RefreshPresence(interval time.Duration) {
	if h.presence == nil {
		return
	}
	if interval <= 0 {
		interval = 20 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			for _, subjectID := range h.registry.Subjects() {
				h.presence.MarkOnline(context.Background(), subjectID)
			}
		}
	}
}

// Shutdown closes every live session and stops accepting new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.done)
	}
	live := make([]*Session, 0, len(h.sessions))
	for _, sess := range h.sessions {
		live = append(live, sess)
	}
	h.mu.Unlock()

	for _, sess := range live {
		sess.Close()
	}
}
