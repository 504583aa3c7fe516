package realtime

import "sync"

// Member is a registry entry: a live connection that can receive events.
// The registry tracks which subject a member belongs to itself, so members
// only expose identity and delivery.
type Member interface {
	ID() string
	Send(event string, data any) error
}

// Registry owns the subject-to-connections mapping. It is identity-agnostic:
// callers enforce the rule that a connection only ever joins its own
// subject's channel. All operations are atomic under a single lock, and
// Members returns a snapshot so broadcasts never iterate live state.
type Registry struct {
	mu       sync.RWMutex
	channels map[int64]map[string]Member
	subjects map[string]int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[int64]map[string]Member),
		subjects: make(map[string]int64),
	}
}

// Join adds the member to the subject's channel, creating the channel on
// first join. Idempotent. Reports whether this was the subject's first live
// connection.
func (r *Registry) Join(subjectID int64, m Member) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel, ok := r.channels[subjectID]
	if !ok {
		channel = make(map[string]Member)
		r.channels[subjectID] = channel
	}
	channel[m.ID()] = m
	r.subjects[m.ID()] = subjectID
	return !ok
}

// Leave removes the given connection from the subject's channel. Empty
// channels are deleted. Reports whether the subject now has no connections.
func (r *Registry) Leave(subjectID int64, connectionID string) (emptied bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropLocked(subjectID, connectionID)
}

// Members returns a snapshot of the subject's live connections, possibly
// empty.
func (r *Registry) Members(subjectID int64) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channel := r.channels[subjectID]
	members := make([]Member, 0, len(channel))
	for _, m := range channel {
		members = append(members, m)
	}
	return members
}

// Remove deletes the connection from whatever channel it belongs to.
// Idempotent: a second call for the same connection is a no-op. Returns the
// subject the connection belonged to (zero if unknown) and whether its
// channel is now empty.
func (r *Registry) Remove(connectionID string) (subjectID int64, emptied bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subjectID, ok := r.subjects[connectionID]
	if !ok {
		return 0, false
	}
	return subjectID, r.dropLocked(subjectID, connectionID)
}

// Subjects returns a snapshot of every subject that currently has at least
// one live connection.
func (r *Registry) Subjects() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subjects := make([]int64, 0, len(r.channels))
	for subjectID := range r.channels {
		subjects = append(subjects, subjectID)
	}
	return subjects
}

// ConnectionCount reports the number of live connections across all channels.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subjects)
}

func (r *Registry) dropLocked(subjectID int64, connectionID string) (emptied bool) {
	channel, ok := r.channels[subjectID]
	if !ok {
		return false
	}
	if _, ok := channel[connectionID]; !ok {
		return false
	}

	delete(channel, connectionID)
	delete(r.subjects, connectionID)
	if len(channel) == 0 {
		delete(r.channels, subjectID)
		return true
	}
	return false
}
