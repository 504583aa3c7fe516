package realtime

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// State tracks a session through its lifecycle.
type State int

const (
	StateConnecting State = iota
	StateAuthenticated
	StateClosed
)

// ErrSessionClosed is returned by Send once the session has been torn down.
// A broadcast racing a close receives this error and must treat the send as
// dropped, never as a failure.
var ErrSessionClosed = errors.New("session closed")

// wireConn is the transport surface a session needs. *websocket.Conn
// satisfies it; tests substitute fakes.
type wireConn interface {
	WriteJSON(v interface{}) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Session is one live client connection. The subject is fixed at gate time
// and never changes for the life of the transport.
type Session struct {
	id        string
	subjectID int64
	conn      wireConn

	mu    sync.Mutex
	state State
}

// NewSession wraps an authenticated transport connection.
func NewSession(subjectID int64, conn wireConn) *Session {
	return &Session{
		id:        uuid.NewString(),
		subjectID: subjectID,
		conn:      conn,
		state:     StateConnecting,
	}
}

// ID returns the unique connection identifier.
func (s *Session) ID() string {
	return s.id
}

// SubjectID returns the authenticated subject this session belongs to.
func (s *Session) SubjectID() int64 {
	return s.subjectID
}

// State reports the session's lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) markAuthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateConnecting {
		s.state = StateAuthenticated
	}
}

// Send writes one event envelope to the client. Writes are serialized under
// the session mutex so concurrent broadcasts never interleave frames.
func (s *Session) Send(event string, data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return ErrSessionClosed
	}
	return s.conn.WriteJSON(Envelope{Event: event, Data: encoded})
}

// ReadEnvelope blocks for the next client frame and decodes it. Transport
// errors end the session's read loop.
func (s *Session) ReadEnvelope() (*Envelope, error) {
	_, payload, err := s.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		// Malformed frames are skipped, not fatal.
		return nil, nil
	}
	return &env, nil
}

// Close tears down the transport. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.mu.Unlock()

	_ = s.conn.Close()
}
