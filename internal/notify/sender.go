package notify

import (
	"encoding/json"
	"os"
	"time"
)

// Default timeout values. Tight on purpose: a save must never feel slower
// because a companion listener is absent or stuck.
const (
	// DefaultConnectTimeout is the default timeout for connecting to the
	// companion socket.
	DefaultConnectTimeout = 15 * time.Millisecond

	// DefaultWriteTimeout is the default timeout for writing events to the socket.
	DefaultWriteTimeout = 20 * time.Millisecond

	// MinConnectTimeout is the minimum allowed connect timeout.
	MinConnectTimeout = 10 * time.Millisecond

	// MaxConnectTimeout is the maximum allowed connect timeout.
	MaxConnectTimeout = 20 * time.Millisecond
)

// EnvNoNotify skips event publishing entirely when set to "1".
const EnvNoNotify = "INKWELL_NO_NOTIFY"

// Sender publishes draft events using fire-and-forget semantics.
// It connects to the companion socket, writes the event, and immediately
// closes the connection without waiting for any acknowledgment.
//
// All errors are silently dropped so a save never blocks the editor.
type Sender struct {
	transport      Transport
	connectTimeout time.Duration
	writeTimeout   time.Duration
}

// NewSender creates a new Sender with the given transport.
// It uses default timeouts which can be overridden with SetConnectTimeout
// and SetWriteTimeout.
func NewSender(t Transport) *Sender {
	return &Sender{
		transport:      t,
		connectTimeout: DefaultConnectTimeout,
		writeTimeout:   DefaultWriteTimeout,
	}
}

// Send attempts to publish an event.
// Returns true if the event was successfully written to the socket,
// false if any error occurred (connection failed, write failed, etc.).
//
// If INKWELL_NO_NOTIFY=1, the event is silently dropped without sending.
//
// This method is fire-and-forget: it does NOT read or wait for any
// acknowledgment from the listener. Events are silently dropped on any error.
func (s *Sender) Send(ev *DraftEvent) bool {
	if ev == nil {
		return false
	}

	// Check for no-notify mode (skip publishing entirely)
	if os.Getenv(EnvNoNotify) == "1" {
		return true // Silently succeed without sending
	}

	// Connect to listener with timeout
	conn, err := s.transport.Dial(s.connectTimeout)
	if err != nil {
		return false
	}
	defer conn.Close()

	// Set write deadline
	if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return false
	}

	// Serialize event to JSON
	data, err := json.Marshal(ev)
	if err != nil {
		return false
	}

	// Write JSON + newline (NDJSON format)
	data = append(data, '\n')
	_, err = conn.Write(data)
	return err == nil
}

// SetConnectTimeout sets the timeout for connecting to the companion socket.
// The timeout is clamped to the valid range (10-20ms).
func (s *Sender) SetConnectTimeout(d time.Duration) {
	if d < MinConnectTimeout {
		d = MinConnectTimeout
	}
	if d > MaxConnectTimeout {
		d = MaxConnectTimeout
	}
	s.connectTimeout = d
}

// SetWriteTimeout sets the timeout for writing events to the socket.
func (s *Sender) SetWriteTimeout(d time.Duration) {
	if d < 0 {
		d = DefaultWriteTimeout
	}
	s.writeTimeout = d
}

// ConnectTimeout returns the current connect timeout.
func (s *Sender) ConnectTimeout() time.Duration {
	return s.connectTimeout
}

// WriteTimeout returns the current write timeout.
func (s *Sender) WriteTimeout() time.Duration {
	return s.writeTimeout
}

// IsNoNotify returns true if INKWELL_NO_NOTIFY is set to "1".
// When true, events should not be published.
func IsNoNotify() bool {
	return os.Getenv(EnvNoNotify) == "1"
}
