//go:build !windows

package notify

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortTempDir creates a temp directory with a short path suitable for Unix sockets.
// Unix sockets have a path length limit (~104-108 chars on macOS).
func shortTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "ink-n")
	if err != nil {
		t.Fatalf("failed to create short temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// testServer accepts connections and collects received events.
type testServer struct {
	listener  net.Listener
	transport *UnixTransport
	stopCh    chan struct{}
	events    []*DraftEvent
	wg        sync.WaitGroup
	mu        sync.Mutex
}

func newTestServer(t *testing.T, socketPath string) *testServer {
	t.Helper()
	tr := NewUnixTransport(socketPath)
	listener, err := tr.Listen()
	require.NoError(t, err)

	return &testServer{
		listener:  listener,
		transport: tr,
		events:    make([]*DraftEvent, 0),
		stopCh:    make(chan struct{}),
	}
}

func (s *testServer) acceptOne() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		// Read the event (NDJSON format)
		reader := bufio.NewReader(conn)
		line, err := reader.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return
		}

		if len(line) > 0 {
			var ev DraftEvent
			if json.Unmarshal(line, &ev) == nil {
				s.mu.Lock()
				s.events = append(s.events, &ev)
				s.mu.Unlock()
			}
		}
	}()
}

func (s *testServer) getEvents() []*DraftEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*DraftEvent, len(s.events))
	copy(result, s.events)
	return result
}

func (s *testServer) close() {
	close(s.stopCh)
	s.listener.Close()
	s.transport.Close()
	s.wg.Wait()
}

func TestNewSender(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "test.sock")
	tr := NewUnixTransport(socketPath)

	sender := NewSender(tr)

	assert.NotNil(t, sender)
	assert.Equal(t, DefaultConnectTimeout, sender.ConnectTimeout())
	assert.Equal(t, DefaultWriteTimeout, sender.WriteTimeout())
}

func TestSender_Send_Success(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "send.sock")

	// Start test server
	server := newTestServer(t, socketPath)
	defer server.close()
	server.acceptOne()

	// Create sender
	tr := NewUnixTransport(socketPath)
	sender := NewSender(tr)
	// Use longer timeouts for test reliability
	sender.connectTimeout = 100 * time.Millisecond
	sender.writeTimeout = 100 * time.Millisecond

	ev := &DraftEvent{
		Version: 1,
		Type:    EventTypeDraftSaved,
		Ts:      1730000000123,
		DraftID: "test-draft",
		Title:   "Evening pages",
		Words:   120,
	}

	result := sender.Send(ev)
	assert.True(t, result)

	// Wait for server to process
	server.wg.Wait()

	// Verify event was received
	events := server.getEvents()
	require.Len(t, events, 1)
	assert.Equal(t, ev.DraftID, events[0].DraftID)
	assert.Equal(t, ev.Title, events[0].Title)
	assert.Equal(t, ev.Words, events[0].Words)
}

func TestSender_Send_ConnectTimeout_NoServer(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "noserver.sock")

	// No server listening - should fail fast
	tr := NewUnixTransport(socketPath)
	sender := NewSender(tr)

	ev := NewDraftEvent()
	ev.DraftID = "test"

	start := time.Now()
	result := sender.Send(ev)
	elapsed := time.Since(start)

	assert.False(t, result)
	// Should fail quickly since socket doesn't exist
	assert.Less(t, elapsed, 50*time.Millisecond)
}

func TestSender_Send_SilentDropOnError(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "drop.sock")

	// No server - connection will fail
	tr := NewUnixTransport(socketPath)
	sender := NewSender(tr)

	ev := NewDraftEvent()
	ev.DraftID = "test"

	// Should return false (dropped) without panic or error logging
	result := sender.Send(ev)
	assert.False(t, result)

	// Verify no panic when sending nil
	result = sender.Send(nil)
	assert.False(t, result)
}

func TestSender_SetConnectTimeout(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "timeout.sock")
	tr := NewUnixTransport(socketPath)
	sender := NewSender(tr)

	// Test within valid range
	sender.SetConnectTimeout(12 * time.Millisecond)
	assert.Equal(t, 12*time.Millisecond, sender.ConnectTimeout())

	// Test below minimum - should clamp
	sender.SetConnectTimeout(5 * time.Millisecond)
	assert.Equal(t, MinConnectTimeout, sender.ConnectTimeout())

	// Test above maximum - should clamp
	sender.SetConnectTimeout(50 * time.Millisecond)
	assert.Equal(t, MaxConnectTimeout, sender.ConnectTimeout())
}

func TestSender_SetWriteTimeout(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "write.sock")
	tr := NewUnixTransport(socketPath)
	sender := NewSender(tr)

	sender.SetWriteTimeout(25 * time.Millisecond)
	assert.Equal(t, 25*time.Millisecond, sender.WriteTimeout())

	// Negative should use default
	sender.SetWriteTimeout(-1 * time.Millisecond)
	assert.Equal(t, DefaultWriteTimeout, sender.WriteTimeout())
}

func TestSender_NDJSONFormat(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "ndjson.sock")

	server := newTestServer(t, socketPath)
	defer server.close()
	server.acceptOne()

	tr := NewUnixTransport(socketPath)
	sender := NewSender(tr)
	sender.connectTimeout = 100 * time.Millisecond
	sender.writeTimeout = 100 * time.Millisecond

	ev := &DraftEvent{
		Version:  1,
		Type:     EventTypeDraftSaved,
		Ts:       1730000000123,
		DraftID:  "ndjson-test",
		Title:    `a "quoted" title` + "\n\ttabbed",
		Words:    7,
		Revision: 4,
		Origin:   "revise",
	}

	result := sender.Send(ev)
	assert.True(t, result)

	server.wg.Wait()

	// Verify event was received with all fields intact
	events := server.getEvents()
	require.Len(t, events, 1)
	received := events[0]

	assert.Equal(t, ev.Version, received.Version)
	assert.Equal(t, ev.Type, received.Type)
	assert.Equal(t, ev.Ts, received.Ts)
	assert.Equal(t, ev.DraftID, received.DraftID)
	assert.Equal(t, ev.Title, received.Title)
	assert.Equal(t, ev.Words, received.Words)
	assert.Equal(t, ev.Revision, received.Revision)
	assert.Equal(t, ev.Origin, received.Origin)
}

func TestSender_MultipleEvents(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "multi.sock")

	server := newTestServer(t, socketPath)
	defer server.close()

	// Accept multiple connections
	for i := 0; i < 3; i++ {
		server.acceptOne()
	}

	tr := NewUnixTransport(socketPath)
	sender := NewSender(tr)
	sender.connectTimeout = 100 * time.Millisecond
	sender.writeTimeout = 100 * time.Millisecond

	for i := 0; i < 3; i++ {
		ev := NewDraftEvent()
		ev.DraftID = "multi-test"
		ev.Words = i

		result := sender.Send(ev)
		assert.True(t, result)
	}

	server.wg.Wait()

	events := server.getEvents()
	assert.Len(t, events, 3)
}

func TestSender_NoNotifyMode(t *testing.T) {
	t.Setenv(EnvNoNotify, "1")

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "nonotify.sock")

	server := newTestServer(t, socketPath)
	defer server.close()
	server.acceptOne()

	tr := NewUnixTransport(socketPath)
	sender := NewSender(tr)
	sender.connectTimeout = 100 * time.Millisecond
	sender.writeTimeout = 100 * time.Millisecond

	ev := NewDraftEvent()
	ev.DraftID = "private-draft"

	// Send should succeed without actually sending
	result := sender.Send(ev)
	assert.True(t, result, "Send should return true even though event was dropped")

	// Give server a moment to receive (it shouldn't)
	time.Sleep(50 * time.Millisecond)

	events := server.getEvents()
	assert.Len(t, events, 0, "No events should be received in no-notify mode")
}

func TestIsNoNotify(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     bool
	}{
		{"not set", "", false},
		{"set to 1", "1", true},
		{"set to 0", "0", false},
		{"set to true", "true", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue == "" {
				t.Setenv(EnvNoNotify, "")
				os.Unsetenv(EnvNoNotify)
			} else {
				t.Setenv(EnvNoNotify, tt.envValue)
			}
			assert.Equal(t, tt.want, IsNoNotify())
		})
	}
}
