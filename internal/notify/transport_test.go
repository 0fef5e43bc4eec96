//go:build !windows

package notify

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

// TestDefaultUnixSocketPath verifies the path priority logic.
func TestDefaultUnixSocketPath(t *testing.T) {
	tests := []struct {
		name           string
		xdgRuntimeDir  string
		tmpdir         string
		expectedSuffix string
	}{
		{
			name:           "XDG_RUNTIME_DIR takes priority",
			xdgRuntimeDir:  "/run/user/1000",
			tmpdir:         "/var/tmp",
			expectedSuffix: "/run/user/1000/inkwell/inkwell.sock",
		},
		{
			name:           "TMPDIR fallback when XDG not set",
			xdgRuntimeDir:  "",
			tmpdir:         "/var/tmp",
			expectedSuffix: "/var/tmp/inkwell-",
		},
		{
			name:           "tmp fallback when both unset",
			xdgRuntimeDir:  "",
			tmpdir:         "",
			expectedSuffix: "/tmp/inkwell-",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save original values
			origXDG := os.Getenv("XDG_RUNTIME_DIR")
			origTmp := os.Getenv("TMPDIR")
			defer func() {
				os.Setenv("XDG_RUNTIME_DIR", origXDG)
				os.Setenv("TMPDIR", origTmp)
			}()

			// Set test values
			if tt.xdgRuntimeDir != "" {
				os.Setenv("XDG_RUNTIME_DIR", tt.xdgRuntimeDir)
			} else {
				os.Unsetenv("XDG_RUNTIME_DIR")
			}

			if tt.tmpdir != "" {
				os.Setenv("TMPDIR", tt.tmpdir)
			} else {
				os.Unsetenv("TMPDIR")
			}

			path := DefaultUnixSocketPath()

			if !strings.Contains(path, tt.expectedSuffix) {
				t.Errorf("DefaultUnixSocketPath() = %q, expected to contain %q", path, tt.expectedSuffix)
			}

			if !strings.HasSuffix(path, "inkwell.sock") {
				t.Errorf("DefaultUnixSocketPath() = %q, expected to end with inkwell.sock", path)
			}
		})
	}
}

// TestDefaultUnixSocketPath_ContainsUID verifies UID is included when needed.
func TestDefaultUnixSocketPath_ContainsUID(t *testing.T) {
	// Save and clear XDG_RUNTIME_DIR to test TMPDIR/tmp fallback
	origXDG := os.Getenv("XDG_RUNTIME_DIR")
	os.Unsetenv("XDG_RUNTIME_DIR")
	defer os.Setenv("XDG_RUNTIME_DIR", origXDG)

	path := DefaultUnixSocketPath()
	uid := strconv.Itoa(os.Getuid())

	if !strings.Contains(path, uid) {
		t.Errorf("DefaultUnixSocketPath() = %q, expected to contain UID %s", path, uid)
	}
}

// TestNewUnixTransport verifies transport creation.
func TestNewUnixTransport(t *testing.T) {
	t.Run("custom path", func(t *testing.T) {
		customPath := "/tmp/custom-test.sock"
		transport := NewUnixTransport(customPath)

		if transport.SocketPath() != customPath {
			t.Errorf("SocketPath() = %q, want %q", transport.SocketPath(), customPath)
		}
	})

	t.Run("default path", func(t *testing.T) {
		transport := NewUnixTransport("")
		defaultPath := DefaultUnixSocketPath()

		if transport.SocketPath() != defaultPath {
			t.Errorf("SocketPath() = %q, want %q", transport.SocketPath(), defaultPath)
		}
	})
}

// TestUnixTransport_Listen creates and listens on a socket.
func TestUnixTransport_Listen(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "listen.sock")

	transport := NewUnixTransport(socketPath)

	listener, err := transport.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer listener.Close()
	defer transport.Close()

	// Verify socket file exists
	info, err := os.Stat(socketPath)
	if err != nil {
		t.Fatalf("socket file should exist: %v", err)
	}

	// Verify permissions (0600)
	if info.Mode().Perm() != 0600 {
		t.Errorf("socket permissions = %o, want 0600", info.Mode().Perm())
	}

	if listener.Addr().Network() != "unix" {
		t.Errorf("listener network = %q, want unix", listener.Addr().Network())
	}
}

// TestUnixTransport_Listen_CreatesDirectory verifies parent directory creation.
func TestUnixTransport_Listen_CreatesDirectory(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "nested", "dirs", "listen.sock")

	transport := NewUnixTransport(socketPath)

	listener, err := transport.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer listener.Close()
	defer transport.Close()

	dir := filepath.Dir(socketPath)
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("directory should exist: %v", err)
	}

	if info.Mode().Perm() != 0700 {
		t.Errorf("directory permissions = %o, want 0700", info.Mode().Perm())
	}
}

// TestUnixTransport_Listen_CleansStaleSocket verifies stale socket cleanup.
func TestUnixTransport_Listen_CleansStaleSocket(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "stale.sock")

	// Create a stale socket file (not a real socket, just a file)
	if err := os.WriteFile(socketPath, []byte("stale"), 0600); err != nil {
		t.Fatalf("failed to create stale socket file: %v", err)
	}

	transport := NewUnixTransport(socketPath)

	listener, err := transport.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer listener.Close()
	defer transport.Close()

	// Verify socket was replaced
	info, err := os.Stat(socketPath)
	if err != nil {
		t.Fatalf("socket file should exist: %v", err)
	}

	// Should be a socket now, not a regular file
	if info.Mode()&os.ModeSocket == 0 {
		t.Error("socket file should be a socket after cleanup")
	}
}

// TestUnixTransport_Listen_FailsOnActiveSocket verifies error when socket is active.
func TestUnixTransport_Listen_FailsOnActiveSocket(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "active.sock")

	transport1 := NewUnixTransport(socketPath)
	listener1, err := transport1.Listen()
	if err != nil {
		t.Fatalf("first Listen() error = %v", err)
	}
	defer listener1.Close()
	defer transport1.Close()

	// Try to create second transport on same socket
	transport2 := NewUnixTransport(socketPath)
	listener2, err := transport2.Listen()

	if err == nil {
		listener2.Close()
		t.Fatal("second Listen() should fail on active socket")
	}

	if !strings.Contains(err.Error(), "another listener may be running") {
		t.Errorf("error = %v, should mention another listener", err)
	}
}

// TestUnixTransport_Dial connects to a listening socket.
func TestUnixTransport_Dial(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "dial.sock")

	transport := NewUnixTransport(socketPath)

	listener, err := transport.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer listener.Close()
	defer transport.Close()

	// Accept connections in background
	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	conn, err := transport.Dial(100 * time.Millisecond)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	select {
	case serverConn := <-accepted:
		serverConn.Close()
	case <-time.After(1 * time.Second):
		t.Fatal("server did not accept connection")
	}
}

// TestUnixTransport_Dial_NonexistentSocket verifies error on missing socket.
func TestUnixTransport_Dial_NonexistentSocket(t *testing.T) {
	t.Parallel()

	transport := NewUnixTransport("/tmp/nonexistent-inkwell-test.sock")

	conn, err := transport.Dial(50 * time.Millisecond)
	if err == nil {
		conn.Close()
		t.Fatal("Dial() should fail on nonexistent socket")
	}

	if !strings.Contains(err.Error(), "socket not found") {
		t.Errorf("error = %v, should mention socket not found", err)
	}
}

// TestUnixTransport_Close removes socket file.
func TestUnixTransport_Close(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "close.sock")

	transport := NewUnixTransport(socketPath)

	_, err := transport.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	// Close transport (closes listener and removes socket)
	if err := transport.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Verify socket file is removed
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Error("socket file should be removed after Close()")
	}
}

// TestUnixTransport_Close_Idempotent verifies Close can be called multiple times.
func TestUnixTransport_Close_Idempotent(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "idem.sock")

	transport := NewUnixTransport(socketPath)

	_, err := transport.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	// Call Close multiple times - should not panic
	for i := 0; i < 3; i++ {
		_ = transport.Close()
	}
}

// TestUnixTransport_DataTransfer verifies data can be sent over the transport.
func TestUnixTransport_DataTransfer(t *testing.T) {
	t.Parallel()

	tmpDir := shortTempDir(t)
	socketPath := filepath.Join(tmpDir, "data.sock")

	transport := NewUnixTransport(socketPath)

	listener, err := transport.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer transport.Close()

	testData := []byte(`{"v":1,"type":"draft_saved","draft_id":"d1","words":42}` + "\n")

	serverDone := make(chan struct{})
	var serverErr error
	var receivedData []byte

	go func() {
		defer close(serverDone)
		defer listener.Close()

		conn, err := listener.Accept()
		if err != nil {
			serverErr = err
			return
		}
		defer conn.Close()

		receivedData, serverErr = io.ReadAll(conn)
	}()

	conn, err := transport.Dial(100 * time.Millisecond)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	_, err = conn.Write(testData)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	conn.Close()

	select {
	case <-serverDone:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not finish")
	}

	if serverErr != nil {
		t.Fatalf("server error = %v", serverErr)
	}

	if string(receivedData) != string(testData) {
		t.Errorf("received = %q, want %q", receivedData, testData)
	}
}

// TestUnixSocketPath_XDGPriority verifies XDG_RUNTIME_DIR has highest priority.
func TestUnixSocketPath_XDGPriority(t *testing.T) {
	origXDG := os.Getenv("XDG_RUNTIME_DIR")
	origTmp := os.Getenv("TMPDIR")
	defer func() {
		os.Setenv("XDG_RUNTIME_DIR", origXDG)
		os.Setenv("TMPDIR", origTmp)
	}()

	os.Setenv("XDG_RUNTIME_DIR", "/custom/xdg/runtime")
	os.Setenv("TMPDIR", "/custom/tmp")

	path := DefaultUnixSocketPath()
	expected := "/custom/xdg/runtime/inkwell/inkwell.sock"

	if path != expected {
		t.Errorf("DefaultUnixSocketPath() = %q, want %q", path, expected)
	}
}

// TestUnixSocketPath_TMPDIRFallback verifies TMPDIR fallback works.
func TestUnixSocketPath_TMPDIRFallback(t *testing.T) {
	origXDG := os.Getenv("XDG_RUNTIME_DIR")
	origTmp := os.Getenv("TMPDIR")
	defer func() {
		os.Setenv("XDG_RUNTIME_DIR", origXDG)
		os.Setenv("TMPDIR", origTmp)
	}()

	os.Unsetenv("XDG_RUNTIME_DIR")
	os.Setenv("TMPDIR", "/custom/tmpdir")

	path := DefaultUnixSocketPath()
	uid := strconv.Itoa(os.Getuid())
	expected := "/custom/tmpdir/inkwell-" + uid + "/inkwell.sock"

	if path != expected {
		t.Errorf("DefaultUnixSocketPath() = %q, want %q", path, expected)
	}
}

// TestUnixSocketPath_TmpFallback verifies /tmp fallback works.
func TestUnixSocketPath_TmpFallback(t *testing.T) {
	origXDG := os.Getenv("XDG_RUNTIME_DIR")
	origTmp := os.Getenv("TMPDIR")
	defer func() {
		os.Setenv("XDG_RUNTIME_DIR", origXDG)
		os.Setenv("TMPDIR", origTmp)
	}()

	os.Unsetenv("XDG_RUNTIME_DIR")
	os.Unsetenv("TMPDIR")

	path := DefaultUnixSocketPath()
	uid := strconv.Itoa(os.Getuid())
	expected := "/tmp/inkwell-" + uid + "/inkwell.sock"

	if path != expected {
		t.Errorf("DefaultUnixSocketPath() = %q, want %q", path, expected)
	}
}

// TestTransportInterface verifies UnixTransport satisfies Transport interface.
func TestTransportInterface(t *testing.T) {
	t.Parallel()

	var _ Transport = (*UnixTransport)(nil)
}
