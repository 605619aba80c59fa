package browser

import (
	"fmt"
	"strings"
	"testing"
)

// mockCommander records command executions for testing
type mockCommander struct {
	lastCommand string
	lastArgs    []string
	startError  error
}

func (m *mockCommander) Start(name string, args ...string) error {
	m.lastCommand = name
	m.lastArgs = args
	return m.startError
}

func TestOpenWithCommander_Platforms(t *testing.T) {
	url := "http://192.168.1.50:8081/api/leaderboard"

	tests := []struct {
		goos     string
		wantCmd  string
		wantArgs []string
	}{
		{"linux", "xdg-open", []string{url}},
		{"darwin", "open", []string{url}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", url}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			mock := &mockCommander{}
			if err := OpenWithCommander(url, mock, tt.goos); err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if mock.lastCommand != tt.wantCmd {
				t.Errorf("command = %q, want %q", mock.lastCommand, tt.wantCmd)
			}
			if len(mock.lastArgs) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", mock.lastArgs, tt.wantArgs)
			}
			for i := range tt.wantArgs {
				if mock.lastArgs[i] != tt.wantArgs[i] {
					t.Errorf("args = %v, want %v", mock.lastArgs, tt.wantArgs)
				}
			}
		})
	}
}

func TestOpenWithCommander_UnsupportedPlatform(t *testing.T) {
	mock := &mockCommander{}

	err := OpenWithCommander("http://localhost:8081", mock, "plan9")
	if err == nil {
		t.Fatal("expected error for unsupported platform, got nil")
	}
	if !strings.Contains(err.Error(), "plan9") {
		t.Errorf("expected platform name in error, got: %v", err)
	}
}

func TestOpenWithCommander_CommandError(t *testing.T) {
	mock := &mockCommander{startError: fmt.Errorf("command execution failed")}

	err := OpenWithCommander("http://localhost:8081", mock, "linux")
	if err == nil {
		t.Fatal("expected error from commander, got nil")
	}
}

func TestOpen_UsesDefaultCommander(t *testing.T) {
	originalCommander := defaultCommander
	defer func() { defaultCommander = originalCommander }()

	mock := &mockCommander{}
	defaultCommander = mock

	url := "http://localhost:8081/api/leaderboard"
	if err := Open(url); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if mock.lastCommand == "" {
		t.Error("expected commander to be called")
	}
}
