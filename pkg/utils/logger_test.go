package utils

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		command   string
		debug     bool
		wantLevel zapcore.Level
	}{
		{"debug overrides command", "search", true, zapcore.DebugLevel},
		{"server logs info", "server", false, zapcore.InfoLevel},
		{"one-shot command logs warnings", "show", false, zapcore.WarnLevel},
		{"unnamed command logs warnings", "", false, zapcore.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.command, tt.debug)
			if err != nil {
				t.Fatalf("NewLogger(%q, %v) error: %v", tt.command, tt.debug, err)
			}
			if logger == nil {
				t.Fatal("NewLogger returned nil logger")
			}
			defer func() { _ = logger.Sync() }()
			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("level %s not enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("level %s unexpectedly enabled", tt.wantLevel-1)
			}
		})
	}
}
