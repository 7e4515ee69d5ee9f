package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		mode, level string
		wantDebug   bool
		wantErr     bool
	}{
		{"dev", "DEBUG", true, false},
		{"prod", "INFO", false, false},
		{"dev", "", false, false},
		{"production", "warn", false, false},
		{"dev", "loud", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode+"/"+tt.level, func(t *testing.T) {
			l, err := New(tt.mode, tt.level)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, l.IsDebug())
		})
	}
}

func TestNopWith(t *testing.T) {
	l := NewNop().With("component", "test")
	assert.False(t, l.IsDebug())
	l.Info("discarded", "k", "v")
}
