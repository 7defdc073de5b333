package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		level     string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{name: "production defaults to info", env: "production", wantLevel: zapcore.InfoLevel},
		{name: "development defaults to debug", env: "development", wantLevel: zapcore.DebugLevel},
		{name: "explicit level wins", env: "production", level: "warn", wantLevel: zapcore.WarnLevel},
		{name: "unknown level", env: "production", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.env, tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}
