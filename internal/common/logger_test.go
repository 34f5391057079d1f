package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    slog.Level
		wantErr bool
	}{
		{name: "debug", in: "debug", want: slog.LevelDebug},
		{name: "info", in: "info", want: slog.LevelInfo},
		{name: "empty defaults to info", in: "", want: slog.LevelInfo},
		{name: "warn upper", in: "WARN", want: slog.LevelWarn},
		{name: "error", in: "error", want: slog.LevelError},
		{name: "invalid", in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", "path", "/api/health/")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"path":"/api/health/"`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.Error(t, err)
}

func TestSetupLogger_File(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	file := filepath.Join(t.TempDir(), "nested", "contractdesk.log")
	closer, err := SetupLogger(slog.LevelInfo, "console", file)
	require.NoError(t, err)

	LogInfo("dashboard started", Fields{"screen": "contracts"})
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dashboard started")
	assert.Contains(t, string(data), "screen=contracts")
}

func TestLogHelpers(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	tests := []struct {
		log     func()
		name    string
		level   slog.Level
		want    []string
		visible bool
	}{
		{
			name:    "error at info",
			log:     func() { LogError(errors.New("boom"), "fetch failed", Fields{"page": 2}) },
			level:   slog.LevelInfo,
			want:    []string{`"level":"ERROR"`, `"error":"boom"`, `"page":2`},
			visible: true,
		},
		{
			name:    "info at info",
			log:     func() { LogInfo("dashboard started", nil) },
			level:   slog.LevelInfo,
			want:    []string{`"msg":"dashboard started"`},
			visible: true,
		},
		{
			name:  "debug at info",
			log:   func() { LogDebug("command failed", Fields{"error": "x"}) },
			level: slog.LevelInfo,
		},
		{
			name:    "debug at debug",
			log:     func() { LogDebug("command failed", Fields{"error": "x"}) },
			level:   slog.LevelDebug,
			want:    []string{`"level":"DEBUG"`, `"error":"x"`},
			visible: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(&buf, tt.level, "json")
			require.NoError(t, err)
			slog.SetDefault(logger)

			tt.log()
			if !tt.visible {
				assert.Empty(t, buf.String())
				return
			}
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "console")
	require.NoError(t, err)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
