package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLogger(buf *bytes.Buffer, opts ...Option) *writerLogger {
	l := NewWriterLogger(buf, opts...).(*writerLogger)
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestWriterLoggerFormatsObject(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf)

	l.Info("tool dispatched", map[string]any{"name": "read_file"})

	assert.Equal(t, `2024-01-02T03:04:05Z INFO  tool dispatched obj={"name":"read_file"}`+"\n", buf.String())
}

func TestWriterLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, WithLevel(LevelWarn))

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	l.Warn("shown", nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "WARN  shown")
}

func TestWriterLoggerUnmarshalableObject(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf)

	l.Error("bad", map[string]any{"ch": make(chan int)})

	assert.Contains(t, buf.String(), "ERROR bad obj=")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: " INFO ", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: "warning", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "loud", want: LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPackageHelpersTolerateNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Debug(nil, "x", nil)
		Info(nil, "x", nil)
		Warn(nil, "x", nil)
		Error(nil, "x", nil)
	})
}
