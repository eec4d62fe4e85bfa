package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(
		WithOutput(&buf),
		WithLevel(slog.LevelDebug),
		WithAttr(slog.String("service", "blog")),
	)

	log.Debug("hello", Error(errors.New("boom")))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "blog", rec["service"])
	assert.Equal(t, "boom", rec["error"])
}

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithOutput(&buf), WithFormat(FormatText), WithLevel(slog.LevelWarn))

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestWithFormat_PanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() { New(WithFormat("yaml")) })
}

func TestError_NilIsEmpty(t *testing.T) {
	assert.True(t, Error(nil).Equal(slog.Attr{}))
}
