package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLogger_WritesFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf))

	log.With("module", "mirror").Warn(context.Background(), "image delete failed", "path", "users/u1/a.png", "err", errors.New("boom"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "warn", got["level"])
	assert.Equal(t, "image delete failed", got["message"])
	assert.Equal(t, "mirror", got["module"])
	assert.Equal(t, "users/u1/a.png", got["path"])
	assert.Equal(t, "boom", got["err"])
}

func TestZerologLogger_DanglingValue(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf))

	log.Info(context.Background(), "odd", "lonely")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "lonely", got["!BADKEY"])
}

func TestConsoleLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, "warn")

	log.Info(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	log.Error(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_SelectsImplementation(t *testing.T) {
	var buf bytes.Buffer
	assert.IsType(t, &SlogLogger{}, New("json", "info", &buf))
	assert.IsType(t, &ZerologLogger{}, New("console", "info", &buf))
	assert.IsType(t, &SlogLogger{}, New("", "", &buf))
}

func TestNew_JSONLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(FormatJSON, "error", &buf)

	log.Warn(context.Background(), "filtered")
	assert.Empty(t, buf.String())

	log.Error(context.Background(), "kept", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"kept"`)
	assert.Contains(t, buf.String(), `"k":1`)
}
