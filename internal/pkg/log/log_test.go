package log

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keepDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestNewLogger_File(t *testing.T) {
	keepDefault(t)
	path := filepath.Join(t.TempDir(), "jobmon.log")

	logger, cleanup, err := NewLogger("file", "json", path, "warn")
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("unable to fetch job roster", "cluster", "juwels")
	cleanup()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "dropped")
	assert.Contains(t, string(b), `"cluster":"juwels"`)
	assert.Contains(t, string(b), `"source"`)
}

func TestNewLogger_Invalid(t *testing.T) {
	keepDefault(t)
	_, _, err := NewLogger("file", "json", "", "info")
	assert.Error(t, err)
	_, _, err = NewLogger("syslog", "json", "", "info")
	assert.Error(t, err)
	_, _, err = NewLogger("stderr", "xml", "", "info")
	assert.Error(t, err)
	_, _, err = NewLogger("stderr", "text", "", "trace")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for _, name := range Levels {
		_, err := ParseLevel(name)
		assert.NoError(t, err, name)
	}
	lv, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lv)
}

func TestFromContextOr(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))
	assert.Same(t, fallback, FromContextOr(context.Background(), fallback))
	assert.Equal(t, slog.Default(), FromContextOr(context.Background(), nil))

	l := fallback.With("request_id", "abc")
	assert.Same(t, l, FromContextOr(WithContext(context.Background(), l), fallback))
}
