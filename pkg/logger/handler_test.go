package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/isoforge/pkg/logger"
)

func TestDecorate(t *testing.T) {
	t.Parallel()

	t.Run("adds extracted attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := logger.Decorate(slog.NewJSONHandler(&buf, nil), logger.VPathExtractor(), nil)
		log := slog.New(h)

		ctx := logger.WithVPath(context.Background(), "pages/home")
		log.InfoContext(ctx, "rendered")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		require.Equal(t, "pages/home", rec["vpath"])
	})

	t.Run("skips missing values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(logger.Decorate(slog.NewJSONHandler(&buf, nil), logger.VPathExtractor()))
		log.InfoContext(context.Background(), "idle")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		require.NotContains(t, rec, "vpath")
	})

	t.Run("keeps extractors across WithAttrs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(logger.Decorate(slog.NewJSONHandler(&buf, nil), logger.VPathExtractor())).
			With("component", "browser")

		log.InfoContext(logger.WithVPath(context.Background(), "a"), "x")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		require.Equal(t, "browser", rec["component"])
		require.Equal(t, "a", rec["vpath"])
	})
}

func TestNewWithSentry_FallsBackWithoutDSN(t *testing.T) {
	t.Parallel()

	log := logger.NewWithSentry(logger.SentryConfig{})
	require.NotNil(t, log)
	require.NoError(t, logger.FlushSentry(0)(context.Background()))
}
