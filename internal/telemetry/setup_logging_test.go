// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLogHandlerUsesCloudLoggingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewLogHandler(&buf, slog.LevelInfo))

	spanContext := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanContext)
	logger.With("component", "test").WarnContext(ctx, "tier failed", "tier", "provider")
	logger.DebugContext(ctx, "dropped")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "WARNING", entry["severity"])
	assert.Equal(t, "tier failed", entry["message"])
	assert.Equal(t, "provider", entry["tier"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, spanContext.TraceID().String(), entry["logging.googleapis.com/trace"])
	assert.Equal(t, true, entry["logging.googleapis.com/trace_sampled"])
	assert.Contains(t, entry, "timestamp")
}

func TestSetupOpenTelemetryDisabled(t *testing.T) {
	config := cloud.NewConfig()
	config.Telemetry.Enabled = false

	shutdown, err := SetupOpenTelemetry(context.Background(), config)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestFanoutHandlerWritesToEveryHandler(t *testing.T) {
	var info, debug bytes.Buffer
	logger := slog.New(fanoutHandler{
		NewLogHandler(&info, slog.LevelInfo),
		NewLogHandler(&debug, slog.LevelDebug),
		otelslog.NewHandler(ScopeName),
	})

	logger.With("component", "test").Debug("command failed", "command", "legacy-cdn")
	logger.Info("resolved", "tier", "mirror")

	assert.Equal(t, 1, bytes.Count(info.Bytes(), []byte("\n")))
	assert.Equal(t, 2, bytes.Count(debug.Bytes(), []byte("\n")))
	assert.Contains(t, debug.String(), `"component":"test"`)
	assert.Contains(t, info.String(), `"tier":"mirror"`)
}

func TestSetupLoggingBridgesToOpenTelemetryWhenEnabled(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	closer, err := SetupLogging(cloud.Telemetry{LogLevel: "info"})
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	_, bridged := slog.Default().Handler().(fanoutHandler)
	assert.False(t, bridged)

	closer, err = SetupLogging(cloud.Telemetry{Enabled: true, LogLevel: "debug"})
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	handler, bridged := slog.Default().Handler().(fanoutHandler)
	require.True(t, bridged)
	assert.Len(t, handler, 2)
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}
