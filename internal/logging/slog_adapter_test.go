// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSlogHandlerLevels(t *testing.T) {
	var buf bytes.Buffer

	handler := NewSlogHandlerWithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	logger := slog.New(handler)

	tests := []struct {
		name    string
		logFunc func()
		level   string
	}{
		{"Debug", func() { logger.Debug("debug msg") }, `"level":"debug"`},
		{"Info", func() { logger.Info("info msg") }, `"level":"info"`},
		{"Warn", func() { logger.Warn("warn msg") }, `"level":"warn"`},
		{"Error", func() { logger.Error("error msg") }, `"level":"error"`},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.logFunc()
		if !strings.Contains(buf.String(), tt.level) {
			t.Errorf("%s: expected %s in output: %s", tt.name, tt.level, buf.String())
		}
	}
}

func TestSlogHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer

	handler := NewSlogHandlerWithLogger(zerolog.New(&buf))
	logger := slog.New(handler)

	logger.Info("with attrs",
		slog.String("service", "http"),
		slog.Int("restarts", 3),
		slog.Bool("healthy", true),
	)

	output := buf.String()
	for _, want := range []string{`"service":"http"`, `"restarts":3`, `"healthy":true`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer

	handler := NewSlogHandlerWithLogger(zerolog.New(&buf))
	logger := slog.New(handler).With(slog.String("supervisor", "root"))

	logger.Info("supervised")

	if !strings.Contains(buf.String(), `"supervisor":"root"`) {
		t.Errorf("expected pre-bound attr in output: %s", buf.String())
	}
}

func TestSlogHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer

	handler := NewSlogHandlerWithLogger(zerolog.New(&buf))
	logger := slog.New(handler).WithGroup("service")

	logger.Info("grouped", slog.String("name", "activity"))

	if !strings.Contains(buf.String(), `"service.name":"activity"`) {
		t.Errorf("expected group-prefixed attr in output: %s", buf.String())
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	handler := NewSlogHandlerWithLogger(zerolog.New(nil).Level(zerolog.WarnLevel))

	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug to be disabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}
