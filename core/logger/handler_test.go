package logger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"log/slog"
)

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]sinkSpec{{w: buf, min: levelAll}}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatKV,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log := slog.New(handler).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "test.event",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	if len(tokens) < 6 {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	expected := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123"}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]sinkSpec{{w: buf, min: levelAll}}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "rid-json")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)

	log := slog.New(handler).With("component", "service.test")
	LogEvent(ctx, log, slog.LevelError, "service.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("err_code", "TEST_FAIL"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"service.test"`, `"event":"service.failed"`, `"status":"fail"`, `"rid":"rid-json"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]sinkSpec{{w: buf, min: levelAll}}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatKV,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	rawRID := "123:456:789"
	ctx := WithRID(Background(), rawRID)
	log := slog.New(handler).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "rid.test",
		slog.String("status", "ok"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", line)
	}
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]sinkSpec{{w: buf, min: levelAll}}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	rawRID := "12:34:56"
	ctx := WithRID(Background(), rawRID)
	log := slog.New(handler).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "rid.test",
		slog.String("status", "ok"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, `"rid":"`+CompactRID(rawRID)+`"`) {
		t.Fatalf("expected compact rid in JSON, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
	if !strings.Contains(line, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano to be present in JSON output, got %s", line)
	}
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "not found" }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestErrorCode(t *testing.T) {
	if got := ErrorCode(nil); got != "" {
		t.Fatalf("nil error code = %q", got)
	}
	wrapped := fmt.Errorf("lookup: %w", codedErr{})
	if got := ErrorCode(wrapped); got != "NOT_FOUND" {
		t.Fatalf("wrapped code = %q, expected NOT_FOUND", got)
	}
	if got := ErrorCode(&plainErr{}); got != "PLAINERR" {
		t.Fatalf("type code = %q, expected PLAINERR", got)
	}
	attrs := ErrAttrs(codedErr{})
	if len(attrs) != 2 || attrs[0].Key != "err" || attrs[1].Value.String() != "NOT_FOUND" {
		t.Fatalf("unexpected attrs: %v", attrs)
	}
}

func TestAsyncWriterErrorSink(t *testing.T) {
	all, errs := &bytes.Buffer{}, &bytes.Buffer{}
	aw := newAsyncWriter([]sinkSpec{{w: all, min: levelAll}, {w: errs, min: slog.LevelWarn}}, 1024)
	handler := newStructuredHandler(handlerConfig{level: slog.LevelDebug, writer: aw, format: formatKV})
	log := slog.New(handler).With("component", "jobs")

	LogEvent(Background(), log, slog.LevelInfo, "job.run", slog.String("status", "ok"))
	LogEvent(Background(), log, slog.LevelWarn, "job.run", slog.String("status", "fail"))
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if n := strings.Count(all.String(), "\n"); n != 2 {
		t.Fatalf("main sink lines = %d, expected 2", n)
	}
	if got := strings.TrimSpace(errs.String()); !strings.Contains(got, "level=WARN") || strings.Contains(got, "level=INFO") {
		t.Fatalf("error sink = %q", got)
	}
}

func TestEnumerationsAndDurations(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]sinkSpec{{w: buf, min: levelAll}}, 1024)
	handler := newStructuredHandler(handlerConfig{level: slog.LevelInfo, writer: aw, format: formatKV})
	LogEvent(Background(), slog.New(handler), slog.LevelInfo, "scenario.step",
		slog.String("status", "OK"),
		slog.String("result", "bogus"),
		slog.Duration("duration", 1500*time.Microsecond),
		slog.Duration("startup_duration", time.Second),
	)
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := buf.String()
	for _, want := range []string{"component=app", "status=ok", "duration_ms=2", "startup_duration_ms=1000"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in %s", want, line)
		}
	}
	if strings.Contains(line, "result=") {
		t.Fatalf("unknown result should be dropped: %s", line)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var passed int
	for range 9 {
		if s.Allow() {
			passed++
		}
	}
	if passed != 3 {
		t.Fatalf("passed = %d, expected 3", passed)
	}
	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("zero ratio must allow everything")
	}
	if num, den := parseRatioSpec("2/5"); num != 2 || den != 5 {
		t.Fatalf("parse 2/5 = %d/%d", num, den)
	}
	if num, den := parseRatioSpec("10"); num != 1 || den != 10 {
		t.Fatalf("parse 10 = %d/%d", num, den)
	}
}

func TestStatus(t *testing.T) {
	cases := map[string]error{
		"ok":        nil,
		"timeout":   context.DeadlineExceeded,
		"cancelled": fmt.Errorf("run: %w", context.Canceled),
		"fail":      errors.New("boom"),
	}
	for want, err := range cases {
		if got := Status(err); got != want {
			t.Fatalf("Status(%v) = %q, expected %q", err, got, want)
		}
	}
}
