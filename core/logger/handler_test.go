package logger

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, format logFormat) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := newLineWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:  slog.LevelInfo,
		sink:   w,
		format: format,
	})
	read := func() string {
		if err := w.Sync(); err != nil {
			t.Fatalf("sync: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		return strings.TrimSpace(buf.String())
	}
	return slog.New(handler), read
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, read := newTestLogger(t, formatKV)
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	LogEvent(ctx, log.With("component", "app"), slog.LevelInfo, "test.event",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)

	line := read()
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	log, read := newTestLogger(t, formatJSON)
	ctx := WithRID(Background(), "rid-json")

	LogEvent(ctx, log.With("component", "dialogue"), slog.LevelError, "dialogue.failed",
		slog.String("status", "fail"),
		slog.String("field", "payment_card"),
		slog.String("err", "boom"),
	)

	line := read()
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"dialogue"`, `"event":"dialogue.failed"`, `"status":"fail"`, `"rid":"rid-json"`, `"field":"payment_card"`, `"err":"boom"`}
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
	log, read := newTestLogger(t, formatKV)
	rawRID := "123:456:789"
	LogEvent(WithRID(Background(), rawRID), log, slog.LevelInfo, "rid.test")

	line := read()
	if !strings.Contains(line, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", line)
	}
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	log, read := newTestLogger(t, formatJSON)
	rawRID := "12:34:56"
	LogEvent(WithRID(Background(), rawRID), log, slog.LevelInfo, "rid.test")

	line := read()
	if !strings.Contains(line, `"rid":"`+CompactRID(rawRID)+`"`) {
		t.Fatalf("expected compact rid in JSON, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
	if !strings.Contains(line, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano in JSON output, got %s", line)
	}
}

func TestStructuredHandlerNormalizesValues(t *testing.T) {
	log, read := newTestLogger(t, formatKV)
	LogEvent(Background(), log, slog.LevelInfo, "values",
		slog.Duration("duration", 1500*time.Microsecond),
		slog.String("outcome", "bogus"),
		slog.String("payload", "two words"),
		slog.String("empty", ""),
	)

	line := read()
	if !strings.Contains(line, "duration_ms=2") {
		t.Fatalf("expected duration_ms=2, got %s", line)
	}
	if strings.Contains(line, "outcome=") {
		t.Fatalf("unknown outcome should be dropped, got %s", line)
	}
	if !strings.Contains(line, `payload="two words"`) {
		t.Fatalf("expected quoted payload, got %s", line)
	}
	if strings.Contains(line, "empty=") {
		t.Fatalf("empty values should be pruned, got %s", line)
	}
	if !strings.Contains(line, "component=app") {
		t.Fatalf("missing default component, got %s", line)
	}
}

func TestStructuredHandlerLevelFilter(t *testing.T) {
	log, read := newTestLogger(t, formatKV)
	LogEvent(Background(), log, slog.LevelDebug, "hidden")
	if line := read(); line != "" {
		t.Fatalf("debug line should be filtered at info level, got %s", line)
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "a\x00b\u200bc\nd"
	if got := Sanitize(in); got != "abc\nd" {
		t.Fatalf("Sanitize(%q) = %q", in, got)
	}
	if got := SanitizeLimit("привіт", 3); got != "при" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
	if got := SanitizeLimit("x", 0); got != "" {
		t.Fatalf("SanitizeLimit with zero max = %q", got)
	}
}

func TestCompactRIDPassthrough(t *testing.T) {
	for _, rid := range []string{"", "abc", "1:2", "1:x:3"} {
		if got := CompactRID(rid); got != strings.TrimSpace(rid) {
			t.Fatalf("CompactRID(%q) = %q", rid, got)
		}
	}
	if got := CompactRID("35:36:0"); got != "z.10.0" {
		t.Fatalf("CompactRID = %q", got)
	}
}

func TestParseRatio(t *testing.T) {
	cases := map[string][2]int{
		"1/10": {1, 10},
		"5/2":  {2, 2},
		"20":   {1, 20},
		"0":    {0, 0},
		"x/3":  {0, 0},
		"junk": {0, 0},
	}
	for in, want := range cases {
		num, den := parseRatio(in)
		if num != want[0] || den != want[1] {
			t.Fatalf("parseRatio(%q) = %d/%d, want %d/%d", in, num, den, want[0], want[1])
		}
	}
}

func TestEventSamplerCountsPerEvent(t *testing.T) {
	var s eventSampler
	s.configure(1, 3)
	var got []bool
	for i := 0; i < 4; i++ {
		got = append(got, s.allow("update.received"))
	}
	want := []bool{true, false, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("allow #%d = %v, want %v", i, got[i], want[i])
		}
	}
	if !s.allow("fsm.manager") {
		t.Fatal("first occurrence of another event must pass")
	}

	s.configure(0, 0)
	for i := 0; i < 3; i++ {
		if !s.allow("update.received") {
			t.Fatal("disabled sampler must pass everything")
		}
	}
}

func TestLineWriterRejectsAfterClose(t *testing.T) {
	buf := &bytes.Buffer{}
	w := newLineWriter([]io.Writer{buf}, 0)
	if err := w.WriteLine([]byte("one\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteLine([]byte("two\n")); err != errWriterClosed {
		t.Fatalf("expected errWriterClosed, got %v", err)
	}
	if buf.String() != "one\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestOptionsFrom(t *testing.T) {
	opts := optionsFrom(nil)
	if opts.level != slog.LevelInfo || opts.format != formatJSON || opts.sampleDen != defaultSampleDen {
		t.Fatalf("unexpected defaults %+v", opts)
	}
	if parseLevel("warning") != slog.LevelWarn || parseLevel("DEBUG") != slog.LevelDebug || parseLevel("bogus") != slog.LevelInfo {
		t.Fatal("unexpected level parsing")
	}
	if parseFormat("", "dev") != formatKV || parseFormat("json", "dev") != formatJSON {
		t.Fatal("unexpected format selection")
	}
}
